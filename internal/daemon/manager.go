package daemon

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/The-Promised-Neverland/estatus/internal/config"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	kardianos "github.com/kardianos/service"
)

// Runner is the long-running work hosted by the service.
type Runner interface {
	Run(ctx context.Context)
}

// DaemonManager adapts a Runner to the OS service manager.
type DaemonManager struct {
	cfg       *config.Agent
	runner    Runner
	args      []string
	appCtx    context.Context
	appCancel context.CancelFunc
	wg        sync.WaitGroup
}

// NewDaemonManager; args are passed to the installed service executable.
func NewDaemonManager(cfg *config.Agent, runner Runner, args ...string) *DaemonManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &DaemonManager{
		cfg:       cfg,
		runner:    runner,
		args:      args,
		appCtx:    ctx,
		appCancel: cancel,
	}
}

func (m *DaemonManager) newService() (kardianos.Service, error) {
	if m.runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	return kardianos.New(m, &kardianos.Config{
		Name:        m.cfg.ServiceName(),
		DisplayName: m.cfg.ServiceDisplayName(),
		Description: m.cfg.ServiceDescription(),
		Arguments:   m.args,
		Option: kardianos.KeyValue{
			"Restart":                "always",
			"OnFailure":              "restart",
			"OnFailureDelayDuration": "5s",
		},
	})
}

func (m *DaemonManager) Start(s kardianos.Service) error {
	logger.Log.Info("Kardianos starting service", "service", s.String(), "platform", s.Platform())
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runner.Run(m.appCtx)
	}()
	return nil
}

func (m *DaemonManager) Stop(s kardianos.Service) error {
	logger.Log.Info("Kardianos stopping service", "service", s.String())
	m.appCancel()
	m.wg.Wait()
	return nil
}

func (m *DaemonManager) InstallDaemon() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	if err := s.Install(); err != nil {
		if runtime.GOOS == "windows" {
			return fmt.Errorf("failed to install Windows service (requires administrator privileges): %w", err)
		}
		return fmt.Errorf("failed to install service: %w", err)
	}
	if err := s.Start(); err != nil {
		return fmt.Errorf("service installed but failed to start: %w", err)
	}
	return nil
}

func (m *DaemonManager) UninstallDaemon() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	if err := s.Stop(); err != nil {
		logger.Log.Warn("Failed to stop service before uninstall", "err", err)
	}
	return s.Uninstall()
}

// RunDaemon blocks until the service manager (or an interrupt when run
// interactively) stops the service.
func (m *DaemonManager) RunDaemon() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	return s.Run()
}
