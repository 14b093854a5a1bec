package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/The-Promised-Neverland/estatus/internal/agent"
	"github.com/The-Promised-Neverland/estatus/internal/config"
	"github.com/The-Promised-Neverland/estatus/internal/daemon"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	"github.com/fatih/color"
)

const usage = `usage: agent <command>

commands:
  install     install and start the reporter as an OS service
  uninstall   stop and remove the OS service
  run         report this host (default; used by the service manager)
  simulate    report a synthetic fleet of eight nodes
`

func main() {
	cfg := config.NewAgent()
	logger.Init(cfg.LogFile())

	cmd := "run"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	client := agent.NewClient(cfg.ServerURL(), cfg.ProbeTimeout()+cfg.ReportInterval())

	switch cmd {
	case "install":
		if err := newManager(cfg, client).InstallDaemon(); err != nil {
			color.Red("❌ Install failed: %v", err)
			os.Exit(1)
		}
		color.Green("✅ Service %s installed", cfg.ServiceName())
	case "uninstall":
		if err := newManager(cfg, client).UninstallDaemon(); err != nil {
			color.Red("❌ Uninstall failed: %v", err)
			os.Exit(1)
		}
		color.Green("✅ Service %s removed", cfg.ServiceName())
	case "run":
		if err := newManager(cfg, client).RunDaemon(); err != nil {
			logger.Log.Error("Service failed", "err", err)
			os.Exit(1)
		}
	case "simulate":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		color.Cyan("Simulating %d nodes against %s", len(agent.DefaultFleet()), cfg.ServerURL())
		agent.NewSimulator(client, agent.DefaultFleet(), cfg.ReportInterval()).Run(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func newManager(cfg *config.Agent, client *agent.Client) *daemon.DaemonManager {
	var profile *agent.ProfileWatcher
	if w, err := agent.NewProfileWatcher(cfg.ProfilePath()); err != nil {
		logger.Log.Warn("Profile unavailable, reporting without registry hints", "path", cfg.ProfilePath(), "err", err)
	} else {
		profile = w
	}
	worker := agent.NewWorker(cfg, agent.NewCollector("/"), agent.NewProber(cfg.ProbeTimeout()), client, profile)
	return daemon.NewDaemonManager(cfg, worker, "run")
}
