package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	"github.com/pion/stun/v2"
)

const (
	stunPrefix      = "stun:"
	defaultTCPPort  = "80"
	defaultSTUNPort = "3478"
)

// Prober measures round-trip latency to configured targets. Plain hosts are
// timed with a TCP connect; hosts prefixed with "stun:" with a STUN binding
// request over UDP.
type Prober struct {
	timeout time.Duration
}

func NewProber(timeout time.Duration) *Prober {
	return &Prober{timeout: timeout}
}

// ProbeAll probes every target concurrently. Unreachable targets are left out
// of the result, which keeps the input order.
func (p *Prober) ProbeAll(ctx context.Context, targets []models.PingTarget) []models.PingResult {
	results := make([]*models.PingResult, len(targets))
	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t models.PingTarget) {
			defer wg.Done()
			rtt, err := p.Probe(ctx, t.Host)
			if err != nil {
				logger.Log.Debug("Probe failed", "target", t.Name, "host", t.Host, "err", err)
				return
			}
			results[i] = &models.PingResult{Target: t.Name, MS: math.Round(float64(rtt.Microseconds())/10) / 100}
		}(i, t)
	}
	wg.Wait()

	out := make([]models.PingResult, 0, len(targets))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (p *Prober) Probe(ctx context.Context, host string) (time.Duration, error) {
	if addr, ok := strings.CutPrefix(host, stunPrefix); ok {
		return p.stunRTT(ctx, withPort(addr, defaultSTUNPort))
	}
	return p.tcpRTT(ctx, withPort(host, defaultTCPPort))
}

func (p *Prober) tcpRTT(ctx context.Context, addr string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	var d net.Dialer
	start := time.Now()
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return 0, err
	}
	rtt := time.Since(start)
	conn.Close()
	return rtt, nil
}

func (p *Prober) stunRTT(ctx context.Context, addr string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to dial STUN server: %w", err)
	}
	client, err := stun.NewClient(conn, stun.WithRTO(p.timeout))
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("failed to create STUN client: %w", err)
	}
	defer client.Close()

	message := stun.MustBuild(stun.TransactionID, stun.BindingRequest)
	var queryErr error
	start := time.Now()
	err = client.Do(message, func(res stun.Event) {
		if res.Error != nil {
			queryErr = res.Error
			return
		}
		var xorAddr stun.XORMappedAddress
		if err := xorAddr.GetFrom(res.Message); err != nil {
			queryErr = fmt.Errorf("failed to get XOR mapped address: %w", err)
		}
	})
	rtt := time.Since(start)
	if err != nil {
		return 0, fmt.Errorf("STUN query failed: %w", err)
	}
	if queryErr != nil {
		return 0, queryErr
	}
	if ctx.Err() != nil {
		return 0, errors.New("STUN query timed out")
	}
	return rtt, nil
}

func withPort(host, port string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), port)
}
