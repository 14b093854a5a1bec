package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
)

const bytesPerGiB = 1 << 30

// HostMetrics is one reading of the local machine.
type HostMetrics struct {
	CPU         float64
	RAM         float64
	Disk        float64
	NetIn       float64 // Mbit/s since the previous reading
	NetOut      float64 // Mbit/s since the previous reading
	TrafficUsed float64 // GiB since boot
	OS          string
}

type counters struct {
	recv uint64
	sent uint64
	at   time.Time
}

// Collector reads host metrics through gopsutil. Throughput is derived from
// interface counter deltas, so the first reading reports zero.
type Collector struct {
	diskPath string
	mu       sync.Mutex
	prev     *counters
}

func NewCollector(diskPath string) *Collector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Collector{diskPath: diskPath}
}

func (c *Collector) Collect(ctx context.Context) (*HostMetrics, error) {
	cpuPercent, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("cpu: %w", err)
	}
	memStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	diskStat, err := disk.UsageWithContext(ctx, c.diskPath)
	if err != nil {
		return nil, fmt.Errorf("disk: %w", err)
	}
	io, err := psnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}

	m := &HostMetrics{
		RAM:  memStat.UsedPercent,
		Disk: diskStat.UsedPercent,
	}
	if len(cpuPercent) > 0 {
		m.CPU = cpuPercent[0]
	}
	if info, err := host.InfoWithContext(ctx); err == nil {
		m.OS = info.Platform
		if m.OS == "" {
			m.OS = info.OS
		}
	}
	if len(io) > 0 {
		now := counters{recv: io[0].BytesRecv, sent: io[0].BytesSent, at: time.Now()}
		m.TrafficUsed = float64(now.recv+now.sent) / bytesPerGiB
		m.NetIn, m.NetOut = c.rates(now)
	}
	return m, nil
}

func (c *Collector) rates(now counters) (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.prev
	c.prev = &now
	if prev == nil {
		return 0, 0
	}
	return mbps(prev.recv, now.recv, now.at.Sub(prev.at)), mbps(prev.sent, now.sent, now.at.Sub(prev.at))
}

// mbps returns zero when the counter went backwards (interface reset) or no time passed.
func mbps(before, after uint64, elapsed time.Duration) float64 {
	if after < before || elapsed <= 0 {
		return 0
	}
	return float64(after-before) * 8 / 1e6 / elapsed.Seconds()
}
