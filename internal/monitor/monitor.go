// Package monitor polls host resource usage and raises alerts when a reading
// crosses its configured threshold.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/nekoneko-space/travel-platform/internal/app/metrics"
	"github.com/nekoneko-space/travel-platform/internal/config"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Snapshot is one round of resource readings.
type Snapshot struct {
	Timestamp        time.Time
	CPUPercent       float64
	MemoryPercent    float64
	DiskPercent      float64
	NetworkErrorRate float64
}

// Alert describes one threshold crossing.
type Alert struct {
	Resource  string
	Value     float64
	Threshold float64
	Message   string
}

// AlertFunc receives alerts raised by the monitor.
type AlertFunc func(ctx context.Context, a Alert)

// probe reads the host; swapped in tests.
type probe struct {
	cpuPercent  func(ctx context.Context) (float64, error)
	memPercent  func(ctx context.Context) (float64, error)
	diskPercent func(ctx context.Context, path string) (float64, error)
	netCounters func(ctx context.Context) (net.IOCountersStat, error)
}

func systemProbe() probe {
	return probe{
		cpuPercent: func(ctx context.Context) (float64, error) {
			vals, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				return 0, err
			}
			if len(vals) == 0 {
				return 0, fmt.Errorf("no cpu reading")
			}
			return vals[0], nil
		},
		memPercent: func(ctx context.Context) (float64, error) {
			vm, err := mem.VirtualMemoryWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return vm.UsedPercent, nil
		},
		diskPercent: func(ctx context.Context, path string) (float64, error) {
			du, err := disk.UsageWithContext(ctx, path)
			if err != nil {
				return 0, err
			}
			return du.UsedPercent, nil
		},
		netCounters: func(ctx context.Context) (net.IOCountersStat, error) {
			stats, err := net.IOCountersWithContext(ctx, false)
			if err != nil {
				return net.IOCountersStat{}, err
			}
			if len(stats) == 0 {
				return net.IOCountersStat{}, fmt.Errorf("no network counters")
			}
			return stats[0], nil
		},
	}
}

// Monitor is the lifecycle-managed polling loop.
type Monitor struct {
	cfg   config.MonitorConfig
	log   *logger.Logger
	probe probe

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	callbacks []AlertFunc
	lastNet   *net.IOCountersStat
}

// New constructs a monitor from the threshold configuration.
func New(cfg config.MonitorConfig, log *logger.Logger) *Monitor {
	if log == nil {
		log = logger.NewDefault("monitor")
	}
	return &Monitor{cfg: cfg, log: log, probe: systemProbe()}
}

// OnAlert registers a callback invoked for every threshold crossing.
func (m *Monitor) OnAlert(fn AlertFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Name implements system.Service.
func (m *Monitor) Name() string { return "system-monitor" }

// Start launches the polling loop.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return fmt.Errorf("monitor already started")
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go m.loop(loopCtx)

	m.log.WithField("interval", m.cfg.Interval().String()).Info("system monitor started")
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.log.Info("system monitor stopped")
	return nil
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := m.Poll(ctx)
			if err != nil {
				m.log.WithError(err).Error("resource poll failed")
				metrics.RecordError("monitor_poll")
				continue
			}
			m.evaluate(ctx, snap)
		}
	}
}

// Poll reads one snapshot and updates the resource gauges.
func (m *Monitor) Poll(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Timestamp: time.Now().UTC()}

	var err error
	if snap.CPUPercent, err = m.probe.cpuPercent(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("cpu: %w", err)
	}
	if snap.MemoryPercent, err = m.probe.memPercent(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("memory: %w", err)
	}
	if snap.DiskPercent, err = m.probe.diskPercent(ctx, m.cfg.DiskPath); err != nil {
		return Snapshot{}, fmt.Errorf("disk: %w", err)
	}
	if snap.NetworkErrorRate, err = m.networkErrorRate(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("network: %w", err)
	}

	metrics.SetResourceUsage("cpu", snap.CPUPercent)
	metrics.SetResourceUsage("memory", snap.MemoryPercent)
	metrics.SetResourceUsage("disk", snap.DiskPercent)
	metrics.SetResourceUsage("network_error_rate", snap.NetworkErrorRate)
	return snap, nil
}

// networkErrorRate computes errors per packet since the previous poll. The
// first poll establishes the baseline and reports zero.
func (m *Monitor) networkErrorRate(ctx context.Context) (float64, error) {
	cur, err := m.probe.netCounters(ctx)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	prev := m.lastNet
	m.lastNet = &cur
	m.mu.Unlock()

	if prev == nil {
		return 0, nil
	}

	packets := float64((cur.PacketsSent - prev.PacketsSent) + (cur.PacketsRecv - prev.PacketsRecv))
	if packets <= 0 {
		return 0, nil
	}
	errors := float64((cur.Errin - prev.Errin) + (cur.Errout - prev.Errout))
	return errors / packets, nil
}

func (m *Monitor) evaluate(ctx context.Context, snap Snapshot) {
	checks := []struct {
		resource  string
		value     float64
		threshold float64
	}{
		{"cpu", snap.CPUPercent, m.cfg.CPUPercent},
		{"memory", snap.MemoryPercent, m.cfg.MemoryPercent},
		{"disk", snap.DiskPercent, m.cfg.DiskPercent},
		{"network_error_rate", snap.NetworkErrorRate, m.cfg.NetworkErrorRate},
	}

	for _, c := range checks {
		if c.value <= c.threshold {
			continue
		}
		alert := Alert{
			Resource:  c.resource,
			Value:     c.value,
			Threshold: c.threshold,
			Message:   fmt.Sprintf("%s usage %.2f exceeds threshold %.2f", c.resource, c.value, c.threshold),
		}
		m.log.WithField("resource", c.resource).
			WithField("value", c.value).
			WithField("threshold", c.threshold).
			Warn("resource threshold exceeded")
		metrics.RecordError("resource_threshold")
		m.fire(ctx, alert)
	}
}

func (m *Monitor) fire(ctx context.Context, a Alert) {
	m.mu.Lock()
	callbacks := make([]AlertFunc, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(ctx, a)
	}
}
