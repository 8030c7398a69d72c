package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/nekoneko-space/travel-platform/internal/config"
)

func testConfig() config.MonitorConfig {
	return config.MonitorConfig{
		IntervalSec:      1,
		CPUPercent:       80,
		MemoryPercent:    85,
		DiskPercent:      90,
		NetworkErrorRate: 0.01,
		DiskPath:         "/",
	}
}

func stubProbe(cpu, mem, disk float64, counters []net.IOCountersStat) probe {
	i := 0
	return probe{
		cpuPercent:  func(context.Context) (float64, error) { return cpu, nil },
		memPercent:  func(context.Context) (float64, error) { return mem, nil },
		diskPercent: func(context.Context, string) (float64, error) { return disk, nil },
		netCounters: func(context.Context) (net.IOCountersStat, error) {
			c := counters[i]
			if i < len(counters)-1 {
				i++
			}
			return c, nil
		},
	}
}

func TestPoll(t *testing.T) {
	m := New(testConfig(), nil)
	m.probe = stubProbe(42.5, 60, 70, []net.IOCountersStat{
		{PacketsSent: 100, PacketsRecv: 100, Errin: 0, Errout: 0},
		{PacketsSent: 200, PacketsRecv: 200, Errin: 1, Errout: 1},
	})

	// First poll establishes the network baseline.
	snap, err := m.Poll(context.Background())
	if err != nil {
		t.Fatalf("first poll: %v", err)
	}
	if snap.CPUPercent != 42.5 || snap.MemoryPercent != 60 || snap.DiskPercent != 70 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.NetworkErrorRate != 0 {
		t.Fatalf("first poll error rate: got %f want 0", snap.NetworkErrorRate)
	}

	snap, err = m.Poll(context.Background())
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	// 2 errors over 200 packets since the baseline.
	if snap.NetworkErrorRate != 0.01 {
		t.Fatalf("error rate: got %f want 0.01", snap.NetworkErrorRate)
	}
}

func TestEvaluateFiresAlerts(t *testing.T) {
	m := New(testConfig(), nil)

	var alerts []Alert
	m.OnAlert(func(_ context.Context, a Alert) {
		alerts = append(alerts, a)
	})

	m.evaluate(context.Background(), Snapshot{
		Timestamp:        time.Now(),
		CPUPercent:       92,
		MemoryPercent:    50,
		DiskPercent:      95,
		NetworkErrorRate: 0.001,
	})

	if len(alerts) != 2 {
		t.Fatalf("alerts: got %d want 2 (%+v)", len(alerts), alerts)
	}
	resources := map[string]bool{}
	for _, a := range alerts {
		resources[a.Resource] = true
		if a.Message == "" {
			t.Fatal("alert message empty")
		}
	}
	if !resources["cpu"] || !resources["disk"] {
		t.Fatalf("unexpected alert resources %v", resources)
	}
}

func TestEvaluateQuietWithinThresholds(t *testing.T) {
	m := New(testConfig(), nil)
	fired := false
	m.OnAlert(func(context.Context, Alert) { fired = true })

	m.evaluate(context.Background(), Snapshot{
		CPUPercent:       10,
		MemoryPercent:    20,
		DiskPercent:      30,
		NetworkErrorRate: 0,
	})
	if fired {
		t.Fatal("no alert expected within thresholds")
	}
}

func TestStartStop(t *testing.T) {
	m := New(testConfig(), nil)
	m.probe = stubProbe(10, 10, 10, []net.IOCountersStat{{PacketsSent: 1, PacketsRecv: 1}})
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Fatal("expected error starting twice")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := m.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// Stopping again is a no-op.
	if err := m.Stop(stopCtx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
