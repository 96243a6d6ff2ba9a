package device

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"synthd/pkg/types"
)

var (
	hwCPUPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "synthd",
		Subsystem: "hw",
		Name:      "cpu_percent",
		Help:      "Host CPU utilization percentage",
	})

	hwMemUsedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "synthd",
		Subsystem: "hw",
		Name:      "mem_used_bytes",
		Help:      "Host memory in use in bytes",
	})

	hwMemTotalBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "synthd",
		Subsystem: "hw",
		Name:      "mem_total_bytes",
		Help:      "Host memory total in bytes",
	})

	hwDeviceMemBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "synthd",
			Subsystem: "hw",
			Name:      "device_memory_bytes",
			Help:      "Compute-device memory counters in bytes",
		},
		[]string{"counter"},
	)
)

func init() {
	prometheus.MustRegister(hwCPUPercent, hwMemUsedBytes, hwMemTotalBytes, hwDeviceMemBytes)
}

// Monitor samples host and device counters on a fixed interval and exports
// them as Prometheus gauges. The latest sample is kept for status queries.
type Monitor struct {
	dev      *Context
	interval time.Duration
	log      zerolog.Logger

	// OnSample, when set before Run, is invoked with every sample.
	OnSample func(types.HWSnapshot)

	mu   sync.Mutex
	last types.HWSnapshot
	got  bool
}

// NewMonitor builds a monitor over the selected device context.
func NewMonitor(dev *Context, interval time.Duration, log zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{
		dev:      dev,
		interval: interval,
		log:      log.With().Str("component", "hwmon").Logger(),
	}
}

// Sample collects one snapshot. Host counters that cannot be read are left
// zero rather than failing the sample.
func (m *Monitor) Sample(ctx context.Context) types.HWSnapshot {
	snap := types.HWSnapshot{TakenAtUnix: time.Now().Unix()}

	if n, err := cpu.Counts(true); err == nil {
		snap.CPUCount = n
	}
	// Percentage since the previous call; the first sample reports zero.
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		snap.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemTotalBytes = vm.Total
		snap.MemUsedBytes = vm.Used
		snap.MemUsedPercent = vm.UsedPercent
	}
	snap.Device = m.dev.Snapshot(ctx)

	hwCPUPercent.Set(snap.CPUPercent)
	hwMemUsedBytes.Set(float64(snap.MemUsedBytes))
	hwMemTotalBytes.Set(float64(snap.MemTotalBytes))
	hwDeviceMemBytes.WithLabelValues("allocated").Set(float64(snap.Device.Allocated))
	hwDeviceMemBytes.WithLabelValues("reserved").Set(float64(snap.Device.Reserved))
	hwDeviceMemBytes.WithLabelValues("peak_allocated").Set(float64(snap.Device.PeakAllocated))
	hwDeviceMemBytes.WithLabelValues("total").Set(float64(snap.Device.Total))

	m.mu.Lock()
	m.last = snap
	m.got = true
	m.mu.Unlock()

	if m.OnSample != nil {
		m.OnSample(snap)
	}
	return snap
}

// Last returns the most recent sample, if one has been taken.
func (m *Monitor) Last() (types.HWSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.got
}

// Run samples on the configured interval until ctx is done. An initial
// sample is taken immediately.
func (m *Monitor) Run(ctx context.Context) {
	m.Sample(ctx)
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Debug().Msg("hardware monitor stopped")
			return
		case <-t.C:
			m.Sample(ctx)
		}
	}
}
