package performance

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/mutker/perfmon/internal/errors"
	"codeberg.org/mutker/perfmon/internal/memory"
	"codeberg.org/mutker/perfmon/internal/perfdata"
	"github.com/dustin/go-humanize"
)

const bytesPerMB = 1024 * 1024

// PerformanceMonitor measures elapsed time and, optionally, the resident
// memory delta of a process across Enter/Exit cycles.
type PerformanceMonitor struct {
	operation string
	cfg       settings
	hook      ExitHook
	children  []*PerformanceMonitor

	startTime  time.Time
	startMem   uint64
	startMemOK bool

	duration time.Duration
	mem      int64
	err      error
}

// NewMonitor returns a root monitor for operation.
func NewMonitor(operation string, opts ...Option) *PerformanceMonitor {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	return newMonitor(operation, cfg)
}

func newMonitor(operation string, cfg settings) *PerformanceMonitor {
	return &PerformanceMonitor{
		operation: operation,
		cfg:       cfg,
		hook:      cfg.exitHook(),
		startTime: cfg.clock(),
	}
}

func (m *PerformanceMonitor) Operation() string {
	return m.operation
}

func (m *PerformanceMonitor) Enter() Monitor {
	if m.cfg.pid == pidUnset {
		m.cfg.pid = memory.CurrentPID()
	}
	m.err = nil
	m.startTime = m.cfg.clock()
	if m.cfg.measureMemory {
		m.startMem, m.startMemOK = m.sampleMemory()
	}

	return m
}

func (m *PerformanceMonitor) Exit(err error) {
	m.err = err
	if m.cfg.measureMemory {
		stopMem, ok := m.sampleMemory()
		if ok && m.startMemOK {
			m.mem += int64(stopMem) - int64(m.startMem) //nolint:gosec // RSS fits in int64
		}
	}
	m.duration += m.cfg.clock().Sub(m.startTime)

	m.hook.OnExit(m)
}

// Child spawns a monitor of the same kind. Destination, flags, hook and
// collaborators are inherited; the process id is not, so the child samples
// whichever process first enters it.
func (m *PerformanceMonitor) Child(operation string, opts ...Option) Monitor {
	cfg := m.cfg
	cfg.pid = pidUnset
	for _, opt := range opts {
		opt(&cfg)
	}

	child := newMonitor(operation, cfg)
	m.children = append(m.children, child)

	return child
}

// Records returns one record for this monitor and for each direct child that
// accumulated time since the last collection, then resets all of them.
// Grandchildren are neither collected nor reset.
func (m *PerformanceMonitor) Records() []perfdata.Record {
	monitors := append([]*PerformanceMonitor{m}, m.children...)

	var records []perfdata.Record
	for _, mon := range monitors {
		if mon.duration != 0 {
			records = append(records, mon.record())
		}
	}

	for _, mon := range monitors {
		mon.duration = 0
		mon.mem = 0
	}

	return records
}

// Flush writes the collected records to the configured sink. Accumulators
// are reset even when the write fails. Nothing is opened or written when
// there is nothing to report.
func (m *PerformanceMonitor) Flush(ctx context.Context) error {
	records := m.Records()
	if len(records) == 0 {
		return nil
	}

	errFactory := errors.New()

	sink, err := newSink(m.cfg)
	if err != nil {
		return errFactory.Wrap(ErrFlushFailed, err)
	}

	if err := sink.Append(ctx, records); err != nil {
		return errFactory.Wrap(ErrFlushFailed, err).WithData(m.operation)
	}

	m.cfg.logger.Debug().
		Str("operation", m.operation).
		Str("destination", m.cfg.destination).
		Int("records", len(records)).
		Msg("Flushed performance records")

	return nil
}

func (m *PerformanceMonitor) record() perfdata.Record {
	var memoryMB float64
	if m.cfg.measureMemory {
		memoryMB = float64(m.mem) / bytesPerMB
	}

	return perfdata.Record{
		Operation: perfdata.TruncateOperation(m.operation),
		TimeSec:   m.duration.Seconds(),
		MemoryMB:  memoryMB,
		Counts:    1,
	}
}

// sampleMemory reads the RSS of the target process. Permission problems
// disable sampling for the rest of the monitor's life.
func (m *PerformanceMonitor) sampleMemory() (uint64, bool) {
	if m.cfg.pid == pidDisabled || m.cfg.pid == pidUnset {
		return 0, false
	}

	rss, err := m.cfg.sampler.RSS(m.cfg.pid)
	if err != nil {
		if memory.IsAccessDenied(err) {
			m.cfg.logger.Warn().
				Err(err).
				Str("operation", m.operation).
				Int32("pid", m.cfg.pid).
				Msg("No access to process memory, disabling memory measurement")
			m.cfg.pid = pidDisabled
		} else {
			m.cfg.logger.Debug().
				Err(err).
				Str("operation", m.operation).
				Int32("pid", m.cfg.pid).
				Msg("Failed to sample process memory")
		}
		return 0, false
	}

	return rss, true
}

// Duration is the time accumulated since the last collection.
func (m *PerformanceMonitor) Duration() time.Duration {
	return m.duration
}

// MemoryDelta is the RSS change in bytes accumulated since the last
// collection. It is negative when the measured regions released memory.
func (m *PerformanceMonitor) MemoryDelta() int64 {
	return m.mem
}

// StartTime is when the current or most recent cycle began.
func (m *PerformanceMonitor) StartTime() time.Time {
	return m.startTime
}

// Err is the error passed to the most recent Exit.
func (m *PerformanceMonitor) Err() error {
	return m.err
}

// ProcessID returns the sampled process and whether sampling is possible.
func (m *PerformanceMonitor) ProcessID() (int32, bool) {
	return m.cfg.pid, m.cfg.pid > 0
}

func (m *PerformanceMonitor) Destination() string {
	return m.cfg.destination
}

func (m *PerformanceMonitor) MeasuresMemory() bool {
	return m.cfg.measureMemory
}

func (m *PerformanceMonitor) AutoFlush() bool {
	return m.cfg.autoFlush
}

// Children returns the monitors spawned from m, in creation order.
func (m *PerformanceMonitor) Children() []*PerformanceMonitor {
	return append([]*PerformanceMonitor(nil), m.children...)
}

func (m *PerformanceMonitor) String() string {
	if m.cfg.measureMemory {
		return fmt.Sprintf("<PerformanceMonitor %s, duration=%gs, memory=%s>",
			m.operation, m.duration.Seconds(), humanSize(m.mem))
	}

	return fmt.Sprintf("<PerformanceMonitor %s, duration=%gs>", m.operation, m.duration.Seconds())
}

func humanSize(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}

	return humanize.IBytes(uint64(n))
}
