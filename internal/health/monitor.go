package health

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Prober reports whether the inference service answers
type Prober interface {
	IsAvailable(ctx context.Context) bool
}

// Status is the last known state of the inference service
type Status struct {
	Available bool      `json:"available"`
	CheckedAt time.Time `json:"checked_at"`
}

// Monitor probes the inference service on a cron schedule and remembers the result.
// It only informs health reporting; suggestion requests still probe on their own.
type Monitor struct {
	prober   Prober
	schedule string
	timeout  time.Duration
	logger   *log.Logger

	mu      sync.RWMutex
	status  Status
	checked bool

	cron *cron.Cron
}

// NewMonitor creates a Monitor. timeout bounds each scheduled probe.
func NewMonitor(prober Prober, schedule string, timeout time.Duration, logger *log.Logger) *Monitor {
	if logger == nil {
		logger = log.Default()
	}
	return &Monitor{
		prober:   prober,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start runs an initial probe and schedules the following ones
func (m *Monitor) Start(ctx context.Context) error {
	m.Check(ctx)

	c := cron.New()
	if _, err := c.AddFunc(m.schedule, m.scheduledCheck); err != nil {
		return fmt.Errorf("failed to schedule health probe: %w", err)
	}
	c.Start()

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()

	m.logger.Printf("Ollama health probe scheduled (%s)", m.schedule)
	return nil
}

// Stop halts scheduling and waits for a running probe to finish
func (m *Monitor) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Check probes now, records the result and logs state changes
func (m *Monitor) Check(ctx context.Context) Status {
	available := m.prober.IsAvailable(ctx)
	now := time.Now()

	m.mu.Lock()
	previous, wasChecked := m.status, m.checked
	m.status = Status{Available: available, CheckedAt: now}
	m.checked = true
	current := m.status
	m.mu.Unlock()

	if !wasChecked || previous.Available != available {
		if available {
			m.logger.Println("Ollama API initialized")
		} else {
			m.logger.Println("Failed to connect to Ollama. Please make sure Ollama is running.")
		}
	}
	return current
}

// Status returns the last recorded probe result
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) scheduledCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	m.Check(ctx)
}
