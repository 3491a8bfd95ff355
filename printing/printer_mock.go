package printing

import (
	"context"
	"sync"

	"github.com/kendall-kelly/restaurant-floor-api/config"
)

// PrintedJob is a document captured by MockPrinter
type PrintedJob struct {
	Endpoint config.PrinterEndpoint
	Document Document
}

// MockPrinter is a Printer that records jobs instead of opening sockets
type MockPrinter struct {
	mu       sync.Mutex
	jobs     []PrintedJob
	failures map[string]error // keyed by endpoint address
}

// NewMockPrinter creates a new mock printer
func NewMockPrinter() *MockPrinter {
	return &MockPrinter{failures: make(map[string]error)}
}

// FailEndpoint makes every print to endpoint return err
func (m *MockPrinter) FailEndpoint(endpoint config.PrinterEndpoint, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint.Address()] = err
}

// Print records the job or returns the configured failure
func (m *MockPrinter) Print(ctx context.Context, endpoint config.PrinterEndpoint, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !endpoint.Configured() {
		return &PrinterError{Code: CodeNotConfigured, Endpoint: endpoint.String(), Err: ErrNotConfigured}
	}
	if err, ok := m.failures[endpoint.Address()]; ok {
		return err
	}
	m.jobs = append(m.jobs, PrintedJob{Endpoint: endpoint, Document: doc})
	return nil
}

// Jobs returns a copy of the recorded jobs
func (m *MockPrinter) Jobs() []PrintedJob {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]PrintedJob, len(m.jobs))
	copy(jobs, m.jobs)
	return jobs
}

// JobsFor returns the recorded jobs sent to endpoint
func (m *MockPrinter) JobsFor(endpoint config.PrinterEndpoint) []PrintedJob {
	var out []PrintedJob
	for _, job := range m.Jobs() {
		if job.Endpoint == endpoint {
			out = append(out, job)
		}
	}
	return out
}

// Reset clears recorded jobs and failures
func (m *MockPrinter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = nil
	m.failures = make(map[string]error)
}
