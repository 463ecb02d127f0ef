package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ExecutionRecord holds the start and end times of one invocation.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two invocations ran at the same time.
func (r ExecutionRecord) Overlaps(o ExecutionRecord) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// MockSleeperModule registers a "sleeper" type that sleeps, records when
// it ran keyed by its id input, and passes id through.
type MockSleeperModule struct {
	mu             sync.Mutex
	executions     map[string]ExecutionRecord
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewMockSleeperModule creates a sleeper module. completionChan, if not
// nil, receives each id as its invocation finishes.
func NewMockSleeperModule(completionChan chan<- string, sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		executions:     make(map[string]ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Register registers the sleeper type.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.Register(operation.MustDefine(operation.Descriptor{
		Name: "sleeper",
		Inputs: []operation.InputSpec{
			operation.In("id", cty.String),
			operation.InDefault("after", cty.DynamicPseudoType, nil),
		},
		Outputs: []string{"id"},
	}, func(_ context.Context, in, _ operation.Values) ([]any, error) {
		id, _ := in["id"].(string)

		start := time.Now()
		time.Sleep(m.sleepDuration)
		end := time.Now()

		m.mu.Lock()
		m.executions[id] = ExecutionRecord{Start: start, End: end}
		m.mu.Unlock()

		if m.completionChan != nil {
			m.completionChan <- id
		}
		return []any{id}, nil
	}))
}

// Execution returns the record for id.
func (m *MockSleeperModule) Execution(id string) (ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.executions[id]
	return r, ok
}
