package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/warrant/pkg/domain/interfaces"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/domain/types"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu          sync.RWMutex
	invocations map[types.InvocationID]*model.InvocationRecord
}

// NewMemory creates a new memory repository
func NewMemory() interfaces.Repository {
	return &Memory{
		invocations: make(map[types.InvocationID]*model.InvocationRecord),
	}
}

// PutInvocation stores an invocation record
func (m *Memory) PutInvocation(ctx context.Context, record *model.InvocationRecord) error {
	if record == nil {
		return goerr.New("invocation record is nil")
	}
	if record.ID == "" {
		return goerr.New("invocation record ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	m.invocations[record.ID] = &copied
	return nil
}

// GetInvocation retrieves an invocation record by ID
func (m *Memory) GetInvocation(ctx context.Context, id types.InvocationID) (*model.InvocationRecord, error) {
	if id == "" {
		return nil, goerr.New("invocation ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.invocations[id]
	if !exists {
		return nil, goerr.New("invocation not found", goerr.V("id", id))
	}

	copied := *record
	return &copied, nil
}

// ListInvocations returns records ordered newest first, up to limit
func (m *Memory) ListInvocations(ctx context.Context, limit int) ([]*model.InvocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*model.InvocationRecord, 0, len(m.invocations))
	for _, record := range m.invocations {
		copied := *record
		records = append(records, &copied)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Close is a no-op for the memory repository
func (m *Memory) Close() error {
	return nil
}
