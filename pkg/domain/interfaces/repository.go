package interfaces

import (
	"context"

	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/domain/types"
)

// Repository defines the interface for invocation record persistence
type Repository interface {
	PutInvocation(ctx context.Context, record *model.InvocationRecord) error
	GetInvocation(ctx context.Context, id types.InvocationID) (*model.InvocationRecord, error)
	ListInvocations(ctx context.Context, limit int) ([]*model.InvocationRecord, error)

	// Close closes the repository connection
	Close() error
}
