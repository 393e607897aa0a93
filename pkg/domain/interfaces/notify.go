package interfaces

import (
	"context"

	"github.com/secmon-lab/warrant/pkg/domain/model"
)

// Notifier reports assignment failures to an external sink
type Notifier interface {
	NotifyFailure(ctx context.Context, req *model.AssignmentRequest, failure error) error
}
