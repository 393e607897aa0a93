package interfaces

import (
	"context"

	"github.com/secmon-lab/warrant/pkg/domain/model"
)

// GroupAssigner performs the group-membership call against Okta
type GroupAssigner interface {
	AssignUserToGroup(ctx context.Context, req *model.AssignmentRequest, token string) error
}
