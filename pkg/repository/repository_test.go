package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/domain/types"
	"github.com/secmon-lab/warrant/pkg/repository"
)

func newRecord(hook types.HookName, startedAt time.Time) *model.InvocationRecord {
	record := model.NewInvocationRecord(hook)
	record.StartedAt = startedAt
	record.UserID = "00u1abcd"
	record.GroupID = "00g9wxyz"
	record.OktaDomain = "example.okta.com"
	record.Finish(types.StatusSucceeded, nil)
	return record
}

func TestMemory_PutAndGetInvocation(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	record := newRecord(types.HookInvoke, time.Now())
	gt.NoError(t, repo.PutInvocation(ctx, record))

	got, err := repo.GetInvocation(ctx, record.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.ID, record.ID)
	gt.Equal(t, got.Hook, types.HookInvoke)
	gt.Equal(t, got.Status, types.StatusSucceeded)
	gt.Equal(t, got.UserID, "00u1abcd")
}

func TestMemory_GetInvocation_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	_, err := repo.GetInvocation(ctx, types.NewInvocationID())
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("invocation not found")
}

func TestMemory_PutInvocation_Invalid(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	gt.Error(t, repo.PutInvocation(ctx, nil))

	record := newRecord(types.HookInvoke, time.Now())
	record.ID = ""
	gt.Error(t, repo.PutInvocation(ctx, record))
}

func TestMemory_ListInvocations_OrderAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	base := time.Now()
	oldest := newRecord(types.HookInvoke, base.Add(-2*time.Hour))
	middle := newRecord(types.HookError, base.Add(-time.Hour))
	newest := newRecord(types.HookHalt, base)

	gt.NoError(t, repo.PutInvocation(ctx, middle))
	gt.NoError(t, repo.PutInvocation(ctx, oldest))
	gt.NoError(t, repo.PutInvocation(ctx, newest))

	records, err := repo.ListInvocations(ctx, 0)
	gt.NoError(t, err)
	gt.A(t, records).Length(3)
	gt.Equal(t, records[0].ID, newest.ID)
	gt.Equal(t, records[1].ID, middle.ID)
	gt.Equal(t, records[2].ID, oldest.ID)

	limited, err := repo.ListInvocations(ctx, 2)
	gt.NoError(t, err)
	gt.A(t, limited).Length(2)
	gt.Equal(t, limited[0].ID, newest.ID)
}

func TestMemory_PutInvocation_CopiesRecord(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	record := newRecord(types.HookInvoke, time.Now())
	gt.NoError(t, repo.PutInvocation(ctx, record))

	// Mutating the caller's record must not affect the stored copy
	record.Status = types.StatusFailed

	got, err := repo.GetInvocation(ctx, record.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, types.StatusSucceeded)
}
