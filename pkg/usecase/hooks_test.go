package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/domain/types"
	"github.com/secmon-lab/warrant/pkg/repository"
	"github.com/secmon-lab/warrant/pkg/usecase"
)

// assignerMock implements interfaces.GroupAssigner
type assignerMock struct {
	calls   int
	lastReq *model.AssignmentRequest
	lastTok string
	err     error
}

func (m *assignerMock) AssignUserToGroup(ctx context.Context, req *model.AssignmentRequest, token string) error {
	m.calls++
	m.lastReq = req
	m.lastTok = token
	return m.err
}

func validParams() model.Params {
	return model.Params{
		"userId":     "00u1abcd",
		"groupId":    "00g9wxyz",
		"oktaDomain": "example.okta.com",
	}
}

func validContext() *model.ExecutionContext {
	return &model.ExecutionContext{
		Secrets: map[string]string{model.SecretOktaAPIToken: "token123"},
	}
}

func TestHooks_Invoke_Success(t *testing.T) {
	ctx := context.Background()
	assigner := &assignerMock{}
	repo := repository.NewMemory()
	hooks := usecase.NewHooks(assigner, repo, nil)

	before := time.Now()
	result, err := hooks.Invoke(ctx, validParams(), validContext())

	gt.NoError(t, err)
	gt.NotNil(t, result)
	gt.B(t, result.Assigned).True()
	gt.Equal(t, result.UserID, types.UserID("00u1abcd"))
	gt.Equal(t, result.GroupID, types.GroupID("00g9wxyz"))
	gt.Equal(t, result.OktaDomain, types.OktaDomain("example.okta.com"))
	gt.B(t, result.AssignedAt.Before(before)).False()
	gt.Equal(t, assigner.calls, 1)
	gt.Equal(t, assigner.lastTok, "token123")

	records, listErr := repo.ListInvocations(ctx, 10)
	gt.NoError(t, listErr)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Status, types.StatusSucceeded)
	gt.Equal(t, records[0].Hook, types.HookInvoke)
}

func TestHooks_Invoke_ValidationOrder(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		params  model.Params
		message string
	}{
		{
			name:    "missing userId",
			params:  model.Params{"groupId": "g", "oktaDomain": "d"},
			message: "Invalid or missing userId parameter",
		},
		{
			name:    "non-string userId",
			params:  model.Params{"userId": 42, "groupId": "g", "oktaDomain": "d"},
			message: "Invalid or missing userId parameter",
		},
		{
			name:    "missing groupId",
			params:  model.Params{"userId": "u", "oktaDomain": "d"},
			message: "Invalid or missing groupId parameter",
		},
		{
			name:    "non-string groupId",
			params:  model.Params{"userId": "u", "groupId": true, "oktaDomain": "d"},
			message: "Invalid or missing groupId parameter",
		},
		{
			name:    "missing oktaDomain",
			params:  model.Params{"userId": "u", "groupId": "g"},
			message: "Invalid or missing oktaDomain parameter",
		},
		{
			name:    "userId reported before groupId",
			params:  model.Params{},
			message: "Invalid or missing userId parameter",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assigner := &assignerMock{}
			hooks := usecase.NewHooks(assigner, nil, nil)

			result, err := hooks.Invoke(ctx, tc.params, validContext())

			gt.Error(t, err)
			gt.Equal(t, err.Error(), tc.message)
			gt.B(t, goerr.HasTag(err, types.ErrTagValidation)).True()
			gt.Nil(t, result)
			gt.Equal(t, assigner.calls, 0)
		})
	}
}

func TestHooks_Invoke_MissingToken(t *testing.T) {
	ctx := context.Background()
	assigner := &assignerMock{}
	hooks := usecase.NewHooks(assigner, nil, nil)

	result, err := hooks.Invoke(ctx, validParams(), &model.ExecutionContext{})

	gt.Error(t, err)
	gt.Equal(t, err.Error(), "Missing required secret: OKTA_API_TOKEN")
	gt.B(t, goerr.HasTag(err, types.ErrTagConfiguration)).True()
	gt.Nil(t, result)
	gt.Equal(t, assigner.calls, 0)
}

func TestHooks_Invoke_ProviderFailure(t *testing.T) {
	ctx := context.Background()
	assignErr := goerr.New("API rate limit exceeded",
		goerr.T(types.ErrTagProvider),
		goerr.V(types.StatusCodeKey, 429),
	)
	assigner := &assignerMock{err: assignErr}
	repo := repository.NewMemory()
	hooks := usecase.NewHooks(assigner, repo, nil)

	result, err := hooks.Invoke(ctx, validParams(), validContext())

	gt.Error(t, err)
	gt.Nil(t, result)
	gt.S(t, err.Error()).Contains("API rate limit exceeded")

	records, listErr := repo.ListInvocations(ctx, 10)
	gt.NoError(t, listErr)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Status, types.StatusFailed)
	gt.Equal(t, records[0].StatusCode, 429)
}

func TestHooks_HandleError_RateLimitRetriesOnce(t *testing.T) {
	ctx := context.Background()
	assigner := &assignerMock{}
	hooks := usecase.NewHooks(assigner, repository.NewMemory(), nil)

	hookErr := &model.HookError{Message: "API rate limit exceeded", StatusCode: 429}
	result, err := hooks.HandleError(ctx, hookErr, validParams(), validContext())

	gt.NoError(t, err)
	gt.NotNil(t, result)
	gt.B(t, result.Recovered).True()
	gt.Equal(t, assigner.calls, 1)
	gt.Equal(t, assigner.lastReq.UserID, types.UserID("00u1abcd"))
	gt.Equal(t, assigner.lastTok, "token123")
}

func TestHooks_HandleError_ParamsFromContext(t *testing.T) {
	ctx := context.Background()
	assigner := &assignerMock{}
	hooks := usecase.NewHooks(assigner, nil, nil)

	// Some framework call sites keep the originals on context.params
	execCtx := validContext()
	execCtx.Params = validParams()

	hookErr := &model.HookError{Message: "API rate limit exceeded"}
	result, err := hooks.HandleError(ctx, hookErr, model.Params{"error": "ignored"}, execCtx)

	gt.NoError(t, err)
	gt.B(t, result.Recovered).True()
	gt.Equal(t, assigner.calls, 1)
	gt.Equal(t, assigner.lastReq.GroupID, types.GroupID("00g9wxyz"))
}

func TestHooks_HandleError_NonRetryable(t *testing.T) {
	ctx := context.Background()
	assigner := &assignerMock{}
	hooks := usecase.NewHooks(assigner, nil, nil)

	hookErr := &model.HookError{Message: "Invalid credentials", StatusCode: 401}
	result, err := hooks.HandleError(ctx, hookErr, validParams(), validContext())

	gt.Error(t, err)
	gt.Nil(t, result)
	gt.Equal(t, err.Error(), "Invalid credentials")
	gt.Equal(t, types.StatusCode(err), 401)
	gt.Equal(t, assigner.calls, 0)
}

func TestHooks_HandleError_CaseSensitiveMatch(t *testing.T) {
	ctx := context.Background()
	assigner := &assignerMock{}
	hooks := usecase.NewHooks(assigner, nil, nil)

	// "Rate Limit" must not match; the classification is case-sensitive
	hookErr := &model.HookError{Message: "Rate Limit exceeded"}
	_, err := hooks.HandleError(ctx, hookErr, validParams(), validContext())

	gt.Error(t, err)
	gt.Equal(t, assigner.calls, 0)
}

func TestHooks_HandleError_RetryFailurePropagates(t *testing.T) {
	ctx := context.Background()
	retryErr := goerr.New("The user is already a member of this group",
		goerr.T(types.ErrTagProvider),
		goerr.V(types.StatusCodeKey, 403),
	)
	assigner := &assignerMock{err: retryErr}
	hooks := usecase.NewHooks(assigner, nil, nil)

	hookErr := &model.HookError{Message: "API rate limit exceeded"}
	result, err := hooks.HandleError(ctx, hookErr, validParams(), validContext())

	gt.Error(t, err)
	gt.Nil(t, result)
	gt.S(t, err.Error()).Contains("The user is already a member of this group")
	gt.Equal(t, assigner.calls, 1)
}

func TestHooks_Halt(t *testing.T) {
	ctx := context.Background()
	assigner := &assignerMock{}
	repo := repository.NewMemory()
	hooks := usecase.NewHooks(assigner, repo, nil)

	result, err := hooks.Halt(ctx, model.Params{
		"userId":  "00u1abcd",
		"groupId": "00g9wxyz",
		"reason":  "deployment cancelled",
	}, validContext())

	gt.NoError(t, err)
	gt.B(t, result.CleanupCompleted).True()
	gt.Equal(t, result.UserID, "00u1abcd")
	gt.Equal(t, result.GroupID, "00g9wxyz")
	gt.Equal(t, result.Reason, "deployment cancelled")
	gt.B(t, result.HaltedAt.IsZero()).False()
	gt.Equal(t, assigner.calls, 0)

	records, listErr := repo.ListInvocations(ctx, 10)
	gt.NoError(t, listErr)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Status, types.StatusHalted)
}

func TestHooks_Halt_MissingParams(t *testing.T) {
	ctx := context.Background()
	hooks := usecase.NewHooks(&assignerMock{}, nil, nil)

	result, err := hooks.Halt(ctx, model.Params{}, &model.ExecutionContext{})

	gt.NoError(t, err)
	gt.B(t, result.CleanupCompleted).True()
	gt.Equal(t, result.UserID, "unknown")
	gt.Equal(t, result.GroupID, "unknown")
	gt.Equal(t, result.Reason, "")
	gt.B(t, result.HaltedAt.IsZero()).False()
}
