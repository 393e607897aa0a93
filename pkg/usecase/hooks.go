package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/warrant/pkg/domain/interfaces"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/domain/types"
	"github.com/secmon-lab/warrant/pkg/utils/async"
)

// rateLimitMarker is the substring that makes an error retryable in the error
// hook. The match is deliberately textual: the framework hands the error back
// without its status code, so there is nothing else to classify on.
const rateLimitMarker = "rate limit"

// Hooks implements the three lifecycle entry points of the job-execution
// framework contract: invoke, error, halt.
type Hooks struct {
	assigner interfaces.GroupAssigner
	repo     interfaces.Repository
	notifier interfaces.Notifier
}

// NewHooks creates the hook set. repo and notifier may be nil; recording and
// notification are then skipped.
func NewHooks(assigner interfaces.GroupAssigner, repo interfaces.Repository, notifier interfaces.Notifier) *Hooks {
	return &Hooks{
		assigner: assigner,
		repo:     repo,
		notifier: notifier,
	}
}

// Invoke performs the group assignment. Validation is fail-fast in a fixed
// order (userId, groupId, oktaDomain, token) and no network call happens on a
// validation or configuration failure.
func (h *Hooks) Invoke(ctx context.Context, params model.Params, execCtx *model.ExecutionContext) (*model.AssignmentResult, error) {
	record := model.NewInvocationRecord(types.HookInvoke)

	req, token, err := h.resolveAssignment(params, execCtx)
	if err != nil {
		h.finish(ctx, record, types.StatusFailed, err)
		return nil, err
	}
	record.UserID = req.UserID.String()
	record.GroupID = req.GroupID.String()
	record.OktaDomain = req.OktaDomain.String()

	if err := h.assigner.AssignUserToGroup(ctx, req, token); err != nil {
		h.finish(ctx, record, types.StatusFailed, err)
		h.notifyFailure(ctx, req, err)
		return nil, err
	}

	result := &model.AssignmentResult{
		UserID:     req.UserID,
		GroupID:    req.GroupID,
		Assigned:   true,
		OktaDomain: req.OktaDomain,
		AssignedAt: time.Now(),
	}
	h.finish(ctx, record, types.StatusSucceeded, nil)

	return result, nil
}

// HandleError is the error hook. A single textual classification decides the
// outcome: errors mentioning a rate limit get exactly one immediate retry with
// the original parameters, everything else is re-raised verbatim for the
// framework's own retry policy.
func (h *Hooks) HandleError(ctx context.Context, hookErr *model.HookError, params model.Params, execCtx *model.ExecutionContext) (*model.RecoveryResult, error) {
	logger := ctxlog.From(ctx)
	record := model.NewInvocationRecord(types.HookError)

	if hookErr == nil || hookErr.Message == "" {
		err := goerr.New("error hook called without an error", goerr.T(types.ErrTagValidation))
		h.finish(ctx, record, types.StatusFailed, err)
		return nil, err
	}

	if !strings.Contains(hookErr.Message, rateLimitMarker) {
		logger.Info("Error is not retryable, re-raising", "message", hookErr.Message)
		original := reraise(hookErr)
		h.finish(ctx, record, types.StatusFailed, original)
		return nil, original
	}

	req, token, err := h.resolveRetry(params, execCtx)
	if err != nil {
		h.finish(ctx, record, types.StatusFailed, err)
		return nil, err
	}
	record.UserID = req.UserID.String()
	record.GroupID = req.GroupID.String()
	record.OktaDomain = req.OktaDomain.String()

	logger.Info("Rate limit reported, retrying assignment once",
		"userID", req.UserID,
		"groupID", req.GroupID,
	)

	if err := h.assigner.AssignUserToGroup(ctx, req, token); err != nil {
		h.finish(ctx, record, types.StatusFailed, err)
		h.notifyFailure(ctx, req, err)
		return nil, err
	}

	h.finish(ctx, record, types.StatusRecovered, nil)
	return &model.RecoveryResult{Recovered: true}, nil
}

// Halt acknowledges a halt request. The assignment PUT is atomic, so there is
// no partial state to clean up and no network activity here.
func (h *Hooks) Halt(ctx context.Context, params model.Params, execCtx *model.ExecutionContext) (*model.HaltResult, error) {
	record := model.NewInvocationRecord(types.HookHalt)

	userID := stringOr(params, "userId", "unknown")
	groupID := stringOr(params, "groupId", "unknown")
	reason, _ := params.String("reason")

	ctxlog.From(ctx).Info("Halt requested",
		"userID", userID,
		"groupID", groupID,
		"reason", reason,
	)

	record.UserID = userID
	record.GroupID = groupID
	h.finish(ctx, record, types.StatusHalted, nil)

	return &model.HaltResult{
		UserID:           userID,
		GroupID:          groupID,
		Reason:           reason,
		HaltedAt:         time.Now(),
		CleanupCompleted: true,
	}, nil
}

// resolveAssignment validates the invoke parameter bundle. First violation
// wins; the messages are part of the hook contract and must not change.
func (h *Hooks) resolveAssignment(params model.Params, execCtx *model.ExecutionContext) (*model.AssignmentRequest, string, error) {
	userID, ok := params.String("userId")
	if !ok {
		return nil, "", goerr.New("Invalid or missing userId parameter", goerr.T(types.ErrTagValidation))
	}
	groupID, ok := params.String("groupId")
	if !ok {
		return nil, "", goerr.New("Invalid or missing groupId parameter", goerr.T(types.ErrTagValidation))
	}
	domain, ok := params.String("oktaDomain")
	if !ok {
		return nil, "", goerr.New("Invalid or missing oktaDomain parameter", goerr.T(types.ErrTagValidation))
	}

	token := execCtx.Secret(model.SecretOktaAPIToken)
	if token == "" {
		return nil, "", goerr.New("Missing required secret: "+model.SecretOktaAPIToken, goerr.T(types.ErrTagConfiguration))
	}

	return &model.AssignmentRequest{
		UserID:     types.UserID(userID),
		GroupID:    types.GroupID(groupID),
		OktaDomain: types.OktaDomain(domain),
	}, token, nil
}

// resolveRetry resolves the original assignment parameters for the error
// hook. The framework supplies them either on params or on context.params
// depending on the call site, so both shapes are accepted.
func (h *Hooks) resolveRetry(params model.Params, execCtx *model.ExecutionContext) (*model.AssignmentRequest, string, error) {
	userID, ok := execCtx.Param(params, "userId")
	if !ok {
		return nil, "", goerr.New("Invalid or missing userId parameter", goerr.T(types.ErrTagValidation))
	}
	groupID, ok := execCtx.Param(params, "groupId")
	if !ok {
		return nil, "", goerr.New("Invalid or missing groupId parameter", goerr.T(types.ErrTagValidation))
	}
	domain, ok := execCtx.Param(params, "oktaDomain")
	if !ok {
		return nil, "", goerr.New("Invalid or missing oktaDomain parameter", goerr.T(types.ErrTagValidation))
	}

	token := execCtx.Secret(model.SecretOktaAPIToken)
	if token == "" {
		return nil, "", goerr.New("Missing required secret: "+model.SecretOktaAPIToken, goerr.T(types.ErrTagConfiguration))
	}

	return &model.AssignmentRequest{
		UserID:     types.UserID(userID),
		GroupID:    types.GroupID(groupID),
		OktaDomain: types.OktaDomain(domain),
	}, token, nil
}

// reraise reconstructs a previously thrown error with its message and status
// code metadata intact. The original arrived serialized, so this is as
// verbatim as it gets.
func reraise(hookErr *model.HookError) error {
	if hookErr.StatusCode != 0 {
		return goerr.New(hookErr.Message,
			goerr.T(types.ErrTagProvider),
			goerr.V(types.StatusCodeKey, hookErr.StatusCode),
		)
	}
	return goerr.New(hookErr.Message)
}

// finish stamps and stores the invocation record. Recording is best-effort:
// a repository failure is logged, never surfaced over the hook result.
func (h *Hooks) finish(ctx context.Context, record *model.InvocationRecord, status types.InvocationStatus, err error) {
	record.Finish(status, err)
	if h.repo == nil {
		return
	}
	if putErr := h.repo.PutInvocation(ctx, record); putErr != nil {
		ctxlog.From(ctx).Warn("Failed to store invocation record",
			"error", putErr,
			"invocationID", record.ID,
		)
	}
}

// notifyFailure dispatches the failure notification without blocking the hook
// response.
func (h *Hooks) notifyFailure(ctx context.Context, req *model.AssignmentRequest, failure error) {
	if h.notifier == nil {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return h.notifier.NotifyFailure(ctx, req, failure)
	})
}

func stringOr(params model.Params, key, fallback string) string {
	if v, ok := params.String(key); ok {
		return v
	}
	return fallback
}
