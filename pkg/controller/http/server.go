package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/warrant/pkg/domain/interfaces"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/domain/types"
	"github.com/secmon-lab/warrant/pkg/usecase"
	"github.com/secmon-lab/warrant/pkg/utils/apperr"
)

const defaultListLimit = 50

// Server exposes the lifecycle hooks over HTTP for the hosting framework
type Server struct {
	*http.Server
	hooks   *usecase.Hooks
	repo    interfaces.Repository
	secrets map[string]string
}

// NewServer creates a new hook server. secrets holds server-side fallbacks
// (e.g. the Okta API token from CLI/env) merged into each execution context
// so the framework may omit them from requests.
func NewServer(ctx context.Context, addr string, hooks *usecase.Hooks, repo interfaces.Repository, secrets map[string]string) *Server {
	s := &Server{
		hooks:   hooks,
		repo:    repo,
		secrets: secrets,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)

	router.Route("/hooks", func(r chi.Router) {
		r.Post("/invoke", s.handleInvoke)
		r.Post("/error", s.handleError)
		r.Post("/halt", s.handleHalt)
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/invocations", s.handleListInvocations)
	})

	s.Server = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// hookRequest is the JSON envelope the framework posts to every hook
type hookRequest struct {
	Params  model.Params            `json:"params"`
	Context *model.ExecutionContext `json:"context"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeHookRequest(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	result, err := s.hooks.Invoke(r.Context(), req.Params, req.Context)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, result)
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeHookRequest(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	result, err := s.hooks.HandleError(r.Context(), extractHookError(req.Params), req.Params, req.Context)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, result)
}

func (s *Server) handleHalt(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeHookRequest(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	result, err := s.hooks.Halt(r.Context(), req.Params, req.Context)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, result)
}

func (s *Server) handleListInvocations(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(r.Context(), w, goerr.New("invocation records are not enabled"))
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(r.Context(), w, goerr.New("invalid limit parameter",
				goerr.T(types.ErrTagValidation),
				goerr.V("limit", v),
			))
			return
		}
		limit = parsed
	}

	records, err := s.repo.ListInvocations(r.Context(), limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"invocations": records})
}

// decodeHookRequest parses the hook envelope and merges server-side fallback
// secrets into the execution context.
func (s *Server) decodeHookRequest(r *http.Request) (*hookRequest, error) {
	var req hookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, goerr.Wrap(err, "invalid hook request body", goerr.T(types.ErrTagValidation))
	}
	if req.Params == nil {
		req.Params = model.Params{}
	}
	if req.Context == nil {
		req.Context = &model.ExecutionContext{}
	}

	if len(s.secrets) > 0 {
		if req.Context.Secrets == nil {
			req.Context.Secrets = map[string]string{}
		}
		for k, v := range s.secrets {
			if req.Context.Secrets[k] == "" {
				req.Context.Secrets[k] = v
			}
		}
	}
	return &req, nil
}

// extractHookError reads params.error, which some framework versions send as
// a bare message string and others as {message, statusCode}.
func extractHookError(params model.Params) *model.HookError {
	v, ok := params["error"]
	if !ok {
		return nil
	}

	switch e := v.(type) {
	case string:
		return &model.HookError{Message: e}
	case map[string]any:
		hookErr := &model.HookError{}
		if msg, ok := e["message"].(string); ok {
			hookErr.Message = msg
		}
		if code, ok := e["statusCode"].(float64); ok {
			hookErr.StatusCode = int(code)
		}
		return hookErr
	default:
		return nil
	}
}

// errorResponse is the JSON error envelope returned to the framework
type errorResponse struct {
	Error struct {
		Message    string   `json:"message"`
		StatusCode int      `json:"statusCode,omitempty"`
		Tags       []string `json:"tags,omitempty"`
	} `json:"error"`
}

// httpStatus maps the error taxonomy to a response status. Provider and
// transport failures are upstream problems, hence 502.
func httpStatus(err error) int {
	switch {
	case goerr.HasTag(err, types.ErrTagValidation):
		return http.StatusBadRequest
	case goerr.HasTag(err, types.ErrTagProvider), goerr.HasTag(err, types.ErrTagTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorTags(err error) []string {
	var tags []string
	for _, tag := range []struct {
		has  bool
		name string
	}{
		{goerr.HasTag(err, types.ErrTagValidation), "validation"},
		{goerr.HasTag(err, types.ErrTagConfiguration), "configuration"},
		{goerr.HasTag(err, types.ErrTagProvider), "provider"},
		{goerr.HasTag(err, types.ErrTagTransport), "transport"},
	} {
		if tag.has {
			tags = append(tags, tag.name)
		}
	}
	return tags
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	apperr.Handle(ctx, err)

	var resp errorResponse
	resp.Error.Message = err.Error()
	resp.Error.StatusCode = types.StatusCode(err)
	resp.Error.Tags = errorTags(err)

	writeJSON(ctx, w, httpStatus(err), resp)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		apperr.Handle(ctx, goerr.Wrap(err, "failed to encode response"))
	}
}
