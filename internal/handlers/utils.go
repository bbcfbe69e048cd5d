package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/alumnet/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

type contextKey string

const contextActorKey contextKey = "actor"

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse confirms an operation without returning a resource.
type MessageResponse struct {
	Message string `json:"message"`
}

func withActor(ctx context.Context, actor services.Actor) context.Context {
	return context.WithValue(ctx, contextActorKey, actor)
}

func actorFromContext(ctx context.Context) (services.Actor, error) {
	actor, ok := ctx.Value(contextActorKey).(services.Actor)
	if !ok || actor.ID < 1 {
		return services.Actor{}, errors.New("missing actor")
	}
	return actor, nil
}

// requireActor loads the caller or replies 401.
func requireActor(w http.ResponseWriter, r *http.Request) (services.Actor, bool) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, no token")
		return services.Actor{}, false
	}
	return actor, true
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeServiceError replies with the status of a classified error. Anything
// unclassified is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := statusFor(err)
	msg, ok := services.Message(err)
	if status == http.StatusInternalServerError || !ok {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeError(w, status, msg)
}

// decodeJSON reads a bounded JSON body into dst or replies 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + strings.TrimSuffix(name, "ID") + " id")
	}
	return id, nil
}

// idParam parses a path ID or replies 400.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := parseIDParam(r, name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
