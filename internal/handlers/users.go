package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alumnet/apiserver/internal/services"
	"github.com/alumnet/apiserver/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	formFieldAvatar    = "avatar"
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxMultipartMemory = services.MaxAvatarSize + 1<<20
)

// UserHandler provides HTTP handlers for accounts and the directory.
type UserHandler struct {
	users   *services.UserService
	avatars *services.AvatarService
	exports *services.ExportService
	logger  *zap.Logger
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *services.UserService, avatars *services.AvatarService, exports *services.ExportService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, avatars: avatars, exports: exports, logger: logger}
}

// UserRouter registers user routes on the given router.
func UserRouter(
	r chi.Router,
	userService *services.UserService,
	avatarService *services.AvatarService,
	exportService *services.ExportService,
	authMiddleware func(http.Handler) http.Handler,
	logger *zap.Logger,
) {
	handler := NewUserHandler(userService, avatarService, exportService, logger)
	adminOnly := RequireRole(types.RoleAdmin)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/profile", handler.GetProfile)
		r.Put("/profile", handler.UpdateProfile)
		r.Put("/profile/avatar", handler.UploadAvatar)
		r.Get("/{userID}/avatar", handler.GetAvatar)

		r.With(adminOnly).Get("/", handler.ListUsers)
		r.With(adminOnly).Get("/stats", handler.Stats)
		r.With(adminOnly).Get("/export", handler.Export)
		r.With(adminOnly).Get("/{userID}", handler.GetUser)
		r.With(adminOnly).Delete("/{userID}", handler.DeleteUser)
	})
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.users.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.users.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), actor.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var update types.ProfileUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), actor.ID, update)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile(formFieldAvatar)
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	data, err := readFileLimited(file, services.MaxAvatarSize)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.avatars.Upload(r.Context(), actor.ID, data)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	obj, err := h.avatars.Open(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("avatar stream interrupted", zap.Int64("user_id", id), zap.Error(err))
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseUserFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	users, err := h.users.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	filter, err := parseUserFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	buf, filename, err := h.exports.Directory(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User removed successfully"})
}

func parseUserFilter(r *http.Request) (types.UserFilter, error) {
	q := r.URL.Query()
	filter := types.UserFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		Role:       types.Role(strings.ToLower(strings.TrimSpace(q.Get("role")))),
		Department: strings.TrimSpace(q.Get("department")),
	}
	if raw := strings.TrimSpace(q.Get("graduationYear")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 {
			return types.UserFilter{}, errors.New("invalid graduationYear")
		}
		filter.GraduationYear = year
	}
	return filter, nil
}
