package handlers

import (
	"net/http"

	"github.com/alumnet/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewsHandler provides HTTP handlers for the news feed.
type NewsHandler struct {
	newsService *services.NewsService
	logger      *zap.Logger
}

// NewNewsHandler constructs a NewsHandler.
func NewNewsHandler(newsService *services.NewsService, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{newsService: newsService, logger: logger}
}

// NewsRouter registers news routes on the given router. Every route requires
// authentication.
func NewsRouter(r chi.Router, newsService *services.NewsService, authMiddleware func(http.Handler) http.Handler, logger *zap.Logger) {
	handler := NewNewsHandler(newsService, logger)

	r.Use(authMiddleware)
	r.Get("/", handler.ListPosts)
	r.Post("/", handler.CreatePost)
	r.Route("/{postID}", func(r chi.Router) {
		r.Delete("/", handler.DeletePost)
		r.Post("/like", handler.ToggleLike)
		r.Post("/comments", handler.Comment)
	})
}

func (h *NewsHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.newsService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *NewsHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var input services.PostInput
	if !decodeJSON(w, r, &input) {
		return
	}
	post, err := h.newsService.Create(r.Context(), actor, input)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *NewsHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "postID")
	if !ok {
		return
	}
	if err := h.newsService.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted"})
}

func (h *NewsHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "postID")
	if !ok {
		return
	}
	post, err := h.newsService.ToggleLike(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *NewsHandler) Comment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "postID")
	if !ok {
		return
	}
	var input services.CommentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	comment, err := h.newsService.Comment(r.Context(), actor, id, input)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
