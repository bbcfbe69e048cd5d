package handlers

import (
	"net/http"

	"github.com/alumnet/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MessageHandler provides HTTP handlers for direct messages.
type MessageHandler struct {
	messageService *services.MessageService
	logger         *zap.Logger
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messageService *services.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

// MessageRouter registers messaging routes on the given router.
func MessageRouter(r chi.Router, messageService *services.MessageService, authMiddleware func(http.Handler) http.Handler, logger *zap.Logger) {
	handler := NewMessageHandler(messageService, logger)

	r.Use(authMiddleware)
	r.Get("/contacts", handler.Contacts)
	r.Get("/{userID}", handler.Conversation)
	r.Post("/{userID}", handler.Send)
}

func (h *MessageHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	contacts, err := h.messageService.Contacts(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	otherID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	messages, err := h.messageService.Conversation(r.Context(), actor, otherID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	recipientID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	var input services.MessageInput
	if !decodeJSON(w, r, &input) {
		return
	}
	msg, err := h.messageService.Send(r.Context(), actor, recipientID, input)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
