package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/alumnet/apiserver/internal/services"
	"github.com/alumnet/apiserver/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const calendarContentType = "text/calendar; charset=utf-8"

// EventHandler provides HTTP handlers for events and RSVPs.
type EventHandler struct {
	eventService  *services.EventService
	exportService *services.ExportService
	logger        *zap.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(eventService *services.EventService, exportService *services.ExportService, logger *zap.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, exportService: exportService, logger: logger}
}

// EventRouter registers event routes on the given router.
func EventRouter(
	r chi.Router,
	eventService *services.EventService,
	exportService *services.ExportService,
	authMiddleware func(http.Handler) http.Handler,
	logger *zap.Logger,
) {
	handler := NewEventHandler(eventService, exportService, logger)
	adminOnly := RequireRole(types.RoleAdmin)

	r.Get("/", handler.ListEvents)
	r.Get("/calendar.ics", handler.Calendar)
	r.With(authMiddleware, adminOnly).Post("/", handler.CreateEvent)
	r.Route("/{eventID}", func(r chi.Router) {
		r.Get("/", handler.GetEvent)
		r.Get("/calendar.ics", handler.EventCalendar)
		r.With(authMiddleware, adminOnly).Put("/", handler.UpdateEvent)
		r.With(authMiddleware, adminOnly).Delete("/", handler.DeleteEvent)
		r.With(authMiddleware).Post("/rsvp", handler.RSVP)
	})
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}
	event, err := h.eventService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var input types.EventInput
	if !decodeJSON(w, r, &input) {
		return
	}
	event, err := h.eventService.Create(r.Context(), actor, input)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}
	var update types.EventUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	event, err := h.eventService.Update(r.Context(), actor, id, update)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}
	if err := h.eventService.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Event deleted successfully"})
}

func (h *EventHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}
	result, err := h.eventService.ToggleRSVP(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *EventHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	body, err := h.exportService.Calendar(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeCalendar(w, "events.ics", body)
}

func (h *EventHandler) EventCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}
	body, err := h.exportService.EventCalendar(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeCalendar(w, "event-"+strconv.FormatInt(id, 10)+".ics", body)
}

func writeCalendar(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", calendarContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}
