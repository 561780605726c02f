package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// eventDateLayout is the wire format for event dates.
const eventDateLayout = "2006-01-02 15:04:05"

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EventController) fail(r *http.Request, w http.ResponseWriter, err error) {
	if status := helpers.WriteDomainError(w, err); status >= http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
}

// LocationDto is a geographic point in request bodies.
type LocationDto struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewEventRequest is the request body for POST /users/{userID}/events.
type NewEventRequest struct {
	Title             string       `json:"title"`
	Annotation        string       `json:"annotation"`
	Description       string       `json:"description"`
	Category          string       `json:"category"`
	Location          *LocationDto `json:"location"`
	EventDate         string       `json:"event_date"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int          `json:"participant_limit"`
	RequestModeration *bool        `json:"request_moderation"`

	parsedDate time.Time
}

// Validate implements helpers.Validator.
func (b *NewEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(b.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(b.Annotation) == "" {
		errs = append(errs, "annotation is required")
	}
	if strings.TrimSpace(b.Description) == "" {
		errs = append(errs, "description is required")
	}
	if b.Category == "" {
		errs = append(errs, "category is required")
	}
	if b.Location == nil {
		errs = append(errs, "location is required")
	}
	if b.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must not be negative")
	}
	parsed, err := time.Parse(eventDateLayout, b.EventDate)
	if err != nil {
		errs = append(errs, "event_date must use format "+eventDateLayout)
	} else {
		b.parsedDate = parsed
	}
	return errs
}

// EventSuccessResponse is the success envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Create godoc
// @Summary Create an event
// @Description Submits a new event for moderation. The event starts in PENDING status; its date must be at least two hours in the future.
// @Tags events
// @Accept json
// @Produce json
// @Param userID path string true "Initiator ID (UUID)"
// @Param body body controllers.NewEventRequest true "Event draft"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !uuidRegex.MatchString(userID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid userID")
		return
	}
	var body NewEventRequest
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}

	moderation := true
	if body.RequestModeration != nil {
		moderation = *body.RequestModeration
	}
	draft := domain.NewEventDraft{
		Title:             body.Title,
		Annotation:        body.Annotation,
		Description:       body.Description,
		CategoryID:        body.Category,
		Location:          domain.Location{Lat: body.Location.Lat, Lon: body.Location.Lon},
		EventDate:         body.parsedDate,
		Paid:              body.Paid,
		ParticipantLimit:  body.ParticipantLimit,
		RequestModeration: moderation,
	}

	event, err := c.Service.Create(r.Context(), userID, draft)
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEventRequest is the request body for owner and admin event patches.
// All fields are optional; state_action values depend on the caller's role.
type UpdateEventRequest struct {
	Title             *string      `json:"title"`
	Annotation        *string      `json:"annotation"`
	Description       *string      `json:"description"`
	Category          *string      `json:"category"`
	Location          *LocationDto `json:"location"`
	EventDate         *string      `json:"event_date"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participant_limit"`
	RequestModeration *bool        `json:"request_moderation"`
	StateAction       *string      `json:"state_action"`

	parsedDate *time.Time
}

// Validate implements helpers.Validator.
func (b *UpdateEventRequest) Validate() []string {
	var errs []string
	if b.ParticipantLimit != nil && *b.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must not be negative")
	}
	if b.EventDate != nil {
		parsed, err := time.Parse(eventDateLayout, *b.EventDate)
		if err != nil {
			errs = append(errs, "event_date must use format "+eventDateLayout)
		} else {
			b.parsedDate = &parsed
		}
	}
	return errs
}

func (b *UpdateEventRequest) patch() domain.EventPatch {
	p := domain.EventPatch{
		Title:             b.Title,
		Annotation:        b.Annotation,
		Description:       b.Description,
		CategoryID:        b.Category,
		EventDate:         b.parsedDate,
		Paid:              b.Paid,
		ParticipantLimit:  b.ParticipantLimit,
		RequestModeration: b.RequestModeration,
	}
	if b.Location != nil {
		p.Location = &domain.Location{Lat: b.Location.Lat, Lon: b.Location.Lon}
	}
	return p
}

// UpdateByOwner godoc
// @Summary Edit own event
// @Description Patches the initiator's event. Published events cannot be edited. state_action may be SEND_TO_REVIEW or CANCEL_REVIEW.
// @Tags events
// @Accept json
// @Produce json
// @Param userID path string true "Initiator ID (UUID)"
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateEventRequest true "Patch"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/events/{eventID} [patch]
func (c *EventController) UpdateByOwner(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(userID) || !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
		return
	}
	var body UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}

	upd := domain.OwnerEventUpdate{EventPatch: body.patch()}
	if body.StateAction != nil {
		switch action := domain.OwnerStateAction(*body.StateAction); action {
		case domain.SendToReview, domain.CancelReview:
			upd.StateAction = &action
		default:
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown state_action")
			return
		}
	}

	event, err := c.Service.UpdateByOwner(r.Context(), userID, eventID, upd)
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateByAdmin godoc
// @Summary Moderate an event
// @Description Patches an event awaiting moderation. state_action may be PUBLISH_EVENT or REJECT_EVENT.
// @Tags admin
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateEventRequest true "Patch"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/events/{eventID} [patch]
func (c *EventController) UpdateByAdmin(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var body UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}

	upd := domain.AdminEventUpdate{EventPatch: body.patch()}
	if body.StateAction != nil {
		switch action := domain.AdminStateAction(*body.StateAction); action {
		case domain.PublishEvent, domain.RejectEvent:
			upd.StateAction = &action
		default:
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown state_action")
			return
		}
	}

	event, err := c.Service.UpdateByAdmin(r.Context(), eventID, upd)
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// GetPublished godoc
// @Summary Get a published event
// @Description Returns a published event with its live view count; records one view. Unpublished events are reported as not found.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetPublished(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	event, err := c.Service.GetPublished(r.Context(), eventID, clientIP(r))
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// GetByOwner godoc
// @Summary Get own event
// @Tags events
// @Produce json
// @Param userID path string true "Initiator ID (UUID)"
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events/{eventID} [get]
func (c *EventController) GetByOwner(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(userID) || !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
		return
	}
	event, err := c.Service.GetByOwner(r.Context(), userID, eventID)
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListEventsResponse is the paginated payload for event list endpoints.
type ListEventsResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// EventListSuccessResponse is the success envelope for event list endpoints.
type EventListSuccessResponse struct {
	Data  *ListEventsResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListByOwner godoc
// @Summary List own events
// @Tags events
// @Produce json
// @Param userID path string true "Initiator ID (UUID)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events [get]
func (c *EventController) ListByOwner(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !uuidRegex.MatchString(userID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid userID")
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListByOwner(r.Context(), userID, params)
	if err != nil {
		c.fail(r, w, err)
		return
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Events: events, Pagination: meta})
}

func clientIP(r *http.Request) string {
	if i := strings.LastIndex(r.RemoteAddr, ":"); i > 0 {
		return r.RemoteAddr[:i]
	}
	return r.RemoteAddr
}
