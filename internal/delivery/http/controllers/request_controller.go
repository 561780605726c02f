package controllers

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

type RequestController struct {
	Logger  *slog.Logger
	Service domain.RequestService
}

func NewRequestController(logger *slog.Logger, svc domain.RequestService) *RequestController {
	return &RequestController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *RequestController) fail(r *http.Request, w http.ResponseWriter, err error) {
	if status := helpers.WriteDomainError(w, err); status >= http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
}

// RequestSuccessResponse is the success envelope for single-request endpoints.
type RequestSuccessResponse struct {
	Data  *domain.Request   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RequestListSuccessResponse is the success envelope for request list endpoints.
type RequestListSuccessResponse struct {
	Data  []*domain.Request `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Create godoc
// @Summary Request participation in an event
// @Description Creates a participation request for a published event. The request is confirmed immediately when the event has no limit or no moderation.
// @Tags requests
// @Produce json
// @Param userID path string true "Requester ID (UUID)"
// @Param eventId query string true "Event ID (UUID)"
// @Success 201 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/requests [post]
func (c *RequestController) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.URL.Query().Get("eventId")
	if !uuidRegex.MatchString(userID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid userID")
		return
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing or invalid eventId")
		return
	}

	req, err := c.Service.Create(r.Context(), userID, eventID)
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, req)
}

// Cancel godoc
// @Summary Cancel a participation request
// @Description Withdraws a request. Rejected and already-canceled requests cannot be canceled again.
// @Tags requests
// @Produce json
// @Param userID path string true "Caller ID (UUID)"
// @Param requestID path string true "Request ID (UUID)"
// @Success 200 {object} controllers.RequestSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/requests/{requestID}/cancel [patch]
func (c *RequestController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	requestID := r.PathValue("requestID")
	if !uuidRegex.MatchString(userID) || !uuidRegex.MatchString(requestID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
		return
	}

	req, err := c.Service.Cancel(r.Context(), userID, requestID)
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, req)
}

// ListMine godoc
// @Summary List own participation requests
// @Tags requests
// @Produce json
// @Param userID path string true "Requester ID (UUID)"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/requests [get]
func (c *RequestController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !uuidRegex.MatchString(userID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid userID")
		return
	}
	reqs, err := c.Service.ListByRequester(r.Context(), userID)
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reqs)
}

// ListForEvent godoc
// @Summary List participation requests for own event
// @Tags requests
// @Produce json
// @Param userID path string true "Initiator ID (UUID)"
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events/{eventID}/requests [get]
func (c *RequestController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(userID) || !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
		return
	}
	reqs, err := c.Service.ListByEvent(r.Context(), userID, eventID)
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reqs)
}

// ModerateRequestsBody is the request body for PATCH /users/{userID}/events/{eventID}/requests.
type ModerateRequestsBody struct {
	RequestIDs []string `json:"request_ids"`
	Status     string   `json:"status"`
}

// Validate implements helpers.Validator.
func (b *ModerateRequestsBody) Validate() []string {
	var errs []string
	if len(b.RequestIDs) == 0 {
		errs = append(errs, "request_ids must not be empty")
	}
	for _, id := range b.RequestIDs {
		if !uuidRegex.MatchString(id) {
			errs = append(errs, "request_ids must contain valid UUIDs")
			break
		}
	}
	switch domain.RequestStatus(b.Status) {
	case domain.RequestConfirmed, domain.RequestRejected:
	default:
		errs = append(errs, "status must be CONFIRMED or REJECTED")
	}
	return errs
}

// ModerationSuccessResponse is the success envelope for the moderation endpoint.
type ModerationSuccessResponse struct {
	Data  *domain.ModerationResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// Moderate godoc
// @Summary Confirm or reject pending requests
// @Description Applies one batch decision to the listed requests, in the order given. When confirming beyond the remaining capacity, the overflow is rejected.
// @Tags requests
// @Accept json
// @Produce json
// @Param userID path string true "Initiator ID (UUID)"
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.ModerateRequestsBody true "Batch decision"
// @Success 200 {object} controllers.ModerationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/events/{eventID}/requests [patch]
func (c *RequestController) Moderate(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(userID) || !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
		return
	}
	var body ModerateRequestsBody
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}

	result, err := c.Service.Moderate(r.Context(), userID, eventID, body.RequestIDs, domain.RequestStatus(body.Status))
	if err != nil {
		c.fail(r, w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
