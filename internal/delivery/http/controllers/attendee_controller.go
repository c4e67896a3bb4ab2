package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"frameit/internal/delivery/http/helpers"
	"frameit/internal/delivery/http/middleware"
	"frameit/internal/domain"
)

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.MembershipService
}

func NewAttendeeController(logger *slog.Logger, svc domain.MembershipService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// JoinEventRequest is the request body for POST /events/{eventID}/attendees.
type JoinEventRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}

// Validate implements helpers.Validator.
func (r *JoinEventRequest) Validate() []string {
	req := domain.JoinRequest{
		Name:         strings.TrimSpace(r.Name),
		Email:        strings.TrimSpace(r.Email),
		Relationship: strings.TrimSpace(r.Relationship),
	}
	return req.Validate()
}

// JoinEventResponse is the join outcome: the attendee record and whether this
// was a first join.
type JoinEventResponse struct {
	Attendee *domain.Attendee `json:"attendee"`
	Created  bool             `json:"created"`
}

// Join godoc
// @Summary Join an event
// @Description Adds the caller to the event's attendee list, or refreshes their existing entry. One entry per email per event; repeat joins update name, relationship, and last_joined_at but keep the original joined_at. Works for guests and authenticated users alike.
// @Tags attendees
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.JoinEventRequest true "Attendee details"
// @Success 201 {object} helpers.APIResponse{data=JoinEventResponse} "First join"
// @Success 200 {object} helpers.APIResponse{data=JoinEventResponse} "Repeat join"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [post]
func (c *AttendeeController) Join(w http.ResponseWriter, r *http.Request) {
	eventID := pathEventID(w, r)
	if eventID == "" {
		return
	}

	var body JoinEventRequest
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}

	req := domain.JoinRequest{
		Name:         strings.TrimSpace(body.Name),
		Email:        strings.TrimSpace(body.Email),
		Relationship: strings.TrimSpace(body.Relationship),
	}
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		req.UserID = &identity.ID
	}

	attendee, created, err := c.Service.Join(r.Context(), eventID, req)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, &JoinEventResponse{Attendee: attendee, Created: created})
}

// ListAttendeesResponse is the paginated response body for GET /events/{eventID}/attendees.
type ListAttendeesResponse struct {
	Attendees  []*domain.Attendee     `json:"attendees"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListAttendees godoc
// @Summary List event attendees
// @Description Returns the event's attendees, earliest join first. Only the event's creator may list them.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse{data=ListAttendeesResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [get]
func (c *AttendeeController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID := pathEventID(w, r)
	if eventID == "" {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	params := helpers.ParsePagination(r)
	attendees, total, err := c.Service.ListAttendees(r.Context(), eventID, identity.ID, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &ListAttendeesResponse{
		Attendees:  attendees,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// MembershipResponse is the response body for the membership probe.
type MembershipResponse struct {
	Member bool `json:"member"`
}

// Membership godoc
// @Summary Check event membership
// @Description Reports whether the given identifier (user ID or email) belongs to any attendee of the event. Unknown events read as non-membership, not an error.
// @Tags attendees
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param identifier query string true "User ID or email"
// @Success 200 {object} helpers.APIResponse{data=MembershipResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/membership [get]
func (c *AttendeeController) Membership(w http.ResponseWriter, r *http.Request) {
	eventID := pathEventID(w, r)
	if eventID == "" {
		return
	}

	identifier := strings.TrimSpace(r.URL.Query().Get("identifier"))
	if identifier == "" {
		if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
			identifier = identity.ID
		}
	}
	if identifier == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "identifier is required")
		return
	}

	member, err := c.Service.IsMember(r.Context(), eventID, identifier)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &MembershipResponse{Member: member})
}
