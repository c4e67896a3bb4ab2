package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"frameit/internal/delivery/http/helpers"
	"frameit/internal/delivery/http/middleware"
	"frameit/internal/domain"
	"frameit/internal/services"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// maxUploadBytes caps multipart request bodies (cover images).
const maxUploadBytes = 10 << 20

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Grants  *services.GrantCache
}

func NewEventController(logger *slog.Logger, svc domain.EventService, grants *services.GrantCache) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Grants:  grants,
	}
}

// writeServiceError maps domain sentinel errors to HTTP responses; anything
// else is logged and reported as 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// pathEventID extracts and validates the eventID path parameter. On failure
// it writes a 400 and returns "".
func pathEventID(w http.ResponseWriter, r *http.Request) string {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return ""
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return ""
	}
	return eventID
}

// EventResponse is an event plus the URLs and owner-only fields assembled for
// the client.
// swagger:model EventResponse
type EventResponse struct {
	*domain.Event
	CoverImageURL string `json:"cover_image_url,omitempty"`
	AccessCode    string `json:"access_code,omitempty"`
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event from multipart form data, issues its access code and QR code, and indexes it under the caller. Form fields: name, location, start_time (RFC3339, all required), description, welcome_message, tags (comma-separated), cover_image (file, optional).
// @Tags events
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} helpers.APIResponse{data=EventResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form")
		return
	}

	input := domain.CreateEventInput{
		Name:           strings.TrimSpace(r.FormValue("name")),
		Description:    strings.TrimSpace(r.FormValue("description")),
		Location:       strings.TrimSpace(r.FormValue("location")),
		WelcomeMessage: strings.TrimSpace(r.FormValue("welcome_message")),
		Tags:           parseTags(r.FormValue("tags")),
	}
	if s := r.FormValue("start_time"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start_time must be RFC3339")
			return
		}
		input.StartTime = t
	}
	if errs := input.Validate(); len(errs) > 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}

	cover, err := readUpload(r, "cover_image")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid cover image")
		return
	}

	event, err := c.Service.CreateEvent(r.Context(), input, cover, identity.ID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, &EventResponse{Event: event, AccessCode: event.AccessCode})
}

// GetEvent godoc
// @Summary Get event details
// @Description Returns the event's public details and a time-limited cover image URL. The access code is included for the creator and for callers holding an unexpired access grant.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param identifier query string false "Grant subject for unauthenticated verified visitors"
// @Success 200 {object} helpers.APIResponse{data=EventResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := pathEventID(w, r)
	if eventID == "" {
		return
	}

	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}

	resp := &EventResponse{Event: event}
	if url, err := c.Service.CoverImageURL(r.Context(), eventID); err == nil {
		resp.CoverImageURL = url
	}
	subject := strings.TrimSpace(r.URL.Query().Get("identifier"))
	isCreator := false
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		subject = identity.ID
		isCreator = identity.ID == event.CreatorID
	}
	if isCreator || (subject != "" && c.Grants.Check(eventID, subject)) {
		resp.AccessCode = event.AccessCode
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
type UpdateEventRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Location       *string `json:"location"`
	StartTime      *string `json:"start_time"`
	WelcomeMessage *string `json:"welcome_message"`
	Tags           *string `json:"tags"`
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Applies the supplied fields. Only the event's creator may update it. A multipart body carries the same fields as form values plus an optional cover_image file that replaces the current cover.
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse{data=EventResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := pathEventID(w, r)
	if eventID == "" {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateEventRequest
	var cover *domain.Upload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form")
			return
		}
		req = updateRequestFromForm(r.MultipartForm.Value)
		var err error
		if cover, err = readUpload(r, "cover_image"); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid cover image")
			return
		}
	} else if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	fields := domain.EventUpdate{
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		WelcomeMessage: req.WelcomeMessage,
	}
	if req.StartTime != nil {
		t, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start_time must be RFC3339")
			return
		}
		fields.StartTime = &t
	}
	if req.Tags != nil {
		fields.Tags = parseTags(*req.Tags)
	}

	event, err := c.Service.UpdateEvent(r.Context(), eventID, identity.ID, fields, cover)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &EventResponse{Event: event, AccessCode: event.AccessCode})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event with best-effort cleanup of its blobs and every member's event index. The response reports cleanup steps that failed; the event record is gone regardless.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.DeletionReport}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := pathEventID(w, r)
	if eventID == "" {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	report, err := c.Service.DeleteEvent(r.Context(), eventID, identity.ID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// QRCodeResponse is the response body for GET /events/{eventID}/qr-code.
type QRCodeResponse struct {
	URL string `json:"url"`
}

// QRCode godoc
// @Summary Get the event's QR code image URL
// @Description Returns a time-limited URL for the PNG that encodes the event's ID.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=QRCodeResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/qr-code [get]
func (c *EventController) QRCode(w http.ResponseWriter, r *http.Request) {
	eventID := pathEventID(w, r)
	if eventID == "" {
		return
	}

	url, err := c.Service.QRCodeURL(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &QRCodeResponse{URL: url})
}

// ListMyEvents godoc
// @Summary List the caller's events
// @Description Returns every event the caller created or joined, with their role in each.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=[]domain.MembershipWithEvent}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.ListMyEvents(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// SendInvitationsRequest is the request body for POST /events/{eventID}/invitations.
type SendInvitationsRequest struct {
	Emails []string `json:"emails"`
}

// Validate implements helpers.Validator.
func (r *SendInvitationsRequest) Validate() []string {
	if len(r.Emails) == 0 {
		return []string{"emails is required"}
	}
	return nil
}

// SendInvitationsResponse reports the outcome of an invitation batch.
type SendInvitationsResponse struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed,omitempty"`
}

// SendInvitations godoc
// @Summary Email invitations for an event
// @Description Sends the event's access code to each address. Only the creator may invite. Per-address failures are reported, not fatal.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.SendInvitationsRequest true "Addresses to invite"
// @Success 200 {object} helpers.APIResponse{data=SendInvitationsResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *EventController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := pathEventID(w, r)
	if eventID == "" {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req SendInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	sent, failed, err := c.Service.SendInvitations(r.Context(), eventID, identity.ID, req.Emails)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &SendInvitationsResponse{Sent: sent, Failed: failed})
}

// ListInvitationsResponse is the paginated response body for GET /events/{eventID}/invitations.
type ListInvitationsResponse struct {
	Invitations []*domain.EventInvitation `json:"invitations"`
	Pagination  helpers.PaginationMeta    `json:"pagination"`
}

// ListInvitations godoc
// @Summary List sent invitations
// @Description Returns the invitations sent for the event, newest first. Only the creator may list them.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param search query string false "Filter by email substring"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse{data=ListInvitationsResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [get]
func (c *EventController) ListInvitations(w http.ResponseWriter, r *http.Request) {
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
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	invs, total, err := c.Service.ListInvitations(r.Context(), eventID, identity.ID, search, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &ListInvitationsResponse{
		Invitations: invs,
		Pagination:  helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// updateRequestFromForm maps supplied multipart values onto the request;
// absent fields stay nil and leave the event untouched.
func updateRequestFromForm(values map[string][]string) UpdateEventRequest {
	field := func(name string) *string {
		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			return nil
		}
		v := strings.TrimSpace(vals[0])
		return &v
	}
	return UpdateEventRequest{
		Name:           field("name"),
		Description:    field("description"),
		Location:       field("location"),
		StartTime:      field("start_time"),
		WelcomeMessage: field("welcome_message"),
		Tags:           field("tags"),
	}
}

// parseTags splits a comma-separated tag list, trimming blanks and dropping
// duplicates while keeping first-seen order.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// readUpload reads the named multipart file into a domain.Upload. A missing
// file is not an error; it returns (nil, nil).
func readUpload(r *http.Request, field string) (*domain.Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
