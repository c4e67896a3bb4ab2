package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"frameit/internal/delivery/http/helpers"
	"frameit/internal/delivery/http/middleware"
	"frameit/internal/domain"
	"frameit/internal/services"
)

type AccessController struct {
	Logger  *slog.Logger
	Service domain.AccessService
	Grants  *services.GrantCache
}

func NewAccessController(logger *slog.Logger, svc domain.AccessService, grants *services.GrantCache) *AccessController {
	return &AccessController{
		Logger:  logger,
		Service: svc,
		Grants:  grants,
	}
}

// VerifyAccessRequest is the request body for POST /events/{eventID}/verify.
// Identifier lets an unauthenticated visitor name themselves so their grant
// survives across requests; authenticated callers are keyed by user ID.
type VerifyAccessRequest struct {
	AccessCode string `json:"access_code"`
	Identifier string `json:"identifier"`
}

// Validate implements helpers.Validator. An empty code is allowed: the
// request may be a probe for an existing grant.
func (r *VerifyAccessRequest) Validate() []string { return nil }

// VerifyAccessResponse reports the outcome of a code challenge.
type VerifyAccessResponse struct {
	Verified bool `json:"verified"`
	// Granted is true when verification was satisfied by a still-valid
	// earlier grant rather than the submitted code.
	Granted bool `json:"granted,omitempty"`
}

// VerifyAccessCode godoc
// @Summary Verify an event access code
// @Description Checks the submitted 4-digit code against the event's stored code. On success the caller gets a 24-hour grant; while the grant holds, repeat calls succeed without a code.
// @Tags access
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.VerifyAccessRequest true "Code to check"
// @Success 200 {object} helpers.APIResponse{data=VerifyAccessResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/verify [post]
func (c *AccessController) VerifyAccessCode(w http.ResponseWriter, r *http.Request) {
	eventID := pathEventID(w, r)
	if eventID == "" {
		return
	}

	var req VerifyAccessRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	subject := strings.TrimSpace(req.Identifier)
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		subject = identity.ID
	}

	// A live grant short-circuits the code challenge entirely.
	if subject != "" && c.Grants.Check(eventID, subject) {
		helpers.WriteJSONSuccess(w, http.StatusOK, &VerifyAccessResponse{Verified: true, Granted: true})
		return
	}

	if strings.TrimSpace(req.AccessCode) == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "access_code is required")
		return
	}

	verified, err := c.Service.VerifyAccessCode(r.Context(), eventID, req.AccessCode)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if verified && subject != "" {
		c.Grants.Record(eventID, subject)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &VerifyAccessResponse{Verified: verified})
}
