package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"frameit/internal/delivery/http/controllers"
)

// Middleware wraps a handler; RequireAuth and OptionalAuth are built with
// middleware.RequireAuth / middleware.OptionalAuth.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	eventController *controllers.EventController,
	accessController *controllers.AccessController,
	attendeeController *controllers.AttendeeController,
	requireAuth Middleware,
	optionalAuth Middleware,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", optionalAuth(eventController.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))
	mux.HandleFunc("GET /events/{eventID}/qr-code", eventController.QRCode)

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", requireAuth(eventController.SendInvitations))
	mux.HandleFunc("GET /events/{eventID}/invitations", requireAuth(eventController.ListInvitations))

	// Access verification
	mux.HandleFunc("POST /events/{eventID}/verify", optionalAuth(accessController.VerifyAccessCode))

	// Attendees
	mux.HandleFunc("POST /events/{eventID}/attendees", optionalAuth(attendeeController.Join))
	mux.HandleFunc("GET /events/{eventID}/attendees", requireAuth(attendeeController.ListAttendees))
	mux.HandleFunc("GET /events/{eventID}/membership", optionalAuth(attendeeController.Membership))

	// Users
	mux.HandleFunc("GET /users/me/events", requireAuth(eventController.ListMyEvents))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
