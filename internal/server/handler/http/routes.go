package http

import (
	"net/http"

	"github.com/atinyakov/sellharbor/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// website backend.
//
// Routes:
//
//	GET  /                        → health message
//	POST /contact, /newsletter, /audit, /book-meeting, /choose-package
//	POST /signup, /login, /admin/login
//	GET  /admin/me, /admin/{users,meetings,audits,contacts,newsletters,packages}
//	PUT  /admin/users/{id}
//	DELETE /admin/{collection}/{id}
//
// Everything under /admin except /admin/login requires an admin bearer token.
func NewRouter(
	forms *FormHandler,
	accounts *AccountHandler,
	admin *AdminHandler,
	verifier middleware.TokenVerifier,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.CORS(allowedOrigins))
	// Only allow request bodies with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Backend running successfully!"})
	})

	r.Post("/contact", forms.Contact)
	r.Post("/newsletter", forms.Newsletter)
	r.Post("/audit", forms.Audit)
	r.Post("/book-meeting", forms.BookMeeting)
	r.Post("/choose-package", forms.ChoosePackage)

	r.Post("/signup", accounts.Signup)
	r.Post("/login", accounts.Login)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", accounts.AdminLogin)

		// Protected group: requires a valid admin token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(verifier))

			r.Get("/me", admin.Me)

			r.Get("/users", list(admin, admin.Admin.ListUsers))
			r.Put("/users/{id}", admin.UpdateUser)
			r.Delete("/users/{id}", admin.Delete("users"))

			r.Get("/meetings", list(admin, admin.Admin.ListMeetings))
			r.Delete("/meetings/{id}", admin.Delete("meetings"))

			r.Get("/audits", list(admin, admin.Admin.ListAudits))
			r.Delete("/audits/{id}", admin.Delete("audits"))

			r.Get("/contacts", list(admin, admin.Admin.ListContacts))
			r.Delete("/contacts/{id}", admin.Delete("contacts"))

			r.Get("/newsletters", list(admin, admin.Admin.ListNewsletters))
			r.Delete("/newsletters/{id}", admin.Delete("newsletters"))

			r.Get("/packages", list(admin, admin.Admin.ListPackages))
			r.Delete("/packages/{id}", admin.Delete("packages"))
		})
	})

	return r
}
