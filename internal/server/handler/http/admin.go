package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/sellharbor/internal/middleware"
	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/atinyakov/sellharbor/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminService is the admin panel backend.
type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListContacts(ctx context.Context) ([]models.ContactRequest, error)
	ListNewsletters(ctx context.Context) ([]models.NewsletterSubscription, error)
	ListAudits(ctx context.Context) ([]models.AuditRequest, error)
	ListMeetings(ctx context.Context) ([]models.MeetingBooking, error)
	ListPackages(ctx context.Context) ([]models.PackageInquiry, error)
	Delete(ctx context.Context, collection, id string) error
	UpdateUser(ctx context.Context, id string, patch service.UserPatch) (*models.User, error)
}

// AdminHandler serves the /admin endpoints behind BearerAuth.
type AdminHandler struct {
	Admin AdminService
	Log   *zap.Logger
}

type userUpdateIn struct {
	Username *string `json:"username" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=1"`
}

// Me handles GET /admin/me and echoes the token subject.
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{"Not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": id.Subject})
}

// list adapts a service list call to a handler.
func list[E any](h *AdminHandler, fn func(context.Context) ([]E, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fn(r.Context())
		if err != nil {
			writeError(w, h.Log, err, internalError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// Delete returns the DELETE /admin/<collection>/{id} handler.
func (h *AdminHandler) Delete(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Admin.Delete(r.Context(), collection, chi.URLParam(r, "id")); err != nil {
			writeError(w, h.Log, err, internalError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateUser handles PUT /admin/users/{id}.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in userUpdateIn
	if err := decode(r, &in); err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	u, err := h.Admin.UpdateUser(r.Context(), chi.URLParam(r, "id"), service.UserPatch{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
