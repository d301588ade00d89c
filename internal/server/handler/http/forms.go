package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/sellharbor/internal/models"
	"go.uber.org/zap"
)

// FormService accepts the public website forms.
type FormService interface {
	Contact(ctx context.Context, c *models.ContactRequest) (string, error)
	Subscribe(ctx context.Context, n *models.NewsletterSubscription) (string, error)
	RequestAudit(ctx context.Context, a *models.AuditRequest) (string, error)
	BookMeeting(ctx context.Context, m *models.MeetingBooking) (string, error)
	ChoosePackage(ctx context.Context, p *models.PackageInquiry) (string, error)
}

// FormHandler serves the public form endpoints.
type FormHandler struct {
	Forms FormService
	Log   *zap.Logger
}

// Text fields must be present but may be empty; emails must be valid.

type contactIn struct {
	Firstname *string `json:"firstname" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Subject   *string `json:"subject" validate:"required"`
	Message   *string `json:"message" validate:"required"`
}

type newsletterIn struct {
	Email string `json:"email" validate:"required,email"`
}

type auditIn struct {
	Firstname  *string `json:"firstname" validate:"required"`
	Lastname   *string `json:"lastname" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Brandname  *string `json:"brandname" validate:"required"`
	ProductURL *string `json:"producturl" validate:"required"`
	Message    string  `json:"message"`
}

type meetingIn struct {
	Name   *string `json:"name" validate:"required"`
	Email  string  `json:"email" validate:"required,email"`
	Agenda string  `json:"agenda"`
	Date   *string `json:"date" validate:"required"`
}

type packageIn struct {
	Package      *string `json:"package" validate:"required"`
	Price        *string `json:"price" validate:"required"`
	Name         *string `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Company      *string `json:"company" validate:"required"`
	URL          *string `json:"url" validate:"required"`
	BusinessType *string `json:"businessType" validate:"required"`
	Notes        string  `json:"notes"`
}

// Contact handles POST /contact.
func (h *FormHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var in contactIn
	if err := decode(r, &in); err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	id, err := h.Forms.Contact(r.Context(), &models.ContactRequest{
		Firstname: str(in.Firstname),
		Email:     in.Email,
		Subject:   str(in.Subject),
		Message:   str(in.Message),
	})
	if err != nil {
		writeError(w, h.Log, err, "Failed to save contact request")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Contact request received", "id": id})
}

// Newsletter handles POST /newsletter.
func (h *FormHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	var in newsletterIn
	if err := decode(r, &in); err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	id, err := h.Forms.Subscribe(r.Context(), &models.NewsletterSubscription{Email: in.Email})
	if err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Subscribed", "id": id})
}

// Audit handles POST /audit.
func (h *FormHandler) Audit(w http.ResponseWriter, r *http.Request) {
	var in auditIn
	if err := decode(r, &in); err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	id, err := h.Forms.RequestAudit(r.Context(), &models.AuditRequest{
		Firstname:  str(in.Firstname),
		Lastname:   str(in.Lastname),
		Email:      in.Email,
		Brandname:  str(in.Brandname),
		ProductURL: str(in.ProductURL),
		Message:    in.Message,
	})
	if err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Audit request received", "id": id})
}

// BookMeeting handles POST /book-meeting.
func (h *FormHandler) BookMeeting(w http.ResponseWriter, r *http.Request) {
	var in meetingIn
	if err := decode(r, &in); err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	id, err := h.Forms.BookMeeting(r.Context(), &models.MeetingBooking{
		Name:   str(in.Name),
		Email:  in.Email,
		Agenda: in.Agenda,
		Date:   str(in.Date),
	})
	if err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Meeting booked", "booking_id": id})
}

// ChoosePackage handles POST /choose-package.
func (h *FormHandler) ChoosePackage(w http.ResponseWriter, r *http.Request) {
	var in packageIn
	if err := decode(r, &in); err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	id, err := h.Forms.ChoosePackage(r.Context(), &models.PackageInquiry{
		Package:      str(in.Package),
		Price:        str(in.Price),
		Name:         str(in.Name),
		Email:        in.Email,
		Company:      str(in.Company),
		URL:          str(in.URL),
		BusinessType: str(in.BusinessType),
		Notes:        in.Notes,
	})
	if err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Package request submitted successfully. A confirmation email has been sent.",
		"id":      id,
	})
}
