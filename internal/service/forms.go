package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/atinyakov/sellharbor/internal/notify"
)

// AuditWindow is how long an (email, product URL) pair blocks a repeat audit request.
const AuditWindow = 24 * time.Hour

// DateLayout is the accepted meeting date format.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for meeting dates that are not YYYY-MM-DD.
var ErrInvalidDate = common.NewInvalidInput("Invalid date format")

// Renderer renders named notification templates.
type Renderer interface {
	Render(name, to string, data notify.Data) (notify.Message, error)
}

// templated renders "<name>.user" for the submitter and "<name>.operator"
// for the operator. A failed message does not prevent the other.
func templated[T models.Document](tpl Renderer, name string) func(T, string, time.Time) ([]notify.Message, error) {
	return func(doc T, operator string, now time.Time) ([]notify.Message, error) {
		data := notify.Data{Record: doc, Now: now}

		var (
			msgs []notify.Message
			errs []error
		)
		if msg, err := tpl.Render(name+".user", doc.Recipient(), data); err != nil {
			errs = append(errs, err)
		} else {
			msgs = append(msgs, msg)
		}
		if operator != "" {
			if msg, err := tpl.Render(name+".operator", operator, data); err != nil {
				errs = append(errs, err)
			} else {
				msgs = append(msgs, msg)
			}
		}
		return msgs, errors.Join(errs...)
	}
}

// FormStores are the stores behind the public website forms.
type FormStores struct {
	Contacts    Store[*models.ContactRequest]
	Newsletters Store[*models.NewsletterSubscription]
	Audits      Store[*models.AuditRequest]
	Meetings    Store[*models.MeetingBooking]
	Packages    Store[*models.PackageInquiry]
}

// Forms accepts the public website forms.
type Forms struct {
	guard      *Guard
	contact    Form[*models.ContactRequest]
	newsletter Form[*models.NewsletterSubscription]
	audit      Form[*models.AuditRequest]
	meeting    Form[*models.MeetingBooking]
	pkg        Form[*models.PackageInquiry]
}

// NewForms wires every form to its store and templates.
func NewForms(guard *Guard, tpl Renderer, stores FormStores) *Forms {
	return &Forms{
		guard: guard,
		contact: Form[*models.ContactRequest]{
			Name:   "contact",
			Store:  stores.Contacts,
			Render: templated[*models.ContactRequest](tpl, "contact"),
		},
		newsletter: Form[*models.NewsletterSubscription]{
			Name: "newsletter",
			Policy: Policy[*models.NewsletterSubscription]{
				Scope:  ScopeForever,
				Reason: Fixed[*models.NewsletterSubscription]("You are already subscribed"),
			},
			Store:  stores.Newsletters,
			Render: templated[*models.NewsletterSubscription](tpl, "newsletter"),
		},
		audit: Form[*models.AuditRequest]{
			Name: "audit",
			Policy: Policy[*models.AuditRequest]{
				Scope:  ScopeWindow,
				Window: AuditWindow,
				Reason: Fixed[*models.AuditRequest]("An audit request for this product was received recently. Please wait before requesting again."),
			},
			Store:  stores.Audits,
			Render: templated[*models.AuditRequest](tpl, "audit"),
		},
		meeting: Form[*models.MeetingBooking]{
			Name: "meeting",
			Policy: Policy[*models.MeetingBooking]{
				Scope:  ScopeForever,
				Reason: Fixed[*models.MeetingBooking]("You already booked a meeting for this date"),
			},
			Store:  stores.Meetings,
			Render: templated[*models.MeetingBooking](tpl, "meeting"),
		},
		pkg: Form[*models.PackageInquiry]{
			Name: "package",
			Policy: Policy[*models.PackageInquiry]{
				Scope: ScopeForever,
				Reason: func(p *models.PackageInquiry) string {
					return fmt.Sprintf("You have already submitted a request for the %s package.", p.Package)
				},
			},
			Store:  stores.Packages,
			Render: templated[*models.PackageInquiry](tpl, "package"),
		},
	}
}

// Contact stores a contact form message. It has no duplicate policy.
func (f *Forms) Contact(ctx context.Context, c *models.ContactRequest) (string, error) {
	c.Email = models.NormalizeEmail(c.Email)
	return Submit(ctx, f.guard, f.contact, c)
}

// Subscribe adds an address to the newsletter once.
func (f *Forms) Subscribe(ctx context.Context, n *models.NewsletterSubscription) (string, error) {
	n.Email = models.NormalizeEmail(n.Email)
	return Submit(ctx, f.guard, f.newsletter, n)
}

// RequestAudit records an audit request unless the same product was
// requested by the same address within AuditWindow.
func (f *Forms) RequestAudit(ctx context.Context, a *models.AuditRequest) (string, error) {
	a.Email = models.NormalizeEmail(a.Email)
	return Submit(ctx, f.guard, f.audit, a)
}

// BookMeeting books one meeting per address and date.
func (f *Forms) BookMeeting(ctx context.Context, m *models.MeetingBooking) (string, error) {
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return "", ErrInvalidDate
	}
	m.Email = models.NormalizeEmail(m.Email)
	return Submit(ctx, f.guard, f.meeting, m)
}

// ChoosePackage records one inquiry per address and package.
func (f *Forms) ChoosePackage(ctx context.Context, p *models.PackageInquiry) (string, error) {
	p.Email = models.NormalizeEmail(p.Email)
	return Submit(ctx, f.guard, f.pkg, p)
}
