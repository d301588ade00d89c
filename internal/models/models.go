// Package models defines the records persisted for every website form,
// plus the user and admin accounts.
package models

import (
	"strings"
	"time"
)

// Document is implemented by every submission record. The store assigns the
// identifier; the submission guard stamps the creation time.
type Document interface {
	// Stamp sets the creation timestamp. It is called once, before insertion.
	Stamp(createdAt time.Time)
	// SetID records the identifier assigned by the store.
	SetID(id string)
	// Recipient is the submitter's address for confirmation emails.
	Recipient() string
}

// Meta holds the server-assigned fields common to every record.
type Meta struct {
	// ID is the opaque store identifier, surfaced to clients as a string.
	ID string `json:"id" bson:"_id,omitempty"`
	// CreatedAt is set once at insertion time (UTC).
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Stamp sets CreatedAt.
func (m *Meta) Stamp(createdAt time.Time) { m.CreatedAt = createdAt }

// SetID sets ID.
func (m *Meta) SetID(id string) { m.ID = id }

// ContactRequest is a message sent through the contact form.
type ContactRequest struct {
	Meta      `bson:",inline"`
	Firstname string `json:"firstname" bson:"firstname"`
	Email     string `json:"email" bson:"email"`
	Subject   string `json:"subject" bson:"subject"`
	Message   string `json:"message" bson:"message"`
}

func (c *ContactRequest) Recipient() string { return c.Email }

// NewsletterSubscription is a newsletter signup. Email is stored normalized.
type NewsletterSubscription struct {
	Meta  `bson:",inline"`
	Email string `json:"email" bson:"email"`
}

func (n *NewsletterSubscription) Recipient() string { return n.Email }

// AuditRequest asks for a free account audit of a product.
type AuditRequest struct {
	Meta       `bson:",inline"`
	Firstname  string `json:"firstname" bson:"firstname"`
	Lastname   string `json:"lastname" bson:"lastname"`
	Email      string `json:"email" bson:"email"`
	Brandname  string `json:"brandname" bson:"brandname"`
	ProductURL string `json:"producturl" bson:"producturl"`
	Message    string `json:"message" bson:"message"`
}

func (a *AuditRequest) Recipient() string { return a.Email }

// MeetingBooking reserves a strategy call on a calendar date.
type MeetingBooking struct {
	Meta   `bson:",inline"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
	Agenda string `json:"agenda" bson:"agenda"`
	// Date is a calendar date in YYYY-MM-DD form.
	Date string `json:"date" bson:"date"`
}

func (m *MeetingBooking) Recipient() string { return m.Email }

// PackageInquiry is a purchase inquiry for one of the service packages.
type PackageInquiry struct {
	Meta         `bson:",inline"`
	Package      string `json:"package" bson:"package"`
	Price        string `json:"price" bson:"price"`
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email" bson:"email"`
	Company      string `json:"company" bson:"company"`
	URL          string `json:"url" bson:"url"`
	BusinessType string `json:"businessType" bson:"businessType"`
	Notes        string `json:"notes" bson:"notes"`
}

func (p *PackageInquiry) Recipient() string { return p.Email }

// User is a website account created through signup.
type User struct {
	Meta     `bson:",inline"`
	Username string `json:"username" bson:"username"`
	Email    string `json:"email" bson:"email"`
	// PasswordHash is the bcrypt hash; never serialized to clients.
	PasswordHash string `json:"-" bson:"password"`
}

func (u *User) Recipient() string { return u.Email }

// UserUpdate is a partial update of a user. Nil fields are left unchanged.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// Empty reports whether the update carries no fields.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil
}

// Admin is an operator account allowed into the admin panel.
type Admin struct {
	ID           string `json:"id" bson:"_id,omitempty"`
	Username     string `json:"username" bson:"username"`
	PasswordHash string `json:"-" bson:"password"`
	Role         string `json:"role" bson:"role"`
}

// RoleAdmin and RoleUser are the token roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// NormalizeEmail lower-cases and trims an address so duplicate checks and
// stored values agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
