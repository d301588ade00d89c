package http_test

import (
	"context"

	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/atinyakov/sellharbor/internal/service"
)

// fakeForms records the last submission and returns preconfigured results.
type fakeForms struct {
	id  string
	err error

	contact *models.ContactRequest
	audit   *models.AuditRequest
	meeting *models.MeetingBooking
	pkg     *models.PackageInquiry
}

func (f *fakeForms) Contact(_ context.Context, c *models.ContactRequest) (string, error) {
	f.contact = c
	return f.id, f.err
}

func (f *fakeForms) Subscribe(context.Context, *models.NewsletterSubscription) (string, error) {
	return f.id, f.err
}

func (f *fakeForms) RequestAudit(_ context.Context, a *models.AuditRequest) (string, error) {
	f.audit = a
	return f.id, f.err
}

func (f *fakeForms) BookMeeting(_ context.Context, m *models.MeetingBooking) (string, error) {
	f.meeting = m
	return f.id, f.err
}

func (f *fakeForms) ChoosePackage(_ context.Context, p *models.PackageInquiry) (string, error) {
	f.pkg = p
	return f.id, f.err
}

type fakeAccounts struct {
	signupID  string
	signupErr error
	login     *service.LoginResult
	loginErr  error
	token     string
	adminErr  error
}

func (f *fakeAccounts) Signup(context.Context, string, string, string) (string, error) {
	return f.signupID, f.signupErr
}

func (f *fakeAccounts) Login(context.Context, string, string) (*service.LoginResult, error) {
	return f.login, f.loginErr
}

func (f *fakeAccounts) AdminLogin(context.Context, string, string) (string, error) {
	return f.token, f.adminErr
}

type fakeAdmin struct {
	users    []models.User
	meetings []models.MeetingBooking
	err      error

	deleted   [2]string
	deleteErr error
	patch     service.UserPatch
	updated   *models.User
	updateErr error
}

func (f *fakeAdmin) ListUsers(context.Context) ([]models.User, error) { return f.users, f.err }
func (f *fakeAdmin) ListContacts(context.Context) ([]models.ContactRequest, error) {
	return []models.ContactRequest{}, f.err
}
func (f *fakeAdmin) ListNewsletters(context.Context) ([]models.NewsletterSubscription, error) {
	return []models.NewsletterSubscription{}, f.err
}
func (f *fakeAdmin) ListAudits(context.Context) ([]models.AuditRequest, error) {
	return []models.AuditRequest{}, f.err
}
func (f *fakeAdmin) ListMeetings(context.Context) ([]models.MeetingBooking, error) {
	return f.meetings, f.err
}
func (f *fakeAdmin) ListPackages(context.Context) ([]models.PackageInquiry, error) {
	return []models.PackageInquiry{}, f.err
}

func (f *fakeAdmin) Delete(_ context.Context, collection, id string) error {
	f.deleted = [2]string{collection, id}
	return f.deleteErr
}

func (f *fakeAdmin) UpdateUser(_ context.Context, _ string, patch service.UserPatch) (*models.User, error) {
	f.patch = patch
	return f.updated, f.updateErr
}
