package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/sellharbor/internal/common"
	handler "github.com/atinyakov/sellharbor/internal/server/handler/http"
	"go.uber.org/zap"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return out
}

func TestFormHandler(t *testing.T) {
	tests := []struct {
		name       string
		call       func(h *handler.FormHandler) http.HandlerFunc
		body       string
		forms      *fakeForms
		wantCode   int
		wantFields map[string]any
	}{
		{
			name:       "contact created",
			call:       func(h *handler.FormHandler) http.HandlerFunc { return h.Contact },
			body:       `{"firstname":"Ann","email":"ann@example.com","subject":"Hi","message":"Hello"}`,
			forms:      &fakeForms{id: "c1"},
			wantCode:   http.StatusCreated,
			wantFields: map[string]any{"message": "Contact request received", "id": "c1"},
		},
		{
			name:       "contact store failure",
			call:       func(h *handler.FormHandler) http.HandlerFunc { return h.Contact },
			body:       `{"firstname":"Ann","email":"ann@example.com","subject":"Hi","message":"Hello"}`,
			forms:      &fakeForms{err: errors.Join(common.ErrStoreFailure, errors.New("dial tcp: refused"))},
			wantCode:   http.StatusInternalServerError,
			wantFields: map[string]any{"detail": "Failed to save contact request"},
		},
		{
			name:       "contact missing field",
			call:       func(h *handler.FormHandler) http.HandlerFunc { return h.Contact },
			body:       `{"email":"ann@example.com","subject":"Hi","message":"Hello"}`,
			forms:      &fakeForms{},
			wantCode:   http.StatusBadRequest,
			wantFields: map[string]any{"detail": `Field "firstname" is required`},
		},
		{
			name:       "newsletter bad email",
			call:       func(h *handler.FormHandler) http.HandlerFunc { return h.Newsletter },
			body:       `{"email":"not-an-email"}`,
			forms:      &fakeForms{},
			wantCode:   http.StatusBadRequest,
			wantFields: map[string]any{"detail": "Invalid email address"},
		},
		{
			name:       "newsletter duplicate",
			call:       func(h *handler.FormHandler) http.HandlerFunc { return h.Newsletter },
			body:       `{"email":"a@b.io"}`,
			forms:      &fakeForms{err: common.NewConflict("You are already subscribed")},
			wantCode:   http.StatusConflict,
			wantFields: map[string]any{"detail": "You are already subscribed"},
		},
		{
			name:       "newsletter malformed json",
			call:       func(h *handler.FormHandler) http.HandlerFunc { return h.Newsletter },
			body:       `{"email":`,
			forms:      &fakeForms{},
			wantCode:   http.StatusBadRequest,
			wantFields: map[string]any{"detail": "Invalid request body"},
		},
		{
			name:       "audit accepted",
			call:       func(h *handler.FormHandler) http.HandlerFunc { return h.Audit },
			body:       `{"firstname":"Ann","lastname":"Lee","email":"a@b.io","brandname":"B","producturl":"https://x","message":"m"}`,
			forms:      &fakeForms{id: "a1"},
			wantCode:   http.StatusOK,
			wantFields: map[string]any{"message": "Audit request received", "id": "a1"},
		},
		{
			name:       "meeting booked",
			call:       func(h *handler.FormHandler) http.HandlerFunc { return h.BookMeeting },
			body:       `{"name":"Bo","email":"bo@x.io","agenda":"growth","date":"2024-07-01"}`,
			forms:      &fakeForms{id: "m1"},
			wantCode:   http.StatusCreated,
			wantFields: map[string]any{"message": "Meeting booked", "booking_id": "m1"},
		},
		{
			name:       "meeting bad date",
			call:       func(h *handler.FormHandler) http.HandlerFunc { return h.BookMeeting },
			body:       `{"name":"Bo","email":"bo@x.io","date":"tomorrow"}`,
			forms:      &fakeForms{err: common.NewInvalidInput("Invalid date format")},
			wantCode:   http.StatusBadRequest,
			wantFields: map[string]any{"detail": "Invalid date format"},
		},
		{
			name:     "package created",
			call:     func(h *handler.FormHandler) http.HandlerFunc { return h.ChoosePackage },
			body:     `{"package":"Growth","price":"$999","name":"Bo","email":"bo@x.io","company":"Acme","url":"https://acme","businessType":"retail"}`,
			forms:    &fakeForms{id: "p1"},
			wantCode: http.StatusCreated,
			wantFields: map[string]any{
				"message": "Package request submitted successfully. A confirmation email has been sent.",
				"id":      "p1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &handler.FormHandler{Forms: tt.forms, Log: zap.NewNop()}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))

			tt.call(h)(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d (body %q)", rec.Code, tt.wantCode, rec.Body.String())
			}
			got := decodeBody(t, rec)
			for k, want := range tt.wantFields {
				if got[k] != want {
					t.Errorf("%s = %v; want %v", k, got[k], want)
				}
			}
			if strings.Contains(rec.Body.String(), "dial tcp") {
				t.Errorf("internal error text leaked: %q", rec.Body.String())
			}
		})
	}
}

func TestFormHandler_PackageNotesOptional(t *testing.T) {
	forms := &fakeForms{id: "p1"}
	h := &handler.FormHandler{Forms: forms, Log: zap.NewNop()}
	rec := httptest.NewRecorder()
	body := `{"package":"Growth","price":"$999","name":"Bo","email":"Bo@X.io","company":"Acme","url":"https://acme","businessType":"retail","notes":"call after 5"}`

	h.ChoosePackage(rec, httptest.NewRequest(http.MethodPost, "/choose-package", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if forms.pkg == nil || forms.pkg.Notes != "call after 5" || forms.pkg.BusinessType != "retail" {
		t.Errorf("inquiry passed to service = %+v", forms.pkg)
	}
}
