// Package http provides the HTTP handlers and router for the website
// backend: public form endpoints, account signup and login, and the
// token-protected admin panel.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. Every failure is an
// InvalidInput error carrying a short reason.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.NewInvalidInput("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return common.NewInvalidInput(describe(verrs[0]))
		}
		return common.NewInvalidInput("Invalid request body")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field %q is required", fe.Field())
	case "email":
		return "Invalid email address"
	default:
		return fmt.Sprintf("Invalid value for %q", fe.Field())
	}
}

// str dereferences an optional field, treating absent as empty.
func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Detail string `json:"detail"`
}

// writeError maps err onto its status code. Reasons carried by conflict and
// validation errors are shown; anything unexpected is logged and answered
// with internal, which never contains error text.
func writeError(w http.ResponseWriter, log *zap.Logger, err error, internal string) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{common.Reason(err, "Invalid request")})
	case errors.Is(err, common.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{"Not authenticated"})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{"Not found"})
	case errors.Is(err, common.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{common.Reason(err, "Already exists")})
	default:
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{internal})
	}
}

const internalError = "Internal server error"
