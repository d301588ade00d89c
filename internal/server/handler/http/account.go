package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/atinyakov/sellharbor/internal/service"
	"go.uber.org/zap"
)

// AccountService covers signup and both logins.
type AccountService interface {
	Signup(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	AdminLogin(ctx context.Context, username, password string) (string, error)
}

// AccountHandler serves signup, user login and admin login.
type AccountHandler struct {
	Accounts AccountService
	Log      *zap.Logger
}

type signupIn struct {
	Username *string `json:"username" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password" validate:"required"`
}

// An empty password is a wrong password, not a malformed request.
type loginIn struct {
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password" validate:"required"`
}

type adminLoginIn struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type signupOut struct {
	Success       bool   `json:"success,omitempty"`
	AlreadyExists bool   `json:"alreadyExists,omitempty"`
	Message       string `json:"message"`
	UserID        string `json:"user_id,omitempty"`
}

type loginOut struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token,omitempty"`
}

// Signup handles POST /signup. A registered email is answered with 200 and
// alreadyExists set, which the website treats as a prompt to log in.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupIn
	if err := decode(r, &in); err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	id, err := h.Accounts.Signup(r.Context(), str(in.Username), in.Email, str(in.Password))
	if errors.Is(err, common.ErrConflict) {
		writeJSON(w, http.StatusOK, signupOut{AlreadyExists: true, Message: common.Reason(err, "Email already registered. Please login.")})
		return
	}
	if err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	writeJSON(w, http.StatusOK, signupOut{Success: true, Message: "Signup successful!", UserID: id})
}

// Login handles POST /login. Wrong credentials are a 200 with success false.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginIn
	if err := decode(r, &in); err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	res, err := h.Accounts.Login(r.Context(), in.Email, str(in.Password))
	if err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	writeJSON(w, http.StatusOK, loginOut{
		Success:  res.Success,
		Message:  res.Message,
		Username: res.Username,
		Token:    res.Token,
	})
}

// AdminLogin handles POST /admin/login.
func (h *AccountHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var in adminLoginIn
	if err := decode(r, &in); err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	token, err := h.Accounts.AdminLogin(r.Context(), str(in.Username), str(in.Password))
	if errors.Is(err, common.ErrUnauthenticated) {
		writeJSON(w, http.StatusUnauthorized, errorBody{"Invalid username or password"})
		return
	}
	if err != nil {
		writeError(w, h.Log, err, internalError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}
