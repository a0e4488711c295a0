package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/adil-khursheed/mysterymessage/internal/model"
	"github.com/adil-khursheed/mysterymessage/internal/session"
	"github.com/adil-khursheed/mysterymessage/internal/store"
)

const (
	verifyCodeExpiry  = time.Hour
	minPasswordLength = 6
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{2,20}$`)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyCodeRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type signInResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token"`
	User    model.Account `json:"user"`
}

func validateUsername(username string) string {
	if !usernameRegex.MatchString(username) {
		return "Username must be 2-20 characters and contain only letters, numbers and underscores"
	}
	return ""
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if msg := validateUsername(req.Username); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error(r.Context(), "hash password failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error registering user")
		return
	}
	code, err := generateVerifyCode()
	if err != nil {
		s.logger.Error(r.Context(), "generate verify code failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error registering user")
		return
	}

	created, err := s.store.CreateAccount(r.Context(), model.Account{
		Username:         req.Username,
		PasswordHash:     string(hash),
		VerifyCode:       code,
		VerifyCodeExpiry: s.now().Add(verifyCodeExpiry),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "Username is already taken")
			return
		}
		s.logger.Error(r.Context(), "create account failed", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "Error registering user")
		return
	}

	if err := s.codes.SendVerificationCode(r.Context(), created.Username, code); err != nil {
		s.logger.Error(r.Context(), "send verification code failed", "username", created.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "Error sending verification code")
		return
	}

	writeOK(w, http.StatusCreated, "User registered successfully. Please verify your account.")
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	acc, err := s.store.GetAccountByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error(r.Context(), "lookup account failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error verifying user")
		return
	}
	if acc.IsVerified {
		writeOK(w, http.StatusOK, "Account already verified")
		return
	}

	code := strings.TrimSpace(req.Code)
	if subtle.ConstantTimeCompare([]byte(code), []byte(acc.VerifyCode)) != 1 {
		writeError(w, http.StatusBadRequest, "Incorrect verification code")
		return
	}
	if acc.VerificationExpired(s.now()) {
		writeError(w, http.StatusBadRequest, "Verification code has expired")
		return
	}

	if err := s.store.MarkVerified(r.Context(), acc.ID); err != nil {
		s.logger.Error(r.Context(), "mark verified failed", "account_id", acc.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Error verifying user")
		return
	}
	writeOK(w, http.StatusOK, "Account verified successfully")
}

func (s *Server) handleCheckUsernameUnique(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if msg := validateUsername(username); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	_, err := s.store.GetAccountByUsername(r.Context(), username)
	switch {
	case err == nil:
		writeError(w, http.StatusConflict, "Username is already taken")
	case errors.Is(err, store.ErrNotFound):
		writeOK(w, http.StatusOK, "Username is unique")
	default:
		s.logger.Error(r.Context(), "check username failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error checking username")
	}
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	acc, err := s.store.GetAccountByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		s.logger.Error(r.Context(), "lookup account failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error signing in")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !acc.IsVerified {
		writeError(w, http.StatusForbidden, "Please verify your account before login")
		return
	}

	token, err := s.sessions.Issue(session.Identity{AccountID: acc.ID, Username: acc.Username})
	if err != nil {
		s.logger.Error(r.Context(), "issue session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error signing in")
		return
	}
	s.sessions.SetCookie(w, token)
	writeJSON(w, http.StatusOK, signInResponse{Success: true, Token: token, User: *acc})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	writeOK(w, http.StatusOK, "Signed out")
}
