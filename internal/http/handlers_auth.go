package http

import (
	"net/http"

	applog "budget/internal/log"
)

// handleLoginForm accepts application/x-www-form-urlencoded credentials, the
// shape used by OAuth2 password flows.
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "Malformed form body")
		return
	}
	s.login(w, r, r.PostFormValue("username"), r.PostFormValue("password"))
}

// handleLoginJSON accepts the same credentials as a JSON body.
func (s *Server) handleLoginJSON(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Malformed JSON body")
		return
	}
	s.login(w, r, req.Username, req.Password)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, username, password string) {
	ctx := r.Context()

	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Login failed", "username", username)
		writeError(w, err)
		return
	}

	access, err := s.tokens.AccessToken(u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	refresh, err := s.tokens.RefreshToken(u.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	applog.FromContext(ctx).InfoContext(ctx, "Login succeeded", applog.FieldUserID, u.ID)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

// handleRefresh exchanges a valid refresh token for a new token pair.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Malformed JSON body")
		return
	}

	userID, err := s.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid or expired refresh token"})
		return
	}

	// The account may have been deactivated or deleted since issuance.
	u, err := s.users.GetUser(r.Context(), userID)
	if err != nil || !u.IsActive {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid or expired refresh token"})
		return
	}

	access, err := s.tokens.AccessToken(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	refresh, err := s.tokens.RefreshToken(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}
