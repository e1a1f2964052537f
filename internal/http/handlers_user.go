package http

import (
	"net/http"

	applog "budget/internal/log"
	"budget/internal/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Malformed JSON body")
		return
	}

	u, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password, req.Salary)
	if err != nil {
		writeError(w, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "User registered",
		applog.FieldUserID, u.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// handleProfile returns the authenticated user's own record.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, principalID int64) {
	u, err := s.users.GetUser(r.Context(), principalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, _ int64) {
	userID, err := parsePathID(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	u, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, principalID int64) {
	userID, err := parsePathID(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Malformed JSON body")
		return
	}

	u, err := s.users.UpdateUser(r.Context(), principalID, userID, services.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Salary:   req.Salary,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, principalID int64) {
	userID, err := parsePathID(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.users.DeleteUser(r.Context(), principalID, userID); err != nil {
		writeError(w, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "User deleted",
		applog.FieldUserID, userID)
	w.WriteHeader(http.StatusNoContent)
}
