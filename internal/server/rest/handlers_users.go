package rest

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/go-chi/chi/v5"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request, _ auth.Principal) error {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	user, token, err := s.users.Create(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	w.Header().Set(common.AuthTokenHeaderName, token)
	writeMessage(w, http.StatusCreated,
		fmt.Sprintf("User created successfully with ID %q and email %q", user.ID, user.Email))
	return nil
}

func (s *Server) signin(w http.ResponseWriter, r *http.Request, _ auth.Principal) error {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	user, token, err := s.users.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	w.Header().Set(common.AuthTokenHeaderName, token)
	writeMessage(w, http.StatusOK, user.ID+" You have signed in successfully.")
	return nil
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	var attrs map[string]any
	if err := decodeJSON(w, r, &attrs); err != nil {
		return err
	}

	if _, err := s.users.Update(r.Context(), p.UserID, attrs); err != nil {
		return err
	}

	writeMessage(w, http.StatusOK, "Your data updated successfully")
	return nil
}

func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	user, err := s.users.Remove(r.Context(), p.UserID)
	if err != nil {
		return err
	}

	writeMessage(w, http.StatusOK,
		displayName(user)+" We're sad to see you go! Your account has been deleted successfully")
	return nil
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, _ auth.Principal) error {
	list, err := s.users.ListAll(r.Context())
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, envelope{
		Message: "Successfully fetched all users",
		Data:    newUserViews(list),
	})
	return nil
}

func (s *Server) removeUser(w http.ResponseWriter, r *http.Request, _ auth.Principal) error {
	user, err := s.users.RemoveOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("User %s removed successfully", displayName(user)))
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request, _ auth.Principal) error {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.Error(r.Context(), "health check failed", "error", err)
			writeStatus(w, http.StatusServiceUnavailable, "store unavailable")
			return nil
		}
	}
	writeMessage(w, http.StatusOK, "ok")
	return nil
}
