package http

import (
	"net/http"
)

type signupRequest struct {
	ActualName string `json:"actual_name"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	if err := s.auth.Signup(r.Context(), req.ActualName, req.Username, req.Password); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User created successfully",
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type loginResponse struct {
	Message     string    `json:"message"`
	User        loginUser `json:"user"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	result, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User: loginUser{
			ID:       result.User.ID,
			Name:     result.User.ActualName,
			Username: result.User.Username,
		},
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
	})
}
