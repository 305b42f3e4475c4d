// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

// Package api exposes the authentication and user-provisioning operations
// over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/academica/academica/internal/directory"
	"github.com/academica/academica/internal/observability"
	"github.com/academica/academica/pkg/errutil"
)

// Authenticator verifies credentials. Implemented by *auth.Service.
type Authenticator interface {
	Authenticate(ctx context.Context, username, credential string) (*directory.User, error)
	RemainingAttempts() int
}

// Provisioner manages user records. Implemented by *directory.Service.
type Provisioner interface {
	CreateUser(ctx context.Context, candidate *directory.User, roleName string) (*directory.User, error)
	GetUser(ctx context.Context, id int64) (*directory.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Server handles the HTTP API.
type Server struct {
	auth    Authenticator
	users   Provisioner
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures optional Server collaborators.
type Option func(*Server)

// WithMetrics enables request and outcome counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates an API Server.
func NewServer(auth Authenticator, users Provisioner, opts ...Option) (*Server, error) {
	if auth == nil {
		return nil, oops.Errorf("authenticator is required")
	}
	if users == nil {
		return nil, oops.Errorf("provisioner is required")
	}
	s := &Server{
		auth:   auth,
		users:  users,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Router builds the chi router for the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/login", s.instrument("/v1/login", s.handleLogin))
	r.Post("/v1/users", s.instrument("/v1/users", s.handleCreateUser))
	r.Get("/v1/users/{id}", s.instrument("/v1/users/{id}", s.handleGetUser))
	r.Delete("/v1/users/{id}", s.instrument("/v1/users/{id}", s.handleDeleteUser))

	return r
}

// statusRecorder captures the written status for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if s.metrics != nil {
			s.metrics.HTTPRequestsTotal.
				WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
				Inc()
		}
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User userPayload `json:"user"`
}

type userPayload struct {
	ID               int64            `json:"id"`
	Kind             string           `json:"kind"`
	FirstGivenName   string           `json:"first_given_name"`
	SecondGivenName  string           `json:"second_given_name,omitempty"`
	FirstFamilyName  string           `json:"first_family_name"`
	SecondFamilyName string           `json:"second_family_name,omitempty"`
	Age              int              `json:"age,omitempty"`
	Email            string           `json:"email,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	Username         string           `json:"username,omitempty"`
	Role             string           `json:"role,omitempty"`
	Students         []studentPayload `json:"students,omitempty"`
}

type studentPayload struct {
	ID              int64  `json:"id"`
	FirstGivenName  string `json:"first_given_name"`
	FirstFamilyName string `json:"first_family_name"`
	Age             int    `json:"age"`
	NUIP            string `json:"nuip"`
	Status          string `json:"status"`
}

func toUserPayload(u *directory.User) userPayload {
	p := userPayload{
		ID:               u.ID,
		Kind:             string(u.Kind),
		FirstGivenName:   u.FirstGivenName,
		SecondGivenName:  u.SecondGivenName,
		FirstFamilyName:  u.FirstFamilyName,
		SecondFamilyName: u.SecondFamilyName,
		Age:              u.Age,
		Email:            u.Email,
		Phone:            u.Phone,
	}
	if u.Token != nil {
		p.Username = u.Token.Username
		p.Role = u.Token.Role.Name
	}
	for _, st := range u.Students {
		p.Students = append(p.Students, studentPayload{
			ID:              st.ID,
			FirstGivenName:  st.FirstGivenName,
			FirstFamilyName: st.FirstFamilyName,
			Age:             st.Age,
			NUIP:            st.NUIP,
			Status:          string(st.Status),
		})
	}
	return p
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	user, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.countLogin("failure")
		s.writeServiceError(w, err)
		return
	}

	s.countLogin("success")
	writeJSON(w, http.StatusOK, loginResponse{User: toUserPayload(user)})
}

func (s *Server) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

type createUserRequest struct {
	Kind             string `json:"kind"`
	Role             string `json:"role"`
	FirstGivenName   string `json:"first_given_name"`
	SecondGivenName  string `json:"second_given_name"`
	FirstFamilyName  string `json:"first_family_name"`
	SecondFamilyName string `json:"second_family_name"`
	Age              int    `json:"age"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
}

type createUserResponse struct {
	User userPayload `json:"user"`
	// Secret is returned exactly once, at creation time.
	Secret string `json:"secret"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	candidate := &directory.User{
		Kind:             directory.Kind(req.Kind),
		FirstGivenName:   req.FirstGivenName,
		SecondGivenName:  req.SecondGivenName,
		FirstFamilyName:  req.FirstFamilyName,
		SecondFamilyName: req.SecondFamilyName,
		Age:              req.Age,
		Email:            req.Email,
		Phone:            req.Phone,
	}

	created, err := s.users.CreateUser(r.Context(), candidate, req.Role)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.UsersProvisionedTotal.WithLabelValues(string(created.Kind)).Inc()
	}
	writeJSON(w, http.StatusCreated, createUserResponse{
		User:   toUserPayload(created),
		Secret: created.Token.Secret,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	user, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{User: toUserPayload(user)})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	if err := s.users.DeleteUser(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps a service error to an HTTP status by its code.
// Unknown codes become 500 and are logged; expected outcomes are not.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	code := errutil.Code(err)
	status, known := statusForCode(code)
	if !known {
		errutil.LogError(s.logger, "request failed", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL")
		return
	}
	writeError(w, status, code)
}

func statusForCode(code string) (int, bool) {
	switch code {
	case "AUTH_NO_MATCH":
		return http.StatusUnauthorized, true
	case "AUTH_LOCKED_OUT":
		return http.StatusLocked, true
	case "USER_NOT_FOUND", "ROLE_NOT_FOUND":
		return http.StatusNotFound, true
	case "USER_INVALID", "USER_NAME_REQUIRED":
		return http.StatusBadRequest, true
	case "USER_DUPLICATE_EMAIL", "USER_DUPLICATE_PHONE", "USER_DUPLICATE_USERNAME", "GUARDIAN_HAS_STUDENTS":
		return http.StatusConflict, true
	}
	return 0, false
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
