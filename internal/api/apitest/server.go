// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package apitest provides an in-process fake of the sign-in backend.
//
// Without scripting, the fake issues user IDs starting at 1 and accepts the
// passcode ValidOTP for any issued user. Scripted replies take precedence
// and are consumed in order.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ValidOTP is the passcode the default verify handler accepts.
const ValidOTP = "123456"

// Endpoint names recorded in the call log.
const (
	EndpointRequestOTP = "request_otp"
	EndpointVerifyOTP  = "verify_otp"
)

// Reply is one scripted response. Raw, when set, is written verbatim instead
// of Body.
type Reply struct {
	Status int
	Body   any
	Raw    string
	Delay  time.Duration
}

// Call records one request received by the fake.
type Call struct {
	Endpoint  string
	UserID    string
	RequestID string
	Body      map[string]any
}

type user struct {
	name  string
	phone string
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	requestOTP []Reply
	verifyOTP  []Reply
	calls      []Call
	users      map[int64]user
	nextID     int64
}

// NewServer starts a fake backend. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		users:  make(map[int64]user),
		nextID: 1,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Post("/auth", s.handleRequestOTP)
			r.Post("/verify-otp", s.handleVerifyOTP)
		})
	})

	s.Server = httptest.NewServer(r)
	return s
}

// ScriptRequestOTP queues replies for POST /api/v1/auth.
func (s *Server) ScriptRequestOTP(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestOTP = append(s.requestOTP, replies...)
}

// ScriptVerifyOTP queues replies for POST /api/v1/verify-otp.
func (s *Server) ScriptVerifyOTP(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifyOTP = append(s.verifyOTP, replies...)
}

// Calls returns a copy of the call log.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many requests hit endpoint.
func (s *Server) CallCount(endpoint string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Endpoint == endpoint {
			n++
		}
	}
	return n
}

func (s *Server) record(r *http.Request, endpoint string) (map[string]any, *Reply) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{
		Endpoint:  endpoint,
		UserID:    r.URL.Query().Get("user_id"),
		RequestID: r.Header.Get("X-Request-ID"),
		Body:      body,
	})

	queue := &s.requestOTP
	if endpoint == EndpointVerifyOTP {
		queue = &s.verifyOTP
	}
	if len(*queue) == 0 {
		return body, nil
	}
	reply := (*queue)[0]
	*queue = (*queue)[1:]
	return body, &reply
}

func (s *Server) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	body, scripted := s.record(r, EndpointRequestOTP)
	if scripted != nil {
		write(w, r, *scripted)
		return
	}

	name, _ := body["name"].(string)
	phone, _ := body["phone_number"].(string)
	if name == "" || phone == "" {
		write(w, r, Reply{Status: http.StatusBadRequest, Body: map[string]any{"message": "name and phone_number are required"}})
		return
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.users[id] = user{name: name, phone: phone}
	s.mu.Unlock()

	write(w, r, Reply{Status: http.StatusOK, Body: map[string]any{
		"message": "OTP sent to " + phone,
		"user_id": id,
	}})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	body, scripted := s.record(r, EndpointVerifyOTP)
	if scripted != nil {
		write(w, r, *scripted)
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		write(w, r, Reply{Status: http.StatusBadRequest, Body: map[string]any{"message": "user_id is required"}})
		return
	}

	s.mu.Lock()
	u, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		write(w, r, Reply{Status: http.StatusNotFound, Body: map[string]any{"message": "User not found"}})
		return
	}

	if otp, _ := body["otp"].(string); otp != ValidOTP {
		write(w, r, Reply{Status: http.StatusUnauthorized, Body: map[string]any{"message": "Invalid OTP"}})
		return
	}

	write(w, r, Reply{Status: http.StatusOK, Body: map[string]any{
		"token": "token-" + strconv.FormatInt(id, 10),
		"user": map[string]any{
			"name":         u.name,
			"phone_number": u.phone,
		},
	}})
}

func write(w http.ResponseWriter, r *http.Request, reply Reply) {
	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if reply.Raw != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply.Raw))
		return
	}
	if reply.Body == nil {
		w.WriteHeader(status)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, reply.Body)
}
