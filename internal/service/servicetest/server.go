// Package servicetest runs an in-process fake of the network service for
// tests. Responses are scripted per endpoint and every request is recorded.
package servicetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"netagent/internal/card"
	"netagent/internal/service"
)

// Endpoint paths served by the fake.
const (
	PathExtractCard = "/api/extract-business-card"
	PathSaveContact = "/api/save-contact"
	PathQuery       = "/api/query"
	PathMemo        = "/api/memo"
	PathHealth      = "/health"
)

// Request is one recorded call.
type Request struct {
	Path     string
	Body     []byte // JSON body, nil for multipart uploads
	FileName string // multipart "file" name
	FileData []byte
}

// Server is a scripted fake service.
type Server struct {
	srv    *httptest.Server
	router *chi.Mux

	mu       sync.Mutex
	card     card.Payload
	answer   string
	entities []service.Entity
	failures map[string]int
	requests []Request
}

// New starts a fake service. Call Close when done.
func New() *Server {
	s := &Server{failures: make(map[string]int)}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(PathHealth, s.health)
	r.Post(PathExtractCard, s.extractCard)
	r.Post(PathSaveContact, s.saveContact)
	r.Post(PathQuery, s.query)
	r.Post(PathMemo, s.memo)
	s.router = r

	s.srv = httptest.NewServer(r)
	return s
}

// URL is the base URL of the fake.
func (s *Server) URL() string { return s.srv.URL }

// Client returns a service client bound to the fake.
func (s *Server) Client() *service.Client {
	return service.New(s.srv.URL, service.WithHTTPClient(s.srv.Client()))
}

// Close shuts the fake down.
func (s *Server) Close() { s.srv.Close() }

// SetCard scripts the extraction result.
func (s *Server) SetCard(p card.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card = p
}

// SetAnswer scripts the query answer.
func (s *Server) SetAnswer(answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer = answer
}

// SetEntities scripts the memo extraction result.
func (s *Server) SetEntities(entities []service.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = entities
}

// Fail makes every call to path answer with status. A status of 0 clears it.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

// Requests returns the recorded calls to path in order.
func (s *Server) Requests(path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// record stores req and reports the scripted failure status, if any.
func (s *Server) record(req Request) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.failures[req.Path]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if status := s.record(Request{Path: PathHealth}); status != 0 {
		http.Error(w, "unhealthy", status)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) extractCard(w http.ResponseWriter, r *http.Request) {
	req := Request{Path: PathExtractCard}
	if f, hdr, err := r.FormFile("file"); err == nil {
		req.FileName = hdr.Filename
		req.FileData, _ = io.ReadAll(f)
		f.Close()
	}
	if status := s.record(req); status != 0 {
		http.Error(w, "extraction failed", status)
		return
	}
	if req.FileName == "" {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	p := s.card
	s.mu.Unlock()
	writeJSON(w, p)
}

func (s *Server) jsonRequest(r *http.Request, path string) (Request, int) {
	body, _ := io.ReadAll(r.Body)
	req := Request{Path: path, Body: body}
	return req, s.record(req)
}

func (s *Server) saveContact(w http.ResponseWriter, r *http.Request) {
	if _, status := s.jsonRequest(r, PathSaveContact); status != 0 {
		http.Error(w, "save failed", status)
		return
	}
	writeJSON(w, map[string]string{"status": "success"})
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	if _, status := s.jsonRequest(r, PathQuery); status != 0 {
		http.Error(w, "query failed", status)
		return
	}
	s.mu.Lock()
	answer := s.answer
	s.mu.Unlock()
	writeJSON(w, map[string]string{"answer": answer})
}

func (s *Server) memo(w http.ResponseWriter, r *http.Request) {
	if _, status := s.jsonRequest(r, PathMemo); status != 0 {
		http.Error(w, "memo failed", status)
		return
	}
	s.mu.Lock()
	entities := s.entities
	s.mu.Unlock()
	if entities == nil {
		entities = []service.Entity{}
	}
	writeJSON(w, map[string]any{
		"extracted_data": map[string]any{"entities": entities},
	})
}
