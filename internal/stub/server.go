// Package stub is an in-memory stand-in for the knowledge-assistant backend.
// It implements the same endpoints and payload shapes so the console can be
// exercised without the retrieval and SQL services.
package stub

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/iksnae/knowledge-console/internal"
)

// AnswerFunc produces the "result" for a query. Returning nil omits it.
type AnswerFunc func(query string) interface{}

// SQLFunc produces the "sql" and "result" for a question.
type SQLFunc func(question string) (sql interface{}, result interface{})

type storedChat struct {
	Username string            `json:"username"`
	Messages []json.RawMessage `json:"messages"`
}

// Server holds users and saved chats in memory
type Server struct {
	secret   []byte
	tokenTTL time.Duration
	answer   AnswerFunc
	sql      SQLFunc

	mu    sync.Mutex
	users map[string][]byte // username -> bcrypt hash
	chats []storedChat
	saves int
}

// Option customizes a Server
type Option func(*Server)

// WithSecret sets the token signing key.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithAnswer replaces the query answerer.
func WithAnswer(fn AnswerFunc) Option {
	return func(s *Server) { s.answer = fn }
}

// WithSQL replaces the NL2SQL answerer.
func WithSQL(fn SQLFunc) Option {
	return func(s *Server) { s.sql = fn }
}

// New creates a stub backend
func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte("stub-secret"),
		tokenTTL: 7 * 24 * time.Hour,
		answer: func(query string) interface{} {
			return fmt.Sprintf("You asked: %s", query)
		},
		sql: func(question string) (interface{}, interface{}) {
			return "SELECT 1;", "[MOCKED] DB results would appear here."
		},
		users: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Post("/save_chat", s.handleSaveChat)
		r.Get("/get_chats", s.handleGetChats)
		r.Post("/query", s.handleQuery)
		r.Post("/nl2sql", s.handleNL2SQL)
		r.Post("/ingest", s.handleIngest)
	})
	return r
}

// AddUser registers a user directly.
func (s *Server) AddUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return errors.New("Username already exists")
	}
	s.users[username] = hash
	return nil
}

// IssueToken signs a token for username.
func (s *Server) IssueToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Saves returns how many save_chat calls were accepted.
func (s *Server) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// ChatCount returns how many chats are stored for username.
func (s *Server) ChatCount(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.chats {
		if c.Username == username {
			n++
		}
	}
	return n
}

type userKey struct{}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			respondDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			respondDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), sub)))
	})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		respondDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}
	if err := s.AddUser(req.Username, req.Password); err != nil {
		respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	hash, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		respondDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.IssueToken(req.Username)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "token signing failed")
		return
	}
	respond(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleSaveChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Messages == nil {
		respondDetail(w, http.StatusUnprocessableEntity, "messages must be a list")
		return
	}

	s.mu.Lock()
	s.chats = append(s.chats, storedChat{Username: userFrom(r.Context()), Messages: req.Messages})
	s.saves++
	s.mu.Unlock()

	respond(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleGetChats(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	s.mu.Lock()
	chats := make([]storedChat, 0)
	for _, c := range s.chats {
		if c.Username == user {
			chats = append(chats, c)
		}
	}
	s.mu.Unlock()

	respond(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "query is required")
		return
	}
	body := map[string]interface{}{}
	if result := s.answer(req.Query); result != nil {
		body["result"] = result
	}
	internal.LogDebug("stub answered query %q", req.Query)
	respond(w, http.StatusOK, body)
}

func (s *Server) handleNL2SQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "question is required")
		return
	}
	sql, result := s.sql(req.Question)
	body := map[string]interface{}{"sql": sql}
	if result != nil {
		body["result"] = result
	}
	respond(w, http.StatusOK, body)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	docType := r.FormValue("doc_type")
	if docType == "" {
		docType = "text"
	}
	data, err := io.ReadAll(file)
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "unreadable upload")
		return
	}

	switch docType {
	case "text", "pdf":
	default:
		respond(w, http.StatusOK, map[string]interface{}{
			"status":  "error",
			"message": fmt.Sprintf("Document type '%s' not supported. Use 'text' or 'pdf'.", docType),
		})
		return
	}
	if strings.TrimSpace(string(data)) == "" {
		respond(w, http.StatusOK, map[string]interface{}{
			"status":  "error",
			"message": fmt.Sprintf("No extractable text found in %s.", header.Filename),
		})
		return
	}

	chunks := chunkCount(len(data), 500, 50)
	respond(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("%s%s document ingested successfully. Created %d chunks.", strings.ToUpper(docType[:1]), docType[1:], chunks),
		"chunks":  chunks,
	})
}

// chunkCount mirrors a fixed-size splitter with overlap.
func chunkCount(n, size, overlap int) int {
	if n <= size {
		return 1
	}
	step := size - overlap
	return 1 + (n-size+step-1)/step
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respond(w, status, map[string]string{"detail": detail})
}
