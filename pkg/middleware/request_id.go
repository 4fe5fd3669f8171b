package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader is the HTTP header name for request ID
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is the context key for request ID
	RequestIDContextKey = "request_id"
)

type requestIDKey struct{}

// StoredResponse is a write response kept for replay
type StoredResponse struct {
	Status int
	Body   []byte
}

// RequestIDStore stores processed request IDs for idempotency
type RequestIDStore interface {
	Store(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error
	// Get returns ErrRequestIDNotFound for unknown or expired keys
	Get(ctx context.Context, key string) (StoredResponse, error)
}

// InMemoryRequestIDStore is an in-memory implementation of RequestIDStore
type InMemoryRequestIDStore struct {
	mu      sync.Mutex
	store   map[string]requestIDEntry
	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once
}

type requestIDEntry struct {
	response  StoredResponse
	expiresAt time.Time
}

// NewInMemoryRequestIDStore creates a store that sweeps expired entries every minute
func NewInMemoryRequestIDStore() *InMemoryRequestIDStore {
	store := &InMemoryRequestIDStore{
		store:   make(map[string]requestIDEntry),
		cleanup: time.NewTicker(1 * time.Minute),
		done:    make(chan struct{}),
	}

	go store.cleanupExpired()

	return store
}

func (s *InMemoryRequestIDStore) Store(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[key] = requestIDEntry{
		response:  response,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *InMemoryRequestIDStore) Get(ctx context.Context, key string) (StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.store[key]
	if !exists {
		return StoredResponse{}, ErrRequestIDNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.store, key)
		return StoredResponse{}, ErrRequestIDNotFound
	}
	return entry.response, nil
}

// Close stops the cleanup goroutine
func (s *InMemoryRequestIDStore) Close() {
	s.once.Do(func() {
		s.cleanup.Stop()
		close(s.done)
	})
}

func (s *InMemoryRequestIDStore) cleanupExpired() {
	for {
		select {
		case <-s.done:
			return
		case now := <-s.cleanup.C:
			s.mu.Lock()
			for id, entry := range s.store {
				if now.After(entry.expiresAt) {
					delete(s.store, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

var (
	ErrRequestIDNotFound = &RequestIDError{Message: "request ID not found"}
)

type RequestIDError struct {
	Message string
}

func (e *RequestIDError) Error() string {
	return e.Message
}

// RequestIDMiddleware extracts or generates X-Request-ID header
func RequestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			logger.Debug("Generated new request ID",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
		}

		c.Set(RequestIDContextKey, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, requestID))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDContextKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// RequestIDFromContext retrieves the request ID from a request context
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func isWrite(method string) bool {
	return method != http.MethodGet && method != http.MethodHead && method != http.MethodOptions
}

func idempotencyKey(c *gin.Context, requestID string) string {
	return c.Request.Method + " " + c.Request.URL.Path + " " + requestID
}

// IdempotencyMiddleware replays the stored response of a repeated write request.
// Responses are recorded for successful (2xx) writes only, keyed by method,
// path and X-Request-ID.
func IdempotencyMiddleware(store RequestIDStore, logger *zap.Logger, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWrite(c.Request.Method) {
			c.Next()
			return
		}

		requestID := GetRequestID(c)
		if requestID == "" {
			c.Next()
			return
		}

		key := idempotencyKey(c, requestID)
		if cached, err := store.Get(c.Request.Context(), key); err == nil {
			logger.Info("Duplicate request detected, returning cached response",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
			c.Abort()
			return
		}

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           make([]byte, 0),
		}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if len(c.Errors) > 0 || status < 200 || status >= 300 || len(writer.body) == 0 {
			return
		}
		if err := store.Store(c.Request.Context(), key, StoredResponse{Status: status, Body: writer.body}, ttl); err != nil {
			logger.Warn("Failed to store response for idempotency",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
			return
		}
		logger.Debug("Stored response for idempotency",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
		)
	}
}

// responseWriter captures the response body
type responseWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, []byte(s)...)
	return w.ResponseWriter.WriteString(s)
}
