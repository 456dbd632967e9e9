package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// cachedResponse is a completed response stored for replay
type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

// IdempotencyStore stores idempotency key results. Completed responses
// live in an expiring cache; in-flight requests are tracked separately so
// a concurrent duplicate waits for the first request instead of running
// the operation twice.
type IdempotencyStore struct {
	cache    *gocache.Cache
	mu       sync.Mutex
	inFlight map[string]chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep idempotency results (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}

	return &IdempotencyStore{
		cache:    gocache.New(cfg.TTL, cfg.Cleanup),
		inFlight: make(map[string]chan struct{}),
	}
}

// generateKey creates a unique key from user ID, idempotency key, and request fingerprint
func generateKey(userID, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte(idempotencyKey))
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func writeReplay(w http.ResponseWriter, resp *cachedResponse) {
	for k, v := range resp.headers {
		for _, val := range v {
			w.Header().Add(k, val)
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}

// Idempotency returns middleware that handles idempotency keys for POST requests
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				// No idempotency key, proceed normally
				next.ServeHTTP(w, r)
				return
			}

			userID := GetUserID(r.Context())
			if userID == "" {
				userID = r.RemoteAddr // Fallback for unauthenticated requests
			}

			// Read and restore request body
			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := generateKey(userID, idempotencyKey, r.Method, r.URL.Path, body)

			var done chan struct{}
			for {
				if cached, found := store.cache.Get(key); found {
					writeReplay(w, cached.(*cachedResponse))
					return
				}

				store.mu.Lock()
				inFlight, exists := store.inFlight[key]
				if !exists {
					done = make(chan struct{})
					store.inFlight[key] = done
					store.mu.Unlock()
					break
				}
				store.mu.Unlock()

				// Duplicate of an in-flight request; wait and replay.
				<-inFlight
			}

			irw := &idempotencyResponseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			next.ServeHTTP(irw, r)

			store.cache.SetDefault(key, &cachedResponse{
				status:  irw.status,
				headers: irw.Header().Clone(),
				body:    irw.body.Bytes(),
			})

			store.mu.Lock()
			delete(store.inFlight, key)
			store.mu.Unlock()
			close(done)
		})
	}
}
