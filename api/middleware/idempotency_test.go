package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
	"github.com/threadline/warehouse-backend/pkg/types"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value.(string)
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *memoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// newTestRouter mirrors the production nesting: the middleware sits on the
// /api subrouter, outside the inner route groups.
func newTestRouter(store *memoryStore, calls *int) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(Idempotency(store, nil))
		r.Route("/v1/inventory", func(r chi.Router) {
			handler := func(w http.ResponseWriter, req *http.Request) {
				*calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"success":true,"data":{"call":` + strconv.Itoa(*calls) + `}}`))
			}
			r.Post("/inward", handler)
			r.Post("/undo", handler)
		})
	})
	return r
}

func postJSON(t *testing.T, router http.Handler, path, key, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyRequiresKeyOnMutationRoutes(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := newTestRouter(store, &calls)

	w := postJSON(t, router, "/api/v1/inventory/inward", "", `{"qty":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without key, got %d", w.Code)
	}
	if calls != 0 {
		t.Fatalf("handler must not run without a key, ran %d times", calls)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := newTestRouter(store, &calls)

	first := postJSON(t, router, "/api/v1/inventory/inward", "scan-123", `{"qty":1}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}
	if calls != 1 {
		t.Fatalf("expected one handler call, got %d", calls)
	}
	if store.len() != 1 {
		t.Fatalf("expected one stored record, got %d", store.len())
	}

	replay := postJSON(t, router, "/api/v1/inventory/inward", "scan-123", `{"qty":1}`)
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", replay.Code)
	}
	if calls != 1 {
		t.Fatalf("replay must not re-run the handler, got %d calls", calls)
	}
	if replay.Body.String() != first.Body.String() {
		t.Fatalf("replay body differs: %q vs %q", replay.Body.String(), first.Body.String())
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := newTestRouter(store, &calls)

	if w := postJSON(t, router, "/api/v1/inventory/inward", "scan-456", `{"qty":1}`); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	w := postJSON(t, router, "/api/v1/inventory/inward", "scan-456", `{"qty":9}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on body mismatch, got %d", w.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected code %s, got %s", pkgerrors.CodeIdempotency, body.Error.Code)
	}
	if calls != 1 {
		t.Fatalf("mismatched replay must not re-run the handler, got %d calls", calls)
	}
}

func TestIdempotencySkipsUncoveredRoutes(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := newTestRouter(store, &calls)

	w := postJSON(t, router, "/api/v1/inventory/undo", "", `{"sku_id":"x"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("undo should bypass the middleware, got %d", w.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run, got %d calls", calls)
	}
	if store.len() != 0 {
		t.Fatalf("uncovered route must not persist records, got %d", store.len())
	}
}
