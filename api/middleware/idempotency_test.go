package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func checkoutRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	return payload.Error.Code
}

func TestIdempotencyRequiresHeaderWhenConfigured(t *testing.T) {
	handlerCalled := false
	handler := Idempotency(newFakeStore(), IdempotencyOptions{Required: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest("", `{}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyOptionalHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, IdempotencyOptions{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("", `{}`))
	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("", `{}`))
	if calls != 2 || len(store.data) != 0 {
		t.Fatalf("expected pass-through without storage, calls=%d stored=%d", calls, len(store.data))
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, IdempotencyOptions{Required: true, TTL: time.Hour}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order":1}`))
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest("abc", `{"cart":1}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", resp.Code)
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, checkoutRequest("abc", `{"cart":1}`))
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", replay.Code)
	}
	if replay.Header().Get("Content-Type") != "application/json" || replay.Header().Get(replayedHeader) != "true" {
		t.Fatalf("expected replay headers, got %v", replay.Header())
	}
	if strings.TrimSpace(replay.Body.String()) != `{"order":1}` {
		t.Fatalf("expected stored body got %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
	for _, ttl := range store.ttls {
		if ttl != time.Hour {
			t.Fatalf("expected completed record to use the replay ttl, got %v", ttl)
		}
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	handler := Idempotency(newFakeStore(), IdempotencyOptions{Required: true}, nil)(okHandler())
	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("xyz", `{"cart":1}`))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest("xyz", `{"cart":2}`))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, code)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	started := make(chan struct{})
	release := make(chan struct{})
	handler := Idempotency(store, IdempotencyOptions{Required: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusCreated)
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("dup", `{"cart":1}`))
	}()
	<-started

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest("dup", `{"cart":1}`))
	close(release)
	<-done

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for in-flight duplicate, got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %s", code)
	}
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, IdempotencyOptions{Required: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest("retry", `{}`))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest("retry", `{}`))

	if first.Code != http.StatusServiceUnavailable || second.Code != http.StatusCreated || calls != 2 {
		t.Fatalf("expected retry after 503, got %d then %d (calls=%d)", first.Code, second.Code, calls)
	}
}

func TestIdempotencyScopesByCaller(t *testing.T) {
	calls := 0
	handler := Idempotency(newFakeStore(), IdempotencyOptions{Required: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	guest := checkoutRequest("same", `{}`)
	handler.ServeHTTP(httptest.NewRecorder(), guest)

	member := checkoutRequest("same", `{}`)
	member = member.WithContext(WithIdentity(member.Context(), "user-1", "customer"))
	handler.ServeHTTP(httptest.NewRecorder(), member)

	if calls != 2 {
		t.Fatalf("expected separate scopes per caller, handler ran %d times", calls)
	}
}
