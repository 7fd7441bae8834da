package docstore_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cadence/internal/config"
	"cadence/internal/docstore"
)

func TestMemoryGetSetWatch(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "users/alice/plan"); err != nil || ok {
		t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
	}

	var mu sync.Mutex
	var seen []string
	stop := store.Watch(ctx, "users/alice/plan", func(doc docstore.Document) {
		mu.Lock()
		seen = append(seen, string(doc))
		mu.Unlock()
	})

	if err := store.Set(ctx, "users/alice/plan", docstore.Document(`{"a":1}`), false); err != nil {
		t.Fatalf("set: %v", err)
	}

	doc, ok, err := store.Get(ctx, "users/alice/plan")
	if err != nil || !ok || string(doc) != `{"a":1}` {
		t.Fatalf("get = %s, %v, %v", doc, ok, err)
	}

	mu.Lock()
	count := len(seen)
	mu.Unlock()
	if count != 1 {
		t.Fatalf("watcher fired %d times, want 1", count)
	}

	stop()
	_ = store.Set(ctx, "users/alice/plan", docstore.Document(`{"a":2}`), false)
	mu.Lock()
	count = len(seen)
	mu.Unlock()
	if count != 1 {
		t.Fatal("watcher fired after stop")
	}
}

func TestMergeSemantics(t *testing.T) {
	base := docstore.Document(`{"keep":"x","replace":"old"}`)
	overlay := docstore.Document(`{"replace":"new","add":true}`)

	merged, err := docstore.Merge(base, overlay)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(merged, &fields); err != nil {
		t.Fatalf("unmarshal merged: %v", err)
	}
	if string(fields["keep"]) != `"x"` || string(fields["replace"]) != `"new"` || string(fields["add"]) != "true" {
		t.Fatalf("unexpected merge result: %s", merged)
	}
}

func TestMemoryMergeSet(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()
	_ = store.Set(ctx, "p", docstore.Document(`{"a":1,"b":2}`), false)
	if err := store.Set(ctx, "p", docstore.Document(`{"b":3}`), true); err != nil {
		t.Fatalf("merge set: %v", err)
	}
	doc, _, _ := store.Get(ctx, "p")
	var fields map[string]int
	if err := json.Unmarshal(doc, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields["a"] != 1 || fields["b"] != 3 {
		t.Fatalf("merge result: %v", fields)
	}
}

func TestHTTPStoreRoundTrip(t *testing.T) {
	var mu sync.Mutex
	docs := map[string][]byte{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("missing auth header, got %q", got)
		}
		key := strings.TrimPrefix(r.URL.Path, "/v1/docs/")
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			doc, ok := docs[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write(doc)
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Errorf("read body: %v", err)
			}
			docs[key] = body
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Sync.Enabled = true
	cfg.Sync.BaseURL = server.URL
	cfg.Sync.APIToken = "secret"
	store := docstore.NewHTTPStore(&cfg)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "users/alice/plan"); err != nil || ok {
		t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "users/alice/plan", docstore.Document(`{"x":1}`), false); err != nil {
		t.Fatalf("set: %v", err)
	}
	doc, ok, err := store.Get(ctx, "users/alice/plan")
	if err != nil || !ok || string(doc) != `{"x":1}` {
		t.Fatalf("get = %s, %v, %v", doc, ok, err)
	}
}

func TestHTTPStoreUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.Sync.Enabled = true
	cfg.Sync.BaseURL = "http://127.0.0.1:1"
	cfg.Sync.RequestTimeout = 1
	store := docstore.NewHTTPStore(&cfg)

	_, _, err := store.Get(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error against closed port")
	}
	if !strings.Contains(err.Error(), docstore.ErrUnavailable.Error()) {
		t.Fatalf("expected ErrUnavailable wrap, got %v", err)
	}
}

func TestNewConfiguredStoreDisabled(t *testing.T) {
	cfg := config.Default()
	store := docstore.NewConfiguredStore(&cfg)
	if _, ok, err := store.Get(context.Background(), "anything"); err != nil || ok {
		t.Fatalf("disabled store should report absent, got ok=%v err=%v", ok, err)
	}
}
