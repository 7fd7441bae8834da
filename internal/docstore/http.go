package docstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cadence/internal/config"
)

// HTTPDoer describes the HTTP client used by the document service client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPStore talks to a self-hosted document service over plain HTTP:
// GET/PUT /v1/docs/<path>, 404 for absent documents, ?merge=true for merge
// writes. Watch polls the document on an interval and fires on content change.
type HTTPStore struct {
	baseURL      string
	token        string
	client       HTTPDoer
	pollInterval time.Duration
}

// NewHTTPStore builds a client from sync configuration.
func NewHTTPStore(cfg *config.Config) *HTTPStore {
	timeout := time.Duration(cfg.Sync.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	poll := time.Duration(cfg.Sync.PollInterval) * time.Second
	if poll <= 0 {
		poll = 30 * time.Second
	}
	return &HTTPStore{
		baseURL:      strings.TrimRight(cfg.Sync.BaseURL, "/"),
		token:        cfg.Sync.APIToken,
		client:       &http.Client{Timeout: timeout},
		pollInterval: poll,
	}
}

// NewConfiguredStore returns the HTTP store when sync is enabled, otherwise
// the Disabled store.
func NewConfiguredStore(cfg *config.Config) Store {
	if cfg == nil || !cfg.Sync.Enabled || strings.TrimSpace(cfg.Sync.BaseURL) == "" {
		return Disabled{}
	}
	return NewHTTPStore(cfg)
}

func (s *HTTPStore) docURL(path string) string {
	return s.baseURL + "/v1/docs/" + url.PathEscape(path)
}

func (s *HTTPStore) Get(ctx context.Context, path string) (Document, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.docURL(path), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build get request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, nil
	case resp.StatusCode >= 300:
		return nil, false, fmt.Errorf("%w: get %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, false, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return Document(body), true, nil
}

func (s *HTTPStore) Set(ctx context.Context, path string, doc Document, merge bool) error {
	target := s.docURL(path)
	if merge {
		target += "?merge=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("build set request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: set %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}
	return nil
}

// Watch polls for changes. Unreachable polls are skipped silently; the next
// successful poll delivers the latest content if it differs.
func (s *HTTPStore) Watch(ctx context.Context, path string, onChange func(Document)) func() {
	watchCtx, cancel := context.WithCancel(ctx)
	go func() {
		var lastDigest [sha256.Size]byte
		seeded := false
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
			}

			doc, ok, err := s.Get(watchCtx, path)
			if err != nil || !ok {
				continue
			}
			digest := sha256.Sum256(doc)
			if seeded && digest == lastDigest {
				continue
			}
			changed := seeded
			lastDigest = digest
			seeded = true
			if changed {
				onChange(doc)
			}
		}
	}()
	return cancel
}

func (s *HTTPStore) authorize(req *http.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}
