package planstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"cadence/internal/cache"
	"cadence/internal/docstore"
	"cadence/internal/logging"
	"cadence/internal/plan"
)

const planCacheKey = "plan"

// RemotePath returns the document path for a user's weekly plan.
func RemotePath(userID string) string {
	return "users/" + userID + "/plan"
}

// Store reconciles plan state between the local cache and the remote store.
type Store struct {
	cache  *cache.Store
	remote docstore.Store
	logger *slog.Logger

	pending sync.WaitGroup
}

// New builds a plan store. A nil remote disables sync entirely.
func New(cacheStore *cache.Store, remote docstore.Store, logger *slog.Logger) *Store {
	if remote == nil {
		remote = docstore.Disabled{}
	}
	return &Store{
		cache:  cacheStore,
		remote: remote,
		logger: logging.WithComponent(logger, "plan-store"),
	}
}

// Load resolves the current weekly plan. Absence everywhere is an empty plan,
// never an error. The remote, when reachable and present, wins and refreshes
// the cache; a reachable-but-absent remote is repaired from a non-empty cache.
func (s *Store) Load(ctx context.Context, userID string) (*plan.WeeklyPlan, error) {
	type remoteResult struct {
		doc docstore.Document
		ok  bool
		err error
	}
	remoteCh := make(chan remoteResult, 1)
	go func() {
		doc, ok, err := s.remote.Get(ctx, RemotePath(userID))
		remoteCh <- remoteResult{doc: doc, ok: ok, err: err}
	}()

	cached := s.readCache(ctx, userID)
	remote := <-remoteCh

	if remote.err != nil {
		s.logger.Warn("remote plan fetch failed; serving cached plan",
			logging.String(logging.FieldUserID, userID),
			logging.Error(remote.err),
			logging.String(logging.FieldEventType, "plan_remote_fetch_failed"),
			logging.String(logging.FieldErrorHint, "check sync.base_url and network"),
		)
		if cached != nil {
			return cached, nil
		}
		return plan.NewWeeklyPlan(), nil
	}

	if remote.ok {
		resolved := plan.NewWeeklyPlan()
		if err := json.Unmarshal(remote.doc, resolved); err != nil {
			s.logger.Warn("remote plan is malformed; serving cached plan",
				logging.String(logging.FieldUserID, userID),
				logging.Error(err),
				logging.String(logging.FieldEventType, "plan_remote_malformed"),
			)
			if cached != nil {
				return cached, nil
			}
			return plan.NewWeeklyPlan(), nil
		}
		s.writeCache(ctx, userID, resolved)
		return resolved, nil
	}

	if cached != nil && cached.Len() > 0 {
		// Repair-on-read: the remote lost (or never had) the document.
		s.pushRemote(userID, cached)
		return cached, nil
	}
	if cached != nil {
		return cached, nil
	}
	return plan.NewWeeklyPlan(), nil
}

// Save persists the plan: cache synchronously, remote asynchronously
// best-effort. The cache stays authoritative until the next successful remote
// write.
func (s *Store) Save(ctx context.Context, userID string, weekly *plan.WeeklyPlan) error {
	if err := s.writeCache(ctx, userID, weekly); err != nil {
		return err
	}
	s.pushRemote(userID, weekly.Clone())
	return nil
}

// Subscribe delivers remote plan changes until stop is called. Each change
// refreshes the cache and replaces the plan wholesale.
func (s *Store) Subscribe(ctx context.Context, userID string, onChange func(*plan.WeeklyPlan)) (stop func()) {
	return s.remote.Watch(ctx, RemotePath(userID), func(doc docstore.Document) {
		updated := plan.NewWeeklyPlan()
		if err := json.Unmarshal(doc, updated); err != nil {
			s.logger.Warn("ignoring malformed remote plan update",
				logging.String(logging.FieldUserID, userID),
				logging.Error(err),
				logging.String(logging.FieldEventType, "plan_update_malformed"),
			)
			return
		}
		s.writeCache(context.Background(), userID, updated)
		onChange(updated)
	})
}

// Flush waits for in-flight remote pushes. Used at shutdown and in tests.
func (s *Store) Flush() {
	s.pending.Wait()
}

func (s *Store) readCache(ctx context.Context, userID string) *plan.WeeklyPlan {
	raw, ok, err := s.cache.GetItem(ctx, userID, planCacheKey)
	if err != nil {
		s.logger.Warn("plan cache read failed",
			logging.String(logging.FieldUserID, userID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "plan_cache_read_failed"),
		)
		return nil
	}
	if !ok {
		return nil
	}
	cached := plan.NewWeeklyPlan()
	if err := json.Unmarshal([]byte(raw), cached); err != nil {
		// Malformed cache content is treated as absent, not fatal.
		s.logger.Warn("plan cache is malformed; treating as absent",
			logging.String(logging.FieldUserID, userID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "plan_cache_malformed"),
		)
		return nil
	}
	return cached
}

func (s *Store) writeCache(ctx context.Context, userID string, weekly *plan.WeeklyPlan) error {
	data, err := json.Marshal(weekly)
	if err != nil {
		return err
	}
	return s.cache.SetItem(ctx, userID, planCacheKey, string(data))
}

func (s *Store) pushRemote(userID string, weekly *plan.WeeklyPlan) {
	data, err := json.Marshal(weekly)
	if err != nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.remote.Set(context.Background(), RemotePath(userID), docstore.Document(data), false); err != nil {
			s.logger.Warn("remote plan push failed; cache remains authoritative",
				logging.String(logging.FieldUserID, userID),
				logging.Error(err),
				logging.String(logging.FieldEventType, "plan_remote_push_failed"),
				logging.String(logging.FieldErrorHint, "the next successful save repairs the remote"),
			)
		}
	}()
}
