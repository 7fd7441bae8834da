package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"cadence/internal/cache"
	"cadence/internal/docstore"
	"cadence/internal/logging"
)

// Recorder is the surface the execution engine writes session outcomes to.
type Recorder interface {
	Append(ctx context.Context, userID string, draft Draft) error
	SaveNote(ctx context.Context, userID string, note Note) error
	List(ctx context.Context, userID string) ([]Draft, error)
}

// RemotePath returns the document path for a user's session records.
func RemotePath(userID string) string {
	return "users/" + userID + "/records"
}

// NotePath returns the document path for a day-scoped check-in note.
func NotePath(userID, day string) string {
	return "users/" + userID + "/notes/" + day
}

const noteKeyPrefix = "checkin/"

// Store journals drafts locally and mirrors them to the remote store.
type Store struct {
	cache  *cache.Store
	remote docstore.Store
	logger *slog.Logger

	pending sync.WaitGroup
}

// New builds a recorder. A nil remote disables mirroring.
func New(cacheStore *cache.Store, remote docstore.Store, logger *slog.Logger) *Store {
	if remote == nil {
		remote = docstore.Disabled{}
	}
	return &Store{
		cache:  cacheStore,
		remote: remote,
		logger: logging.WithComponent(logger, "records"),
	}
}

// Append journals the draft to the local cache and mirrors the full record
// list to the remote document asynchronously. The local write is the one
// that matters; a remote failure only logs.
func (s *Store) Append(ctx context.Context, userID string, draft Draft) error {
	if _, err := s.cache.AppendDraft(ctx, draft.row(userID)); err != nil {
		return fmt.Errorf("journal draft: %w", err)
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.mirror(userID)
	}()
	return nil
}

// SaveNote writes the day-scoped check-in note to the cache synchronously
// and to the remote best-effort. A second check-in on the same day replaces
// the note.
func (s *Store) SaveNote(ctx context.Context, userID string, note Note) error {
	data, err := json.Marshal(note)
	if err != nil {
		return err
	}
	if err := s.cache.SetItem(ctx, userID, noteKeyPrefix+note.Day, string(data)); err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.remote.Set(context.Background(), NotePath(userID, note.Day), docstore.Document(data), false); err != nil {
			s.logger.Warn("remote note push failed",
				logging.String(logging.FieldUserID, userID),
				logging.String("day", note.Day),
				logging.Error(err),
				logging.String(logging.FieldEventType, "note_push_failed"),
			)
		}
	}()
	return nil
}

// List returns the user's journal oldest first.
func (s *Store) List(ctx context.Context, userID string) ([]Draft, error) {
	rows, err := s.cache.ListDrafts(ctx, userID)
	if err != nil {
		return nil, err
	}
	drafts := make([]Draft, 0, len(rows))
	for _, row := range rows {
		drafts = append(drafts, fromRow(row))
	}
	return drafts, nil
}

// Note returns the check-in note for a logical day, if one exists.
func (s *Store) Note(ctx context.Context, userID, day string) (Note, bool, error) {
	raw, ok, err := s.cache.GetItem(ctx, userID, noteKeyPrefix+day)
	if err != nil || !ok {
		return Note{}, false, err
	}
	var note Note
	if err := json.Unmarshal([]byte(raw), &note); err != nil {
		// Malformed persisted content reads as absent.
		return Note{}, false, nil
	}
	return note, true, nil
}

// Flush waits for in-flight remote pushes. Used at shutdown and in tests.
func (s *Store) Flush() {
	s.pending.Wait()
}

// mirror replaces the remote records document with the full local journal.
// Whole-document replacement keeps remote semantics last-writer-wins, same
// as the plan document.
func (s *Store) mirror(userID string) {
	ctx := context.Background()
	drafts, err := s.List(ctx, userID)
	if err != nil {
		s.logger.Warn("journal read failed; skipping remote mirror",
			logging.String(logging.FieldUserID, userID),
			logging.Error(err),
		)
		return
	}
	data, err := json.Marshal(drafts)
	if err != nil {
		return
	}
	if err := s.remote.Set(ctx, RemotePath(userID), docstore.Document(data), false); err != nil {
		s.logger.Warn("remote records push failed; journal remains authoritative",
			logging.String(logging.FieldUserID, userID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "records_push_failed"),
		)
	}
}

// Noop satisfies Recorder while persisting nothing.
type Noop struct{}

func (Noop) Append(context.Context, string, Draft) error   { return nil }
func (Noop) SaveNote(context.Context, string, Note) error  { return nil }
func (Noop) List(context.Context, string) ([]Draft, error) { return nil, nil }
