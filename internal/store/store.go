// Package store keeps the in-memory account list and proxies every
// mutation through the directory API. The list is mutated only inside
// the four operations' success paths; readers get copies.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zarlcorp/zacct/internal/account"
)

// API is the slice of the directory client the store depends on.
type API interface {
	List(ctx context.Context) ([]account.Account, error)
	Create(ctx context.Context, a account.Account) (account.Account, error)
	Update(ctx context.Context, a account.Account) (account.Account, error)
	Delete(ctx context.Context, id string) error
}

// Level classifies a notice.
type Level int

const (
	// LevelSuccess marks a completed mutation.
	LevelSuccess Level = iota
	// LevelError marks a failed operation.
	LevelError
)

// Notice is a transient user-facing notification emitted by the store.
type Notice struct {
	Level Level
	Text  string
}

// Option configures a Store.
type Option func(*Store)

// WithNotify sets the notifier invoked for every notice.
func WithNotify(fn func(Notice)) Option {
	return func(s *Store) { s.notify = fn }
}

// WithLogger sets the logger used for API failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store is the single owner of the cached account list.
type Store struct {
	api    API
	notify func(Notice)
	log    *slog.Logger

	mu       sync.Mutex
	accounts []account.Account
}

// New creates a store over the given API client.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:    api,
		notify: func(Notice) {},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accounts returns a copy of the cached list.
func (s *Store) Accounts() []account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]account.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// Load fetches the full account list and replaces the cache. On
// failure the prior state is kept and an error notice is emitted.
func (s *Store) Load(ctx context.Context) error {
	accounts, err := s.api.List(ctx)
	if err != nil {
		s.log.Error("load accounts", "err", err)
		s.notify(Notice{Level: LevelError, Text: "load failed: " + err.Error()})
		return err
	}

	s.mu.Lock()
	s.accounts = accounts
	s.mu.Unlock()
	return nil
}

// Add creates an account and appends the server-returned record to the
// cache. On failure it returns nil and the cache is unchanged; callers
// must treat nil as "not created".
func (s *Store) Add(ctx context.Context, a account.Account) (*account.Account, error) {
	created, err := s.api.Create(ctx, a)
	if err != nil {
		s.log.Error("add account", "login", a.Login, "err", err)
		s.notify(Notice{Level: LevelError, Text: "save failed: " + err.Error()})
		return nil, err
	}

	s.mu.Lock()
	s.accounts = append(s.accounts, created)
	s.mu.Unlock()

	s.notify(Notice{Level: LevelSuccess, Text: "account created"})
	return &created, nil
}

// Update sends an update keyed by a.ID and replaces the matching cache
// entry in place. An id not present in the cache leaves the list
// untouched. On failure the cache is left stale; there is no rollback
// or re-fetch.
func (s *Store) Update(ctx context.Context, a account.Account) error {
	if _, err := s.api.Update(ctx, a); err != nil {
		s.log.Error("update account", "id", a.ID, "err", err)
		s.notify(Notice{Level: LevelError, Text: "save failed: " + err.Error()})
		return err
	}

	s.mu.Lock()
	for i := range s.accounts {
		if s.accounts[i].ID == a.ID {
			s.accounts[i] = a
			break
		}
	}
	s.mu.Unlock()

	s.notify(Notice{Level: LevelSuccess, Text: "account updated"})
	return nil
}

// Remove deletes an account by id and filters it out of the cache.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.log.Error("remove account", "id", id, "err", err)
		s.notify(Notice{Level: LevelError, Text: "delete failed: " + err.Error()})
		return err
	}

	s.mu.Lock()
	kept := s.accounts[:0]
	for _, a := range s.accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.accounts = kept
	s.mu.Unlock()

	s.notify(Notice{Level: LevelSuccess, Text: "account deleted"})
	return nil
}
