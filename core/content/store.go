// Package content owns the portal collections: news, events, polls and announcements.
package content

import (
	"fmt"
	"sync"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
)

// Storage persists JSON values by key. Failures are handled (logged) by the implementation:
// Decode reports false and the caller falls back, Save drops the write.
type Storage interface {
	Decode(key string, dst interface{}) bool
	Save(key string, value interface{})
}

// Store holds the four collections in memory and writes each one through to Storage after every change.
// Mutations are serialized and their saves are issued in the same order.
type Store struct {
	mu      sync.Mutex
	storage Storage
	logger  core.Logger
	now     func() time.Time
	seed    bool

	news          []NewsItem
	events        []Event
	polls         []Poll
	announcements []Announcement

	clientsMu sync.Mutex
	clients   map[string]*ClientState
}

type Option func(*Store)

// WithClock sets the clock used to stamp createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSeed chooses whether missing collections start from the seed data (default) or empty.
func WithSeed(seed bool) Option {
	return func(s *Store) { s.seed = seed }
}

// NewStore hydrates a Store from storage: each collection is read once and falls back to its default.
func NewStore(storage Storage, logger core.Logger, opts ...Option) (*Store, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(storage, "storage"),
		vala.IsNotNil(logger, "logger"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "checking store dependencies")
	}

	s := &Store{
		storage: storage,
		logger:  logger,
		now:     time.Now,
		seed:    true,
		clients: make(map[string]*ClientState),
	}
	for _, opt := range opts {
		opt(s)
	}

	defaults, err := s.defaults()
	if err != nil {
		return nil, err
	}
	s.news = load(storage, NewsKey, defaults.News)
	s.events = load(storage, EventsKey, defaults.Events)
	s.polls = load(storage, PollsKey, defaults.Polls)
	s.announcements = load(storage, AnnouncementsKey, defaults.Announcements)
	for i := range s.polls {
		recountVotes(&s.polls[i])
	}

	s.logger.Debug(fmt.Sprintf(
		"content store hydrated: %d news, %d events, %d polls, %d announcements",
		len(s.news), len(s.events), len(s.polls), len(s.announcements),
	))
	return s, nil
}

func (s *Store) defaults() (Collections, error) {
	if !s.seed {
		return Collections{
			News:          []NewsItem{},
			Events:        []Event{},
			Polls:         []Poll{},
			Announcements: []Announcement{},
		}, nil
	}
	c, err := SeedCollections()
	return c, errors.Wrap(err, "loading seed data")
}

// Reset replaces every collection by its default and persists them.
func (s *Store) Reset() error {
	defaults, err := s.defaults()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.news = defaults.News
	s.events = defaults.Events
	s.polls = defaults.Polls
	s.announcements = defaults.Announcements
	s.storage.Save(NewsKey, s.news)
	s.storage.Save(EventsKey, s.events)
	s.storage.Save(PollsKey, s.polls)
	s.storage.Save(AnnouncementsKey, s.announcements)
	return nil
}

// Stats is the admin dashboard summary.
type Stats struct {
	News          int `json:"news"`
	PublishedNews int `json:"published_news"`
	Events        int `json:"events"`
	ActiveEvents  int `json:"active_events"`
	Polls         int `json:"polls"`
	ActivePolls   int `json:"active_polls"`
	TotalVotes    int `json:"total_votes"`
	Announcements int `json:"announcements"`
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		News:          len(s.news),
		PublishedNews: len(PublishedNews(s.news)),
		Events:        len(s.events),
		ActiveEvents:  len(ActiveEvents(s.events)),
		Polls:         len(s.polls),
		Announcements: len(s.announcements),
	}
	for _, p := range s.polls {
		if p.Status == PollActive {
			st.ActivePolls++
		}
		st.TotalVotes += p.TotalVotes
	}
	return st
}

func load[T any](storage Storage, key string, fallback []T) []T {
	var items []T
	if storage.Decode(key, &items) && items != nil {
		return items
	}
	return fallback
}

func nextID[T entity](items []T) int {
	max := 0
	for _, item := range items {
		if id := item.key(); id > max {
			max = id
		}
	}
	return max + 1
}

func indexOf[T entity](items []T, id int) int {
	for i, item := range items {
		if item.key() == id {
			return i
		}
	}
	return -1
}

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

func remove[T entity](items []T, id int) ([]T, bool) {
	i := indexOf(items, id)
	if i < 0 {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), true
}
