package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
)

// DefaultSearchDebounce is the pause after the last keystroke before a search runs.
const DefaultSearchDebounce = 300 * time.Millisecond

type userLister interface {
	List(ctx context.Context, filter dto.UserFilter) (models.Page[models.User], error)
}

// SearchResult is delivered once per settled search term.
type SearchResult struct {
	Term  string
	Page  models.Page[models.User]
	Error error
}

// UserSearch runs the users list read for the last term typed after a pause.
type UserSearch struct {
	users   userLister
	delay   time.Duration
	filter  dto.UserFilter
	deliver func(SearchResult)
	logger  *zap.Logger

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewUserSearch builds a debounced search. base supplies the role and page
// size applied to every search.
func NewUserSearch(users userLister, delay time.Duration, base dto.UserFilter, deliver func(SearchResult), logger *zap.Logger) *UserSearch {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deliver == nil {
		deliver = func(SearchResult) {}
	}
	return &UserSearch{users: users, delay: delay, filter: base, deliver: deliver, logger: logger}
}

// Type records a keystroke. Each call restarts the timer; only the term
// present when the timer fires is searched.
func (s *UserSearch) Type(ctx context.Context, term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.timer = time.AfterFunc(s.delay, func() { s.run(ctx, seq, term) })
}

// Cancel drops any pending search.
func (s *UserSearch) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}

func (s *UserSearch) run(ctx context.Context, seq uint64, term string) {
	s.mu.Lock()
	stale := seq != s.seq
	s.mu.Unlock()
	if stale {
		return
	}
	filter := s.filter
	filter.Search = strings.TrimSpace(term)
	page, err := s.users.List(ctx, filter)
	if err != nil {
		s.logger.Debug("user search failed", zap.String("term", filter.Search), zap.Error(err))
	}
	s.deliver(SearchResult{Term: filter.Search, Page: page, Error: err})
}

// Search runs a search immediately without debouncing.
func (s *UserSearch) Search(ctx context.Context, term string) (models.Page[models.User], error) {
	filter := s.filter
	filter.Search = strings.TrimSpace(term)
	return s.users.List(ctx, filter)
}

// SearchBox drives a debounced search from discrete keystroke calls and keeps
// the most recent settled result for later reads.
type SearchBox struct {
	search *UserSearch

	mu     sync.RWMutex
	latest *SearchResult
}

// NewSearchBox wraps a debounced search over users.
func NewSearchBox(users userLister, delay time.Duration, base dto.UserFilter, logger *zap.Logger) *SearchBox {
	box := &SearchBox{}
	box.search = NewUserSearch(users, delay, base, box.store, logger)
	return box
}

// Type records a keystroke. The pending search outlives the caller's
// cancellation; request-scoped values such as the request id are kept.
func (b *SearchBox) Type(ctx context.Context, term string) {
	b.search.Type(context.WithoutCancel(ctx), term)
}

// Latest returns the last settled result, false until one has settled.
func (b *SearchBox) Latest() (SearchResult, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.latest == nil {
		return SearchResult{}, false
	}
	return *b.latest, true
}

// Search runs a search immediately without debouncing.
func (b *SearchBox) Search(ctx context.Context, term string) (models.Page[models.User], error) {
	return b.search.Search(ctx, term)
}

func (b *SearchBox) store(r SearchResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = &r
}
