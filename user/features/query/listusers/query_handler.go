package listusers

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/eventfold/aggregatestore-go/user/core"
	"github.com/eventfold/aggregatestore-go/user/shell"
)

const (
	defaultCacheTTL = 30 * time.Second
	cacheKeyFormat  = "users:list:p%d:s%d"
)

var marshaler = jsoniter.ConfigFastest

// Repository defines the persistence interface needed by the QueryHandler.
type Repository interface {
	FindMany(ctx context.Context, page int, pageSize int) ([]core.UserState, int, error)
}

// QueryHandler answers paginated user lists with a cache-aside read path.
// Cached pages expire by TTL only, so the list may lag writes by up to the
// TTL. A cache backend failure falls through to the repository.
type QueryHandler struct {
	users    Repository
	cache    shell.Cache
	cacheTTL time.Duration
}

// Option defines a functional option for configuring QueryHandler.
type Option func(*QueryHandler)

// WithCache enables the cache-aside path with the default TTL of 30 seconds.
func WithCache(cache shell.Cache) Option {
	return func(h *QueryHandler) {
		h.cache = cache
	}
}

// WithCacheTTL overrides the default cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(h *QueryHandler) {
		h.cacheTTL = ttl
	}
}

// NewQueryHandler creates a new QueryHandler with the provided dependency and options.
func NewQueryHandler(users Repository, options ...Option) QueryHandler {
	handler := QueryHandler{
		users:    users,
		cacheTTL: defaultCacheTTL,
	}

	for _, option := range options {
		option(&handler)
	}

	return handler
}

// Handle returns one page of alive users, newest first, serving from the
// cache when a fresh page is available.
func (h QueryHandler) Handle(ctx context.Context, query Query) (UserList, error) {
	cacheKey := fmt.Sprintf(cacheKeyFormat, query.Page, query.PageSize)

	if h.cache != nil {
		if cached, found := h.readCache(ctx, cacheKey); found {
			return cached, nil
		}
	}

	states, totalCount, err := h.users.FindMany(ctx, query.Page, query.PageSize)
	if err != nil {
		return UserList{}, err
	}

	result := UserListFromStates(states, totalCount, query.Page, query.PageSize)

	if h.cache != nil {
		h.writeCache(ctx, cacheKey, result)
	}

	return result, nil
}

func (h QueryHandler) readCache(ctx context.Context, key string) (UserList, bool) {
	cached, found, err := h.cache.Get(ctx, key)
	if err != nil || !found {
		return UserList{}, false
	}

	var result UserList
	if err := marshaler.Unmarshal(cached, &result); err != nil {
		return UserList{}, false
	}

	return result, true
}

func (h QueryHandler) writeCache(ctx context.Context, key string, result UserList) {
	encoded, err := marshaler.Marshal(result)
	if err != nil {
		return
	}

	// Best effort, a failed cache write never fails the query.
	_ = h.cache.Set(ctx, key, encoded, h.cacheTTL)
}
