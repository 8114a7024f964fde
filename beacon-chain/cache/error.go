package cache

import "github.com/pkg/errors"

var (
	// ErrCacheCannotBeNil is returned when the backing store of a cache cannot be created.
	ErrCacheCannotBeNil = errors.New("cache cannot be nil")
	// ErrInvalidCacheSize is returned for a non positive capacity.
	ErrInvalidCacheSize = errors.New("cache size must be positive")
)
