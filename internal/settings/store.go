// Package settings persists the remote-store credentials in a local key-value
// store, with compiled-in defaults for a fresh install. Changing them takes
// effect on the next process start.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	keyRemoteURL = "guidari:sb_url"
	keyRemoteKey = "guidari:sb_key"
)

var ErrEmptyCredentials = errors.New("both url and key are required")

// RemoteCredentials is the pair needed to build the REST store client.
type RemoteCredentials struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type Store struct {
	rdb      *redis.Client
	defaults RemoteCredentials
}

func NewStore(rdb *redis.Client, defaults RemoteCredentials) *Store {
	return &Store{rdb: rdb, defaults: defaults}
}

// Remote returns the persisted credentials, falling back to the compiled-in
// defaults for any absent value. An unreachable key-value store also falls
// back, so startup never blocks on it.
func (s *Store) Remote(ctx context.Context) RemoteCredentials {
	out := s.defaults
	if s.rdb == nil {
		return out
	}

	if v, err := s.rdb.Get(ctx, keyRemoteURL).Result(); err == nil && v != "" {
		out.URL = v
	}
	if v, err := s.rdb.Get(ctx, keyRemoteKey).Result(); err == nil && v != "" {
		out.Key = v
	}
	return out
}

// UpdateRemote validates and persists new credentials.
func (s *Store) UpdateRemote(ctx context.Context, creds RemoteCredentials) error {
	url := strings.TrimSpace(creds.URL)
	key := strings.TrimSpace(creds.Key)
	if url == "" || key == "" {
		return ErrEmptyCredentials
	}
	if s.rdb == nil {
		return errors.New("settings store is not configured")
	}

	if err := s.rdb.Set(ctx, keyRemoteURL, url, 0).Err(); err != nil {
		return fmt.Errorf("persist remote url: %w", err)
	}
	if err := s.rdb.Set(ctx, keyRemoteKey, key, 0).Err(); err != nil {
		return fmt.Errorf("persist remote key: %w", err)
	}
	return nil
}
