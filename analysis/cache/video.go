package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const (
	// DefaultVideoTTL is how long fetched video metadata is cached.
	DefaultVideoTTL = time.Hour
	videoKeyPrefix  = "video:"
)

// VideoKey returns the cache key of videoID.
func VideoKey(videoID string) string {
	return videoKeyPrefix + videoID
}

// CachedVideoSource serves video metadata from a Store and falls back to the wrapped source on a miss.
// Store failures are logged and never fail a lookup.
type CachedVideoSource struct {
	lggr   logger.Logger
	store  Store
	source protocol.VideoSource
	ttl    time.Duration
}

var _ protocol.VideoSource = (*CachedVideoSource)(nil)

func NewCachedVideoSource(lggr logger.Logger, store Store, source protocol.VideoSource, ttl time.Duration) (*CachedVideoSource, error) {
	var errs []error
	appendIfNil := func(field any, fieldName string) {
		if field == nil {
			errs = append(errs, errors.New(fieldName+" is not set"))
		}
	}
	appendIfNil(lggr, "logger")
	appendIfNil(store, "store")
	appendIfNil(source, "video source")
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if ttl <= 0 {
		ttl = DefaultVideoTTL
	}
	return &CachedVideoSource{
		lggr:   logger.Named(lggr, "VideoCache"),
		store:  store,
		source: source,
		ttl:    ttl,
	}, nil
}

func (c *CachedVideoSource) GetVideo(ctx context.Context, videoID string) (protocol.Video, error) {
	key := VideoKey(videoID)

	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.lggr.Warnw("Cache read failed, fetching from source", "key", key, "error", err)
	case ok:
		var v protocol.Video
		if err := json.Unmarshal(raw, &v); err == nil {
			c.lggr.Debugw("Cache hit", "key", key)
			return v, nil
		}
		c.lggr.Warnw("Dropping undecodable cache entry", "key", key)
		_ = c.store.Delete(ctx, key)
	}

	v, err := c.source.GetVideo(ctx, videoID)
	if err != nil {
		return protocol.Video{}, err
	}

	raw, err = json.Marshal(v)
	if err != nil {
		c.lggr.Warnw("Failed to encode video for cache", "key", key, "error", err)
		return v, nil
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.lggr.Warnw("Cache write failed", "key", key, "error", err)
	}
	return v, nil
}
