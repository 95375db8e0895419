package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/doccover/backend-go/internal/config"
	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	resultKeyPrefix     = "doc:result"
	resultScanBatchSize = 100
)

// ResultCache memoizes calculator results by input content and options.
// Entries are immutable; a hit is the exact result of an earlier run.
type ResultCache interface {
	Get(ctx context.Context, key string) (*coverage.Result, bool, error)
	Set(ctx context.Context, key string, result *coverage.Result) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopResultCache struct{}

// NewResultCache returns a Redis-backed cache when enabled, otherwise a no-op.
func NewResultCache(ctx context.Context, cfg config.CacheConfig) (ResultCache, error) {
	if !cfg.Enabled {
		return &noopResultCache{}, nil
	}

	client, err := connectRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &redisResultCache{
		client: client,
		ttl:    resultTTL(cfg),
	}, nil
}

func NewNoopResultCache() ResultCache {
	return &noopResultCache{}
}

func (c *redisResultCache) Get(ctx context.Context, key string) (*coverage.Result, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result coverage.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode result cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisResultCache) Set(ctx context.Context, key string, result *coverage.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisResultCache) InvalidateAll(ctx context.Context) error {
	removed, err := unlinkMatching(ctx, c.client, resultKeyPrefix+":*", resultScanBatchSize)
	if err != nil {
		return err
	}
	log.Debug().Int("keys", removed).Msg("result cache invalidated")
	return nil
}

func (c *redisResultCache) Close() error {
	return c.client.Close()
}

func (n *noopResultCache) Get(ctx context.Context, key string) (*coverage.Result, bool, error) {
	return nil, false, nil
}

func (n *noopResultCache) Set(ctx context.Context, key string, result *coverage.Result) error {
	return nil
}

func (n *noopResultCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (n *noopResultCache) Close() error {
	return nil
}

// ResultKey builds the cache key of content processed with opts under
// taxonomy (nil is the default taxonomy). Options are normalized first so
// equivalent settings share an entry.
func ResultKey(content []byte, opts coverage.Options, taxonomy *coverage.Taxonomy) string {
	return fmt.Sprintf("%s:%s", resultKeyPrefix, resultHash(content, opts.WithDefaults(), taxonomy))
}

func resultHash(content []byte, opts coverage.Options, taxonomy *coverage.Taxonomy) string {
	parts := []string{
		"site=" + strings.ToLower(strings.TrimSpace(opts.SiteMarker)),
		"multiplier=" + strconv.FormatFloat(opts.UnitMultiplier, 'g', -1, 64),
		"location=" + strings.TrimSpace(opts.LocationColumn),
		"category=" + strings.TrimSpace(opts.CategoryColumn),
		"assume_site_demand=" + strconv.FormatBool(opts.AssumeSiteDemand),
		"taxonomy=" + taxonomyFingerprint(taxonomy),
	}

	h := sha1.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}

// taxonomyFingerprint serializes the ordered entries; order matters since the
// first matching pattern wins.
func taxonomyFingerprint(taxonomy *coverage.Taxonomy) string {
	if taxonomy == nil {
		taxonomy = coverage.DefaultTaxonomy()
	}
	var b strings.Builder
	for _, e := range taxonomy.Entries() {
		b.WriteString(string(e.Class))
		b.WriteByte('=')
		b.WriteString(strings.Join(e.Patterns, "\x1f"))
		b.WriteByte(';')
	}
	return b.String()
}
