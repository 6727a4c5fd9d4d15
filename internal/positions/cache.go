package positions

import (
	"context"
	"time"

	"github.com/EternisAI/user-directory/internal/directory"
	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultTTL = 10 * time.Minute
	cacheKey   = "positions"
)

type Config struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Cache serves the positions list from memory for ttl after a successful
// fetch. Failures are never cached.
type Cache struct {
	client directory.Executor
	c      *gocache.Cache
}

func NewCache(client directory.Executor, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client: client,
		c:      gocache.New(ttl, time.Minute),
	}
}

func (c *Cache) Positions(ctx context.Context) ([]directory.Position, error) {
	if v, ok := c.c.Get(cacheKey); ok {
		if positions, ok := v.([]directory.Position); ok {
			return positions, nil
		}
	}

	var resp directory.PositionsResponse
	if err := c.client.Execute(ctx, directory.GetPositions(), &resp); err != nil {
		return nil, err
	}

	c.c.SetDefault(cacheKey, resp.Positions)
	return resp.Positions, nil
}

func (c *Cache) Invalidate() {
	c.c.Delete(cacheKey)
}
