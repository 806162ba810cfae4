package projects

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/teamgrid/backend/internal/models"
)

const overviewKeyPrefix = "project:members:"

// Cache is a Redis read-through cache for the member overview projection.
// Every project mutation invalidates the project's entry, so a hit always
// reflects the last committed write on this node. Cache failures are logged
// and treated as misses; they never fail the request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache creates an overview cache.
func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// GetOverview returns the cached overview for the project, if present.
func (c *Cache) GetOverview(ctx context.Context, projectID int64) (*models.ProjectOverview, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, overviewKey(projectID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("overview cache get", zap.Error(err))
		}
		return nil, false
	}
	var overview models.ProjectOverview
	if err := json.Unmarshal(raw, &overview); err != nil {
		c.logger.Warn("overview cache decode", zap.Error(err))
		return nil, false
	}
	return &overview, true
}

// SetOverview stores the overview for the project.
func (c *Cache) SetOverview(ctx context.Context, projectID int64, overview *models.ProjectOverview) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(overview)
	if err != nil {
		c.logger.Warn("overview cache encode", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, overviewKey(projectID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("overview cache set", zap.Error(err))
	}
}

// Invalidate drops the cached overview for the project.
func (c *Cache) Invalidate(ctx context.Context, projectID int64) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, overviewKey(projectID)).Err(); err != nil {
		c.logger.Warn("overview cache invalidate", zap.Error(err))
	}
}

func overviewKey(projectID int64) string {
	return overviewKeyPrefix + strconv.FormatInt(projectID, 10)
}
