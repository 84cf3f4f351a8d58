package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intelliview-be/internal/entity"

	"github.com/redis/go-redis/v9"
)

const reportKeyPrefix = "interview:report:"

// ReportCache keeps generated reports in redis so HR dashboards do not hit postgres.
type ReportCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewReportCache(rdb redis.Cmdable, ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: ttl}
}

func reportKey(sessionID string) string {
	return reportKeyPrefix + sessionID
}

// Get returns (nil, nil) on a cache miss.
func (c *ReportCache) Get(ctx context.Context, sessionID string) (*entity.InterviewReport, error) {
	raw, err := c.rdb.Get(ctx, reportKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached report: %w", err)
	}

	var report entity.InterviewReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &report, nil
}

func (c *ReportCache) Set(ctx context.Context, report *entity.InterviewReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return c.rdb.Set(ctx, reportKey(report.SessionId), raw, c.ttl).Err()
}

func (c *ReportCache) Delete(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, reportKey(sessionID)).Err()
}
