package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Ashfaaq98/caseportal/internal/logging"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// defaultMaxLen bounds the activity stream.
const defaultMaxLen = 10000

// RedisBus publishes session activity to a Redis Stream.
type RedisBus struct {
	client *redis.Client
	logger *logrus.Entry
	maxLen int64
}

// NewRedisBus creates a new Redis bus instance
func NewRedisBus(redisURL string, logger *logrus.Entry) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = logging.Component(nil, "bus")
	}

	return &RedisBus{
		client: client,
		logger: logger,
		maxLen: defaultMaxLen,
	}, nil
}

// Close closes the Redis connection
func (rb *RedisBus) Close() error {
	return rb.client.Close()
}

// PublishActivity appends msg to the activity stream.
func (rb *RedisBus) PublishActivity(ctx context.Context, msg ActivityMessage) error {
	values, err := toStreamValues(msg)
	if err != nil {
		return err
	}

	result := rb.client.XAdd(ctx, rb.xaddArgs(values))
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}

	rb.logger.WithFields(logrus.Fields{
		"action":    msg.Action,
		"stream_id": result.Val(),
	}).Debug("published activity")
	return nil
}

// xaddArgs caps the stream near maxLen. Approximate trimming lets Redis
// drop whole macro nodes.
func (rb *RedisBus) xaddArgs(values map[string]interface{}) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: ActivityStream,
		MaxLen: rb.maxLen,
		Approx: true,
		Values: values,
	}
}

// RecentActivity reads the newest count messages from the stream, or the
// whole stream when count <= 0.
func (rb *RedisBus) RecentActivity(ctx context.Context, count int64) ([]ActivityMessage, error) {
	var result *redis.XMessageSliceCmd
	if count <= 0 {
		result = rb.client.XRevRange(ctx, ActivityStream, "+", "-")
	} else {
		result = rb.client.XRevRangeN(ctx, ActivityStream, "+", "-", count)
	}
	if err := result.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read activity stream: %w", err)
	}

	out := make([]ActivityMessage, 0, len(result.Val()))
	for _, m := range result.Val() {
		out = append(out, fromStreamValues(m.ID, m.Values))
	}
	return out, nil
}

// HealthCheck performs a health check on the Redis connection
func (rb *RedisBus) HealthCheck(ctx context.Context) error {
	return rb.client.Ping(ctx).Err()
}

// GetStats returns basic statistics about the activity stream
func (rb *RedisBus) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"type": "redis"}

	info, err := rb.client.XInfoStream(ctx, ActivityStream).Result()
	if err != nil {
		// The stream does not exist until the first publish.
		stats["length"] = int64(0)
		return stats, nil
	}
	stats["length"] = info.Length
	stats["first_entry_id"] = info.FirstEntry.ID
	stats["last_entry_id"] = info.LastEntry.ID
	return stats, nil
}

func toStreamValues(msg ActivityMessage) (map[string]interface{}, error) {
	detailsJSON, err := json.Marshal(msg.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity details: %w", err)
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	return map[string]interface{}{
		"session_id":  msg.SessionID,
		"case_number": msg.CaseNumber,
		"action":      msg.Action,
		"actor":       msg.Actor,
		"details":     string(detailsJSON),
		"timestamp":   msg.Timestamp,
	}, nil
}

func fromStreamValues(id string, values map[string]interface{}) ActivityMessage {
	str := func(key string) string {
		if v, ok := values[key].(string); ok {
			return v
		}
		return ""
	}

	msg := ActivityMessage{
		ID:         id,
		SessionID:  str("session_id"),
		CaseNumber: str("case_number"),
		Action:     str("action"),
		Actor:      str("actor"),
	}
	if raw := str("details"); raw != "" && raw != "null" {
		var details map[string]string
		if err := json.Unmarshal([]byte(raw), &details); err == nil {
			msg.Details = details
		}
	}
	if ts, err := strconv.ParseInt(str("timestamp"), 10, 64); err == nil {
		msg.Timestamp = ts
	}
	return msg
}
