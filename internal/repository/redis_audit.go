package repository

import (
	"context"
	"encoding/json"

	"github.com/GoPolymarket/hudgate/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisAuditSink keeps the most recent audit records in a capped list.
type RedisAuditSink struct {
	client  *redis.Client
	listKey string
	listMax int
}

func NewRedisAuditSink(client *redis.Client, listKey string, listMax int) *RedisAuditSink {
	if listKey == "" {
		listKey = "audit_logs"
	}
	if listMax <= 0 {
		listMax = 10000
	}
	return &RedisAuditSink{
		client:  client,
		listKey: listKey,
		listMax: listMax,
	}
}

func (s *RedisAuditSink) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, s.listKey, payload)
	pipe.LTrim(ctx, s.listKey, 0, int64(s.listMax-1))
	_, err = pipe.Exec(ctx)
	return err
}
