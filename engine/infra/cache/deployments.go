package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/compozy/autoflow/engine/deploy"
	"github.com/redis/go-redis/v9"
)

// DeploymentStore keeps deployment records as JSON strings plus one set of workflow ids per user.
type DeploymentStore struct {
	redis *Redis
}

func NewDeploymentStore(r *Redis) *DeploymentStore {
	return &DeploymentStore{redis: r}
}

func (s *DeploymentStore) recordKey(workflowID string) string {
	return s.redis.key("deployment", workflowID)
}

func (s *DeploymentStore) userKey(userID string) string {
	return s.redis.key("user", userID, "deployments")
}

func (s *DeploymentStore) Save(ctx context.Context, rec *deploy.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode deployment %s: %w", rec.WorkflowID, err)
	}
	_, err = s.redis.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(rec.WorkflowID), data, 0)
		pipe.SAdd(ctx, s.userKey(rec.UserID), rec.WorkflowID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save deployment %s: %w", rec.WorkflowID, err)
	}
	return nil
}

func (s *DeploymentStore) Get(ctx context.Context, workflowID string) (*deploy.Record, error) {
	data, err := s.redis.client.Get(ctx, s.recordKey(workflowID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, deploy.ErrDeploymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load deployment %s: %w", workflowID, err)
	}
	return decodeRecord(data)
}

func (s *DeploymentStore) ListByUser(ctx context.Context, userID string) ([]*deploy.Record, error) {
	ids, err := s.redis.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments for %s: %w", userID, err)
	}
	out := make([]*deploy.Record, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	values, err := s.redis.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments for %s: %w", userID, err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		rec, err := decodeRecord([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	deploy.SortRecords(out)
	return out, nil
}

func decodeRecord(data []byte) (*deploy.Record, error) {
	var rec deploy.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode deployment record: %w", err)
	}
	return &rec, nil
}
