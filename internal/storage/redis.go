package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/constants"
	"solana-pump-monitor/internal/models"
)

// RedisCache implements FindingCache over a single Redis instance.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisCache(addr string, logger *logrus.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = logrus.New()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithField("addr", addr).Info("Connected to Redis")
	return &RedisCache{client: client, logger: logger}, nil
}

// PushRecent prepends the finding and trims the list in one round trip.
func (r *RedisCache) PushRecent(ctx context.Context, finding *models.Finding) error {
	data, err := json.Marshal(finding)
	if err != nil {
		return fmt.Errorf("failed to marshal finding: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentFindings, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentFindings, 0, constants.MaxRecentFindings-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push recent finding: %w", err)
	}
	return nil
}

func (r *RedisCache) RecentFindings(ctx context.Context, limit int64) ([]*models.Finding, error) {
	if limit <= 0 || limit > constants.MaxRecentFindings {
		limit = constants.MaxRecentFindings
	}

	raw, err := r.client.LRange(ctx, constants.RedisKeyRecentFindings, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent findings: %w", err)
	}

	findings := make([]*models.Finding, 0, len(raw))
	for _, item := range raw {
		var f models.Finding
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			r.logger.WithError(err).Warn("Skipping unparseable cached finding")
			continue
		}
		findings = append(findings, &f)
	}
	return findings, nil
}

func (r *RedisCache) PublishFinding(ctx context.Context, finding *models.Finding) error {
	data, err := json.Marshal(finding)
	if err != nil {
		return fmt.Errorf("failed to marshal finding: %w", err)
	}
	if err := r.client.Publish(ctx, constants.PubSubChannelFindings, data).Err(); err != nil {
		return fmt.Errorf("failed to publish finding: %w", err)
	}
	return nil
}

type alertMessage struct {
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

func (r *RedisCache) PublishAlert(ctx context.Context, subject, body string) error {
	data, err := json.Marshal(alertMessage{Subject: subject, Body: body, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := r.client.Publish(ctx, constants.PubSubChannelAlerts, data).Err(); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	return nil
}

// SubscribeFindings returns a channel of live findings. The channel closes
// when ctx is cancelled.
func (r *RedisCache) SubscribeFindings(ctx context.Context) (<-chan *models.Finding, error) {
	sub := r.client.Subscribe(ctx, constants.PubSubChannelFindings)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to findings: %w", err)
	}

	out := make(chan *models.Finding)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var f models.Finding
				if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
					r.logger.WithError(err).Warn("Skipping unparseable published finding")
					continue
				}
				select {
				case out <- &f:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Client exposes the underlying connection for collaborators that share the
// instance, like the runtime flag store.
func (r *RedisCache) Client() *redis.Client {
	return r.client
}
