package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/oguzkose/sms-notes-service/environments"
	"github.com/oguzkose/sms-notes-service/internal/domain"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
)

// Client keeps a short-lived record per processed message so operators can
// inspect recent traffic without reading the log store.
type Client struct {
	client valkey.Client
}

const (
	recentMessageKeyPrefix = "recent_message:"
	recentMessageTTL       = 24 * time.Hour
)

func NewClient(cfg environments.ValkeyConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	logger.Infof("Connected to Valkey")

	return &Client{client: client}, nil
}

func (c *Client) CacheRecentMessage(ctx context.Context, rec domain.RecentMessage) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recent message: %w", err)
	}

	key := recentMessageKeyPrefix + rec.MessageSID

	err = c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(recentMessageTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache recent message: %w", err)
	}

	logger.Debugf("Cached recent message %s", rec.MessageSID)

	return nil
}

func (c *Client) GetRecentMessages(ctx context.Context) ([]domain.RecentMessage, error) {
	pattern := recentMessageKeyPrefix + "*"

	var keys []string
	var cursor uint64
	for {
		result := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build())
		if result.Error() != nil {
			return nil, fmt.Errorf("failed to scan cache keys: %w", result.Error())
		}

		scanResult, err := result.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to parse scan result: %w", err)
		}

		keys = append(keys, scanResult.Elements...)
		cursor = scanResult.Cursor

		if cursor == 0 {
			break
		}
	}

	messages := make([]domain.RecentMessage, 0, len(keys))

	for _, key := range keys {
		getResult := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
		if getResult.Error() != nil {
			continue
		}

		data, err := getResult.ToString()
		if err != nil {
			continue
		}

		var rec domain.RecentMessage
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			logger.Warnf("failed to unmarshal cached message at %q: %v", key, err)
			continue
		}

		messages = append(messages, rec)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].ProcessedAt.After(messages[j].ProcessedAt)
	})

	return messages, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}
