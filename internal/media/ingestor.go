// Package media downloads provider-hosted attachments and persists them in
// the object store.
package media

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/oguzkose/sms-notes-service/internal/domain"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
	"github.com/oguzkose/sms-notes-service/pkg/storage"
)

var extByContentType = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"video/mp4":       "mp4",
	"video/3gpp":      "3gp",
	"video/quicktime": "mov",
}

func extensionFor(contentType string) string {
	if ext, ok := extByContentType[contentType]; ok {
		return ext
	}
	if idx := strings.LastIndex(contentType, "/"); idx >= 0 && idx < len(contentType)-1 {
		return contentType[idx+1:]
	}
	return "bin"
}

// Ingestor fetches media over authenticated HTTP and writes it under the
// media/ namespace. Every failure mode is per-item: the caller gets fewer
// references, never an error.
type Ingestor struct {
	httpClient *resty.Client
	store      storage.Store
	accountSID string
	authToken  string
}

func NewIngestor(store storage.Store, accountSID, authToken string, timeout time.Duration) *Ingestor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Ingestor{
		httpClient: resty.New().SetTimeout(timeout),
		store:      store,
		accountSID: accountSID,
		authToken:  authToken,
	}
}

// Ingest downloads one attachment and persists it, returning the store key.
// ok is false on any failure (missing credentials, fetch error, store error);
// the cause is logged, not returned.
func (i *Ingestor) Ingest(ctx context.Context, mediaURL, contentType, messageSID string, index int) (string, bool) {
	if i.accountSID == "" || i.authToken == "" {
		logger.Infof("Provider credentials not configured, skipping media download")
		return "", false
	}

	resp, err := i.httpClient.R().
		SetContext(ctx).
		SetBasicAuth(i.accountSID, i.authToken).
		Get(mediaURL)
	if err != nil {
		logger.Errorf("Error downloading media %s: %v", mediaURL, err)
		return "", false
	}

	if resp.StatusCode() != http.StatusOK {
		logger.Errorf("Error downloading media %s: unexpected status %d", mediaURL, resp.StatusCode())
		return "", false
	}

	key := fmt.Sprintf("media/%s_%d.%s", messageSID, index, extensionFor(contentType))

	if err := i.store.Put(ctx, key, resp.Body(), contentType); err != nil {
		logger.Errorf("Error saving media %s: %v", key, err)
		return "", false
	}

	logger.Infof("Saved media to %s", key)

	return key, true
}

// IngestAll processes a message's attachments in declared order and returns
// the keys of the ones that made it to the store.
func (i *Ingestor) IngestAll(ctx context.Context, msg domain.InboundMessage) []string {
	var keys []string

	for _, item := range msg.Media {
		if key, ok := i.Ingest(ctx, item.URL, item.ContentType, msg.MessageSID, item.Index); ok {
			keys = append(keys, key)
		}
	}

	return keys
}
