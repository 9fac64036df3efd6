package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oguzkose/sms-notes-service/environments"
	"github.com/oguzkose/sms-notes-service/internal/action"
	"github.com/oguzkose/sms-notes-service/internal/command"
	"github.com/oguzkose/sms-notes-service/internal/domain"
	"github.com/oguzkose/sms-notes-service/internal/logstore"
	"github.com/oguzkose/sms-notes-service/internal/payload"
	"github.com/oguzkose/sms-notes-service/internal/signature"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
	"github.com/oguzkose/sms-notes-service/pkg/storage"
)

// Rejection reasons the HTTP handler maps to response codes. Anything else
// coming out of Process is a server-side fault.
var (
	ErrInvalidSignature = errors.New("invalid provider signature")
	ErrMissingSender    = errors.New("missing From number")
	ErrSenderNotAllowed = errors.New("sender not allow-listed")
)

// WebhookRequest is the raw inbound callback before decoding.
type WebhookRequest struct {
	Body      string
	IsBase64  bool
	Signature string
}

// Outcome collects what happened after the message was durably logged. The
// caller uses it for logging and response shaping only; none of it can fail
// the request.
type Outcome struct {
	Message       domain.InboundMessage
	Commands      []string
	MessageText   string
	MediaKeys     []string
	UpdatedLog    string
	ActionResults []action.Result
	Notified      bool
}

// Small internal interfaces so we can test without touching real stores,
// SMTP or the model endpoint.
type logStore interface {
	Append(ctx context.Context, number string, entry logstore.Entry) (string, error)
}

type mediaIngestor interface {
	IngestAll(ctx context.Context, msg domain.InboundMessage) []string
}

type dispatcher interface {
	Dispatch(ctx context.Context, commands []string, actx *action.Context) []action.Result
}

type notifier interface {
	Send(ctx context.Context, subject, body string, attachment []byte, filename string) bool
}

type recentCache interface {
	CacheRecentMessage(ctx context.Context, rec domain.RecentMessage) error
}

// WebhookService sequences the ingestion pipeline for one callback:
// authenticate, authorize, parse, ingest media, append to the log, dispatch
// commands, notify.
type WebhookService struct {
	logs     logStore
	media    mediaIngestor
	actions  dispatcher
	notifier notifier
	cache    recentCache // nil when the cache is unavailable
	store    storage.Store
	cfg      *environments.Config
}

func NewWebhookService(
	logs logStore,
	media mediaIngestor,
	actions dispatcher,
	notifier notifier,
	cache recentCache,
	store storage.Store,
	cfg *environments.Config,
) *WebhookService {
	return &WebhookService{
		logs:     logs,
		media:    media,
		actions:  actions,
		notifier: notifier,
		cache:    cache,
		store:    store,
		cfg:      cfg,
	}
}

// Process runs the pipeline. Errors returned before the log append reject or
// fail the request; once the entry is written, every later failure is
// absorbed and the provider gets a success response.
func (s *WebhookService) Process(ctx context.Context, req WebhookRequest) (*Outcome, error) {
	fields, err := payload.Decode(req.Body, req.IsBase64)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	if !signature.Validate(s.cfg.Provider.WebhookURL, fields, req.Signature, s.cfg.Provider.AuthToken) {
		logger.Warnf("Invalid provider signature")
		return nil, ErrInvalidSignature
	}

	msg := domain.FromPayload(fields)

	if msg.From == "" {
		logger.Warnf("No From number in payload")
		return nil, ErrMissingSender
	}

	if !s.allowed(msg.From) {
		logger.Warnf("Rejected message from unauthorized number: %s", msg.From)
		return nil, ErrSenderNotAllowed
	}

	commands, messageText := command.Parse(msg.Body)

	// Media first, so the log entry can reference the stored keys.
	mediaKeys := s.media.IngestAll(ctx, msg)

	timestamp := time.Now().UTC()
	entry := logstore.Entry{
		Timestamp:  timestamp,
		MessageSID: msg.MessageSID,
		To:         msg.To,
		Location:   msg.Location(),
		Commands:   commands,
		NumMedia:   msg.NumMedia,
		MediaKeys:  mediaKeys,
		Text:       messageText,
	}

	updated, err := s.logs.Append(ctx, msg.From, entry)
	if err != nil {
		return nil, fmt.Errorf("append message log: %w", err)
	}

	// The message is durably recorded from here on; everything below is
	// best-effort and must not surface in the provider response.
	outcome := &Outcome{
		Message:     msg,
		Commands:    commands,
		MessageText: messageText,
		MediaKeys:   mediaKeys,
		UpdatedLog:  updated,
	}

	if len(commands) > 0 {
		actx := &action.Context{
			MessageText: messageText,
			LogContent:  updated,
			From:        msg.From,
			To:          msg.To,
			MessageSID:  msg.MessageSID,
			Location:    msg.Location(),
			Timestamp:   timestamp,
			Store:       s.store,
		}
		outcome.ActionResults = s.actions.Dispatch(ctx, commands, actx)
	}

	if s.cache != nil {
		rec := domain.RecentMessage{
			MessageSID:  msg.MessageSID,
			From:        msg.From,
			To:          msg.To,
			Commands:    commands,
			NumMedia:    msg.NumMedia,
			MediaKeys:   mediaKeys,
			ProcessedAt: timestamp,
		}
		if err := s.cache.CacheRecentMessage(ctx, rec); err != nil {
			logger.Warnf("Failed to cache recent message %s: %v", msg.MessageSID, err)
		}
	}

	var attachment []byte
	filename := ""
	if s.cfg.Notify.AttachLogFile {
		attachment = []byte(updated)
		filename = "message_log.log"
	}

	subject := fmt.Sprintf("AI ASSISTANT: Message %s Stored", msg.MessageSID)
	outcome.Notified = s.notifier.Send(ctx, subject, entry.Line(), attachment, filename)

	logger.Infof("Logged message from %s | commands: %v | media: %d", msg.From, commands, msg.NumMedia)

	return outcome, nil
}

func (s *WebhookService) allowed(number string) bool {
	for _, allowed := range s.cfg.Provider.AllowedNumbers {
		if number == allowed {
			return true
		}
	}
	return false
}
