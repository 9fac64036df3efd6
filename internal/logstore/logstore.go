// Package logstore wraps the object store with append semantics for the
// per-sender message logs.
package logstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/oguzkose/sms-notes-service/pkg/storage"
)

// TimeFormat is the fixed second-precision UTC timestamp used in log lines
// and transcripts.
const TimeFormat = "2006-01-02 15:04:05"

const (
	keyPrefix = "logs/"
	keySuffix = ".log"

	fieldCount = 8
)

// Entry is one log record. Line renders it as exactly eight tab-delimited
// fields; none of the fields may contain tabs or newlines (message text is a
// known hazard here, not defended against).
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	MessageSID string    `json:"messageSid"`
	To         string    `json:"to"`
	Location   string    `json:"location"`
	Commands   []string  `json:"commands,omitempty"`
	NumMedia   int       `json:"numMedia"`
	MediaKeys  []string  `json:"mediaKeys,omitempty"`
	Text       string    `json:"text"`
}

func (e Entry) Line() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
		e.Timestamp.UTC().Format(TimeFormat),
		e.MessageSID,
		e.To,
		e.Location,
		strings.Join(e.Commands, ","),
		e.NumMedia,
		strings.Join(e.MediaKeys, ","),
		e.Text,
	)
}

// ParseLine is the inverse of Line, used by the read API.
func ParseLine(line string) (Entry, error) {
	fields := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	if len(fields) != fieldCount {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}

	ts, err := time.Parse(TimeFormat, fields[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parse timestamp %q: %w", fields[0], err)
	}

	numMedia, err := strconv.Atoi(fields[5])
	if err != nil {
		return Entry{}, fmt.Errorf("parse media count %q: %w", fields[5], err)
	}

	return Entry{
		Timestamp:  ts.UTC(),
		MessageSID: fields[1],
		To:         fields[2],
		Location:   fields[3],
		Commands:   splitList(fields[4]),
		NumMedia:   numMedia,
		MediaKeys:  splitList(fields[6]),
		Text:       fields[7],
	}, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// SanitizeNumber strips everything but letters and digits so a phone number
// can be used as a store key component.
func SanitizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Key returns the store key for a sender's log.
func Key(number string) string {
	return keyPrefix + SanitizeNumber(number) + keySuffix
}

// LogInfo describes one stored sender log.
type LogInfo struct {
	Number   string    `json:"number"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Adapter provides read and append access to the per-sender logs. Append is a
// plain read-modify-write: two concurrent appends for the same sender can
// drop one entry. A single writer per sender is assumed; an atomic append
// would slot in behind this type without touching callers.
type Adapter struct {
	store storage.Store
}

func New(store storage.Store) *Adapter {
	return &Adapter{store: store}
}

// Read returns the sender's full log, or an empty string when no log exists
// yet (first message from a new sender is not an error).
func (a *Adapter) Read(ctx context.Context, number string) (string, error) {
	data, err := a.store.Get(ctx, Key(number))
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read log for %s: %w", SanitizeNumber(number), err)
	}

	return string(data), nil
}

// Append reads the current log, concatenates the entry and writes the blob
// back wholesale, returning the updated content.
func (a *Adapter) Append(ctx context.Context, number string, entry Entry) (string, error) {
	existing, err := a.Read(ctx, number)
	if err != nil {
		return "", err
	}

	updated := existing + entry.Line()

	if err := a.store.Put(ctx, Key(number), []byte(updated), "text/plain"); err != nil {
		return "", fmt.Errorf("write log for %s: %w", SanitizeNumber(number), err)
	}

	return updated, nil
}

// List returns metadata for every stored sender log.
func (a *Adapter) List(ctx context.Context) ([]LogInfo, error) {
	objects, err := a.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}

	logs := make([]LogInfo, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, keySuffix) {
			continue
		}

		number := strings.TrimSuffix(strings.TrimPrefix(obj.Key, keyPrefix), keySuffix)
		logs = append(logs, LogInfo{Number: number, Size: obj.Size, Modified: obj.Modified})
	}

	return logs, nil
}
