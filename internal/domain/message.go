package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MediaItem is one attachment reference as declared by the provider payload.
// Index is the zero-based position within the message, kept even when earlier
// items are absent so store keys stay stable.
type MediaItem struct {
	Index       int
	URL         string
	ContentType string
}

// InboundMessage is an immutable snapshot of one webhook delivery, built once
// from the decoded payload fields.
type InboundMessage struct {
	From        string
	To          string
	Body        string
	MessageSID  string
	NumMedia    int
	Media       []MediaItem
	FromCity    string
	FromState   string
	FromCountry string
}

// FromPayload extracts the provider fields from a decoded form payload.
// Absent fields become empty strings; a malformed NumMedia counts as zero.
func FromPayload(fields map[string]string) InboundMessage {
	numMedia, _ := strconv.Atoi(fields["NumMedia"])

	msg := InboundMessage{
		From:        fields["From"],
		To:          fields["To"],
		Body:        fields["Body"],
		MessageSID:  fields["MessageSid"],
		NumMedia:    numMedia,
		FromCity:    fields["FromCity"],
		FromState:   fields["FromState"],
		FromCountry: fields["FromCountry"],
	}

	for i := 0; i < numMedia; i++ {
		url := fields[fmt.Sprintf("MediaUrl%d", i)]
		if url == "" {
			continue
		}

		contentType := fields[fmt.Sprintf("MediaContentType%d", i)]
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		msg.Media = append(msg.Media, MediaItem{Index: i, URL: url, ContentType: contentType})
	}

	return msg
}

// Location joins the non-empty geographic hint fields with commas.
func (m InboundMessage) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.FromCity, m.FromState, m.FromCountry} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ",")
}

// RecentMessage is the cached summary of one processed delivery, kept with a
// TTL so operators can inspect recent traffic without touching the log store.
type RecentMessage struct {
	MessageSID  string    `json:"messageSid"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Commands    []string  `json:"commands,omitempty"`
	NumMedia    int       `json:"numMedia"`
	MediaKeys   []string  `json:"mediaKeys,omitempty"`
	ProcessedAt time.Time `json:"processedAt"`
}
