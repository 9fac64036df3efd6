package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/oguzkose/sms-notes-service/internal/domain"
	"github.com/oguzkose/sms-notes-service/pkg/storage"
)

func newTestStore(t *testing.T) *storage.FSStore {
	t.Helper()

	store, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore returned error: %v", err)
	}
	return store
}

func TestExtensionFor(t *testing.T) {
	if got := extensionFor("image/jpeg"); got != "jpg" {
		t.Errorf("expected jpg, got %q", got)
	}
	if got := extensionFor("audio/ogg"); got != "ogg" {
		t.Errorf("expected subtype fallback ogg, got %q", got)
	}
	if got := extensionFor(""); got != "bin" {
		t.Errorf("expected bin fallback, got %q", got)
	}
}

func TestIngestAll_PartialFailureKeepsOrder(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if r.URL.Path == "/media/1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_, _ = w.Write([]byte("media-bytes"))
	}))
	defer srv.Close()

	store := newTestStore(t)
	ingestor := NewIngestor(store, "AC123", "token", 5*time.Second)

	msg := domain.InboundMessage{
		MessageSID: "SM7",
		NumMedia:   3,
		Media: []domain.MediaItem{
			{Index: 0, URL: srv.URL + "/media/0", ContentType: "image/jpeg"},
			{Index: 1, URL: srv.URL + "/media/1", ContentType: "image/png"},
			{Index: 2, URL: srv.URL + "/media/2", ContentType: "video/mp4"},
		},
	}

	keys := ingestor.IngestAll(ctx, msg)

	want := []string{"media/SM7_0.jpg", "media/SM7_2.mp4"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("expected keys %v, got %v", want, keys)
	}

	data, err := store.Get(ctx, "media/SM7_0.jpg")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != "media-bytes" {
		t.Fatalf("unexpected stored media content: %q", string(data))
	}
}

func TestIngestAll_NoCredentialsYieldsNoReferences(t *testing.T) {
	ctx := context.Background()
	ingestor := NewIngestor(newTestStore(t), "", "", 5*time.Second)

	msg := domain.InboundMessage{
		MessageSID: "SM8",
		NumMedia:   1,
		Media:      []domain.MediaItem{{Index: 0, URL: "http://unreachable.invalid/m", ContentType: "image/jpeg"}},
	}

	if keys := ingestor.IngestAll(ctx, msg); keys != nil {
		t.Fatalf("expected no references, got %v", keys)
	}
}
