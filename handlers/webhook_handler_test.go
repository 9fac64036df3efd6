package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/oguzkose/sms-notes-service/environments"
	"github.com/oguzkose/sms-notes-service/internal/action"
	"github.com/oguzkose/sms-notes-service/internal/domain"
	"github.com/oguzkose/sms-notes-service/internal/logstore"
	"github.com/oguzkose/sms-notes-service/internal/service"
	"github.com/oguzkose/sms-notes-service/internal/signature"
	"github.com/oguzkose/sms-notes-service/pkg/storage"
)

const (
	testAuthToken  = "test-auth-token"
	testWebhookURL = "https://notes.example.com/webhook/sms"
	allowedSender  = "+15550001111"
	unlistedSender = "+15559998888"
)

type stubIngestor struct {
	keys []string
}

func (s stubIngestor) IngestAll(ctx context.Context, msg domain.InboundMessage) []string {
	return s.keys
}

type captureNotifier struct {
	subjects []string
}

func (n *captureNotifier) Send(ctx context.Context, subject, body string, attachment []byte, filename string) bool {
	n.subjects = append(n.subjects, subject)
	return true
}

type recordingAction struct {
	calls      int
	logContent string
}

func (r *recordingAction) handle(ctx context.Context, actx *action.Context) (string, error) {
	r.calls++
	r.logContent = actx.LogContent
	return "done", nil
}

type webhookEnv struct {
	handler  *WebhookHandler
	logs     *logstore.Adapter
	action   *recordingAction
	notifier *captureNotifier
}

func newWebhookEnv(t *testing.T) *webhookEnv {
	t.Helper()

	store, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	cfg := &environments.Config{
		Provider: environments.ProviderConfig{
			AuthToken:      testAuthToken,
			WebhookURL:     testWebhookURL,
			AllowedNumbers: []string{allowedSender},
		},
	}

	rec := &recordingAction{}
	registry := action.NewRegistry()
	registry.Register("question", rec.handle)

	logs := logstore.New(store)
	notifier := &captureNotifier{}

	svc := service.NewWebhookService(logs, stubIngestor{}, registry, notifier, nil, store, cfg)

	return &webhookEnv{
		handler:  NewWebhookHandler(svc),
		logs:     logs,
		action:   rec,
		notifier: notifier,
	}
}

func signedFormRequest(fields map[string]string) *http.Request {
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}

	req := httptest.NewRequest(http.MethodPost, "/webhook/sms", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set(SignatureHeader, signature.Sign(testWebhookURL, fields, testAuthToken))
	return req
}

func serveWebhook(t *testing.T, env *webhookEnv, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := env.handler.Receive(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestWebhookReceive_StoresMessageAndRespondsTwiML(t *testing.T) {
	env := newWebhookEnv(t)

	req := signedFormRequest(map[string]string{
		"From":       allowedSender,
		"To":         "+15550002222",
		"MessageSid": "SM100",
		"Body":       "/question what did I note last week?",
		"NumMedia":   "0",
	})

	rec := serveWebhook(t, env, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != twimlResponse {
		t.Errorf("expected TwiML response, got %q", got)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("expected application/xml content type, got %q", ct)
	}

	content, err := env.logs.Read(context.Background(), allowedSender)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(content, "SM100") {
		t.Errorf("expected log to contain message SID, got %q", content)
	}

	entry, err := logstore.ParseLine(strings.TrimSuffix(content, "\n"))
	if err != nil {
		t.Fatalf("failed to parse log line: %v", err)
	}
	if len(entry.Commands) != 1 || entry.Commands[0] != "question" {
		t.Errorf("expected commands [question], got %v", entry.Commands)
	}
	if entry.Text != "what did I note last week?" {
		t.Errorf("unexpected residual text: %q", entry.Text)
	}

	if env.action.calls != 1 {
		t.Fatalf("expected action handler to run once, ran %d times", env.action.calls)
	}
	if !strings.Contains(env.action.logContent, "SM100") {
		t.Errorf("action handler should see the log including the new entry, got %q", env.action.logContent)
	}

	if len(env.notifier.subjects) != 1 || !strings.Contains(env.notifier.subjects[0], "SM100") {
		t.Errorf("expected one notification referencing the SID, got %v", env.notifier.subjects)
	}
}

func TestWebhookReceive_Base64Body(t *testing.T) {
	env := newWebhookEnv(t)

	fields := map[string]string{
		"From":       allowedSender,
		"MessageSid": "SM200",
		"Body":       "plain note",
	}
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(form.Encode()))

	req := httptest.NewRequest(http.MethodPost, "/webhook/sms", strings.NewReader(encoded))
	req.Header.Set("Content-Transfer-Encoding", "base64")
	req.Header.Set(SignatureHeader, signature.Sign(testWebhookURL, fields, testAuthToken))

	rec := serveWebhook(t, env, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	content, err := env.logs.Read(context.Background(), allowedSender)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(content, "SM200") {
		t.Errorf("expected log to contain message SID, got %q", content)
	}
}

func TestWebhookReceive_InvalidSignatureReturns403(t *testing.T) {
	env := newWebhookEnv(t)

	req := signedFormRequest(map[string]string{
		"From":       allowedSender,
		"MessageSid": "SM300",
		"Body":       "hello",
	})
	req.Header.Set(SignatureHeader, "bogus-signature")

	rec := serveWebhook(t, env, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "Invalid signature" {
		t.Errorf("unexpected body: %q", body)
	}

	content, _ := env.logs.Read(context.Background(), allowedSender)
	if content != "" {
		t.Errorf("rejected message must not be logged, got %q", content)
	}
}

func TestWebhookReceive_MissingFromReturns400(t *testing.T) {
	env := newWebhookEnv(t)

	req := signedFormRequest(map[string]string{
		"MessageSid": "SM400",
		"Body":       "hello",
	})

	rec := serveWebhook(t, env, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWebhookReceive_UnlistedSenderReturns403(t *testing.T) {
	env := newWebhookEnv(t)

	req := signedFormRequest(map[string]string{
		"From":       unlistedSender,
		"MessageSid": "SM500",
		"Body":       "hello",
	})

	rec := serveWebhook(t, env, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "Unauthorized" {
		t.Errorf("unexpected body: %q", body)
	}

	content, _ := env.logs.Read(context.Background(), unlistedSender)
	if content != "" {
		t.Errorf("rejected message must not be logged, got %q", content)
	}
}
