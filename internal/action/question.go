package action

import (
	"context"
	"fmt"

	"github.com/oguzkose/sms-notes-service/internal/logstore"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
)

// CommandQuestion is the token the question handler registers under.
const CommandQuestion = "question"

const promptTemplate = `You are a personal assistant with access to the user's note history. Your job is to help them recall information they've stored - facts, reminders, and notes about people, places, things, events, and ideas. You can also make inferences based on all the facts when needed to add additional context and insight.

The notes are stored as SMS messages in a tab-delimited log with these fields:
timestamp, message_sid, to_number, location, actions, num_media, media_keys, message_text

The "message_text" field contains the actual note content. Pay close attention to names, descriptions, dates, locations, and any identifying details.

Here is the complete note history:
--- NOTES ---
%s
--- END NOTES ---

The user is asking:
%s

Instructions:
- Search through all notes to find relevant information
- If you find a match, provide the specific details from the note(s)
- Include the date/timestamp when the note was recorded if it helps provide context
- If multiple notes are relevant, synthesize the information
- If you can't find relevant information, say so clearly
- Be concise and direct - the user wants facts, not lengthy explanations
- If the question is ambiguous, make reasonable assumptions and note them`

type llmClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type notifier interface {
	Send(ctx context.Context, subject, body string, attachment []byte, filename string) bool
}

// QuestionHandler answers a question about the sender's note history: it
// embeds the full log and the question in a fixed prompt, calls the model,
// saves a transcript and emails the answer.
type QuestionHandler struct {
	llm      llmClient
	notifier notifier
}

func NewQuestionHandler(llm llmClient, n notifier) *QuestionHandler {
	return &QuestionHandler{llm: llm, notifier: n}
}

// Handle implements HandlerFunc. A model or transport failure is the
// handler's failure; the main log was already written before dispatch, so
// nothing here can corrupt it.
func (h *QuestionHandler) Handle(ctx context.Context, actx *Context) (string, error) {
	logContent := actx.LogContent
	if logContent == "" {
		logContent = "(empty log)"
	}

	question := actx.MessageText
	if question == "" {
		question = "Summarize the log"
	}

	prompt := fmt.Sprintf(promptTemplate, logContent, question)

	answer, err := h.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("model inference: %w", err)
	}

	logger.Infof("Q: %s", question)
	logger.Infof("A: %.200s", answer)

	h.saveTranscript(ctx, actx, question, prompt, answer)

	subject := fmt.Sprintf("AI ASSISTANT: Answer to: %s", question)
	if len(question) > 50 {
		subject = fmt.Sprintf("AI ASSISTANT: Answer to: %s...", question[:50])
	}

	body := fmt.Sprintf(`Question received at %s from %s:

Q: %s

A: %s

---
Message SID: %s
`,
		actx.Timestamp.UTC().Format(logstore.TimeFormat), actx.From, question, answer, actx.MessageSID)

	h.notifier.Send(ctx, subject, body, nil, "")

	return answer, nil
}

// saveTranscript writes the Q&A markdown side-record. Failures are logged and
// absorbed: the transcript is secondary to the answer.
func (h *QuestionHandler) saveTranscript(ctx context.Context, actx *Context, question, prompt, answer string) {
	key := fmt.Sprintf("qa/%s_qa.md", actx.MessageSID)

	content := fmt.Sprintf(`# Q&A Response

## Metadata
- **Timestamp:** %s
- **Message SID:** %s
- **From:** %s
- **To:** %s
- **Location:** %s

## Question
%s

## Prompt
`+"```\n%s\n```"+`

## Answer
%s
`,
		actx.Timestamp.UTC().Format(logstore.TimeFormat),
		actx.MessageSID,
		actx.From,
		actx.To,
		actx.Location,
		question,
		prompt,
		answer,
	)

	if err := actx.Store.Put(ctx, key, []byte(content), "text/markdown"); err != nil {
		logger.Errorf("Error saving Q&A transcript: %v", err)
		return
	}

	logger.Infof("Saved Q&A to %s", key)
}
