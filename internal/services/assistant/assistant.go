package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

const (
	UnavailableText = "The AI assistant is unavailable right now. Please try again later."
	UnsupportedText = "Only PDF and TXT resumes are supported."

	askMaxTokens    = 150
	reviewMaxTokens = 200
	// Resume text past this many runes is not sent to the model.
	resumeMaxRunes = 12000

	askSystemPrompt = "You are a friendly AI assistant for freelancers on a job marketplace. " +
		"Help with proposals, pricing, skills and career questions. Answer in 3-5 sentences."
	reviewPrompt = "You are an experienced recruiter. Review the resume below. " +
		"Start with a rating from 1 to 100, then give short, concrete tips to improve it.\n\nRESUME:\n%s"
)

var ErrEmptyPrompt = errors.New("assistant: empty prompt")

type Repository interface {
	CreateAIRequestLog(ctx context.Context, l *models.AIRequestLog) error
	ListAIRequestLogs(ctx context.Context, userID uuid.UUID, limit int) ([]models.AIRequestLog, error)
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Reply struct {
	Text        string `json:"text"`
	Unavailable bool   `json:"unavailable"`
	Usage       Usage  `json:"usage"`
}

// Service talks to the language model. A nil model makes every call return
// the unavailable reply.
type Service struct {
	model llms.Model
	repo  Repository
	log   logrus.FieldLogger
}

func NewService(model llms.Model, repo Repository, log logrus.FieldLogger) *Service {
	return &Service{model: model, repo: repo, log: log}
}

// NewGemini builds the Google AI model, or nil when no key is configured.
func NewGemini(ctx context.Context, apiKey, model string) (llms.Model, error) {
	if apiKey == "" {
		return nil, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	return llm, nil
}

func (s *Service) Ask(ctx context.Context, userID uuid.UUID, prompt string) (Reply, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Reply{}, ErrEmptyPrompt
	}
	msgs := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, askSystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}
	return s.generate(ctx, userID, "ask", prompt, msgs, askMaxTokens), nil
}

// ReviewResume extracts the text of a PDF or TXT resume and asks the model
// for a rating with tips.
func (s *Service) ReviewResume(ctx context.Context, userID uuid.UUID, filename string, r io.ReaderAt, size int64) (Reply, error) {
	var loader interface {
		Load(ctx context.Context) ([]schema.Document, error)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		loader = documentloaders.NewPDF(r, size)
	case ".txt":
		loader = documentloaders.NewText(io.NewSectionReader(r, 0, size))
	default:
		return Reply{Text: UnsupportedText}, nil
	}

	docs, err := loader.Load(ctx)
	if err != nil {
		s.log.WithError(err).WithField("file", filename).Warn("resume extraction failed")
		return Reply{Text: UnavailableText, Unavailable: true}, nil
	}
	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.PageContent)
		b.WriteString("\n")
	}
	text := truncateRunes(strings.TrimSpace(b.String()), resumeMaxRunes)
	if text == "" {
		return Reply{}, fmt.Errorf("%w: resume has no readable text", ErrEmptyPrompt)
	}

	prompt := fmt.Sprintf(reviewPrompt, text)
	msgs := []llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, prompt)}
	return s.generate(ctx, userID, "resume_review", "Resume review: "+filepath.Base(filename), msgs, reviewMaxTokens), nil
}

func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.AIRequestLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListAIRequestLogs(ctx, userID, limit)
}

func (s *Service) generate(ctx context.Context, userID uuid.UUID, kind, logPrompt string, msgs []llms.MessageContent, maxTokens int) Reply {
	entry := s.log.WithFields(logrus.Fields{"user_id": userID, "kind": kind})
	if s.model == nil {
		entry.Warn("language model not configured")
		return Reply{Text: UnavailableText, Unavailable: true}
	}

	resp, err := s.model.GenerateContent(ctx, msgs, llms.WithMaxTokens(maxTokens))
	if err != nil {
		entry.WithError(err).Warn("language model call failed")
		return Reply{Text: UnavailableText, Unavailable: true}
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		entry.Warn("language model returned no content")
		return Reply{Text: UnavailableText, Unavailable: true}
	}

	choice := resp.Choices[0]
	reply := Reply{Text: strings.TrimSpace(choice.Content), Usage: usageFrom(choice.GenerationInfo)}
	entry.WithField("total_tokens", reply.Usage.TotalTokens).Info("language model reply")

	rec := &models.AIRequestLog{
		UserID:           userID,
		Prompt:           logPrompt,
		Response:         reply.Text,
		PromptTokens:     reply.Usage.PromptTokens,
		CompletionTokens: reply.Usage.CompletionTokens,
		TotalTokens:      reply.Usage.TotalTokens,
	}
	if meta, err := json.Marshal(map[string]string{"kind": kind, "stop_reason": choice.StopReason}); err == nil {
		rec.Meta = datatypes.JSON(meta)
	}
	if err := s.repo.CreateAIRequestLog(ctx, rec); err != nil {
		entry.WithError(err).Warn("store ai request log")
	}
	return reply
}

// usageFrom reads token counts from the provider's generation info. Google
// reports input/output tokens, OpenAI style providers prompt/completion.
func usageFrom(info map[string]any) Usage {
	u := Usage{
		PromptTokens:     firstInt(info, "input_tokens", "PromptTokens", "prompt_tokens"),
		CompletionTokens: firstInt(info, "output_tokens", "CompletionTokens", "completion_tokens"),
		TotalTokens:      firstInt(info, "total_tokens", "TotalTokens"),
	}
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return u
}

func firstInt(info map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
