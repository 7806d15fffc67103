package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kettari/games-bot/internal/entity"
	"github.com/kettari/games-bot/internal/parser"
)

const systemMessage = `
Проанализируй HTML документ, который начинается после строки HTML-ДОКУМЕНТ.
Найди в документе расписание настольных ролевых игр. Не включай заголовки страницы, анонсы и баннеры.

Найди для каждой игры атрибуты:
title - название игры
date - дата и время игры в формате ISO 8601 с таймзоной Москвы (+03:00); если время не указано, используй 18:00
system - игровая система, например "D&D 5e" или "Call of Cthulhu", пустая строка если неизвестна
free - число свободных мест, 0 если мест нет, null если неизвестно
total - всего мест, null если неизвестно
url - ссылка для записи на игру, пустая строка если её нет

Верни результат в виде валидного JSON, без своих комментариев, пример:

{
	"data": [
		{
			"title": "Название игры 1",
			"date": "2025-10-07T19:00:00+03:00",
			"system": "Call of Cthulhu",
			"free": 0,
			"total": 5,
			"url": "https://t.me/club"
		}
	]
}

HTML-ДОКУМЕНТ`

// maxDocument caps the HTML sent to the model, in bytes.
const maxDocument = 120_000

// ErrEmptyAnswer is returned when the model answers without usable sessions.
var ErrEmptyAnswer = errors.New("assistant returned no sessions")

type answer struct {
	Data []item `json:"data"`
}

type item struct {
	Title  string `json:"title" validate:"required"`
	Date   string `json:"date" validate:"required"`
	System string `json:"system"`
	Free   *int   `json:"free" validate:"omitempty,min=0"`
	Total  *int   `json:"total" validate:"omitempty,min=0"`
	URL    string `json:"url" validate:"omitempty,url"`
}

// Assistant asks an OpenAI model to extract sessions when the heuristics fail.
type Assistant struct {
	openAIApiKey  string
	languageModel string
	profile       *parser.Profile
	validate      *validator.Validate
	now           func() time.Time
}

func NewAssistant(openAIApiKey, languageModel string, profile *parser.Profile) *Assistant {
	if profile == nil {
		profile = parser.DefaultProfile()
	}
	return &Assistant{
		openAIApiKey:  openAIApiKey,
		languageModel: languageModel,
		profile:       profile,
		validate:      validator.New(),
		now:           time.Now,
	}
}

func (a *Assistant) Extract(ctx context.Context, html string) ([]entity.Session, error) {
	content, err := a.complete(ctx, truncate(html, maxDocument))
	if err != nil {
		return nil, err
	}
	return a.parseAnswer(content)
}

func (a *Assistant) complete(ctx context.Context, document string) (string, error) {
	client := openai.NewClient(option.WithAPIKey(a.openAIApiKey))

	slog.Info("sending the page to OpenAI", "model", a.languageModel, "size", len(document))

	prompt := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(systemMessage + "\n" + document),
	}
	params := openai.ChatCompletionNewParams{
		Messages: prompt,
		Model:    a.languageModel,
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		var e *openai.Error
		if errors.As(err, &e) {
			switch e.StatusCode {
			case http.StatusTooManyRequests:
				return "", errors.New("OpenAI API error: 429 Too many requests")
			case http.StatusForbidden:
				return "", errors.New("OpenAI API error: 403 Forbidden")
			}
		}
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyAnswer
	}
	return completion.Choices[0].Message.Content, nil
}

// parseAnswer decodes the model answer, skipping items that fail validation.
func (a *Assistant) parseAnswer(content string) ([]entity.Session, error) {
	var ans answer
	if err := json.Unmarshal([]byte(stripFences(content)), &ans); err != nil {
		return nil, fmt.Errorf("failed to decode assistant answer: %w", err)
	}

	now := a.now()
	var sessions []entity.Session
	for _, it := range ans.Data {
		if err := a.validate.Struct(it); err != nil {
			slog.Warn("skipping invalid assistant item", "title", it.Title, "err", err)
			continue
		}
		match, ok := a.profile.RecognizeAttributeDate(it.Date, now)
		if !ok {
			slog.Warn("skipping assistant item without date", "title", it.Title, "date", it.Date)
			continue
		}
		title := strings.TrimSpace(it.Title)
		system := strings.TrimSpace(it.System)
		if system == "" {
			system = a.profile.GuessSystem(title)
		}
		free := it.Free
		if free == nil {
			free = entity.IntPtr(1)
		}
		sessions = append(sessions, entity.Session{
			ID:         entity.NewID(match.Instant, title, it.URL),
			Date:       match.Instant,
			Title:      title,
			System:     system,
			SpotsTotal: it.Total,
			SpotsFree:  free,
			SignupURL:  it.URL,
		})
	}
	if len(sessions) == 0 {
		return nil, ErrEmptyAnswer
	}
	slog.Debug("assistant extracted sessions", "sessions_count", len(sessions))
	return sessions, nil
}

// stripFences removes a markdown code block around the JSON answer.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
