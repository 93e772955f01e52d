package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"github.com/spendario/spendario/internal/utils"
	"github.com/spendario/spendario/pkg/calendar"
)

var (
	ErrNoAPIKey        = errors.New("OpenAI API key is not configured")
	ErrBadReply        = errors.New("completion reply is not usable")
	ErrNoTitle         = errors.New("no event title found in text")
	ErrNoStart         = errors.New("no start time found in text")
	ErrNothingToChange = errors.New("no changes found in text")
	ErrTargetNotFound  = errors.New("no matching event identified")
	ErrBadIndex        = errors.New("event number out of range")
)

// Low temperature keeps the extraction deterministic.
const completionTemperature = 0.1

// ChatClient is the slice of the OpenAI SDK the extractor needs.
// It is satisfied by *openai.Client.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Extractor turns free-form Italian text into structured calendar data.
type Extractor interface {
	// ExtractEvent reads the description of a new event. Missing end times are
	// defaulted to one hour after the start.
	ExtractEvent(ctx context.Context, text string) (calendar.EventDraft, error)
	// ExtractUpdate reads the changes requested for an existing event. Only
	// the fields mentioned in the text are set on the returned update.
	ExtractUpdate(ctx context.Context, text string, eventId string) (calendar.EventUpdate, error)
	// ResolveTarget matches the text against the candidate events and returns
	// the index of the one it describes.
	ResolveTarget(ctx context.Context, text string, candidates []calendar.Event) (int, error)
}

type ExtractorImpl struct {
	client ChatClient
	model  string
	loc    *time.Location
	clock  utils.Clock
}

// NewExtractor creates an Extractor backed by the given chat client. A nil
// client makes every operation fail with ErrNoAPIKey.
func NewExtractor(client ChatClient, model string, loc *time.Location, clock utils.Clock) *ExtractorImpl {
	return &ExtractorImpl{
		client: client,
		model:  model,
		loc:    loc,
		clock:  clock,
	}
}

type eventReply struct {
	Summary     string `json:"summary"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (e *ExtractorImpl) ExtractEvent(ctx context.Context, text string) (calendar.EventDraft, error) {
	now := e.clock.Now().In(e.loc)
	reply, err := e.complete(ctx, eventSystemPrompt(now), text)
	if err != nil {
		return calendar.EventDraft{}, err
	}

	var parsed eventReply
	if err := decodeReply(reply, &parsed); err != nil {
		log.Warnf("Unusable event extraction reply: %q", reply)
		return calendar.EventDraft{}, err
	}

	if strings.TrimSpace(parsed.Summary) == "" {
		return calendar.EventDraft{}, ErrNoTitle
	}
	if strings.TrimSpace(parsed.StartTime) == "" {
		return calendar.EventDraft{}, ErrNoStart
	}

	start, err := e.parseTime(parsed.StartTime)
	if err != nil {
		return calendar.EventDraft{}, fmt.Errorf("%w: %q", ErrNoStart, parsed.StartTime)
	}

	end, err := e.parseTime(parsed.EndTime)
	if err != nil {
		end = start.Add(time.Hour)
	}

	return calendar.EventDraft{
		Summary:     strings.TrimSpace(parsed.Summary),
		Start:       start,
		End:         end,
		Location:    strings.TrimSpace(parsed.Location),
		Description: strings.TrimSpace(parsed.Description),
	}, nil
}

// updateReply keeps every field nullable: null means "not mentioned" and is
// different from an explicit empty string.
type updateReply struct {
	Summary     *string `json:"summary"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

func (e *ExtractorImpl) ExtractUpdate(ctx context.Context, text string, eventId string) (calendar.EventUpdate, error) {
	now := e.clock.Now().In(e.loc)
	reply, err := e.complete(ctx, updateSystemPrompt(now), text)
	if err != nil {
		return calendar.EventUpdate{}, err
	}

	var parsed updateReply
	if err := decodeReply(reply, &parsed); err != nil {
		log.Warnf("Unusable update extraction reply: %q", reply)
		return calendar.EventUpdate{}, err
	}

	if parsed.Summary == nil && parsed.StartTime == nil && parsed.EndTime == nil &&
		parsed.Location == nil && parsed.Description == nil {
		return calendar.EventUpdate{}, ErrNothingToChange
	}

	update := calendar.EventUpdate{
		EventID:     eventId,
		Summary:     parsed.Summary,
		Location:    parsed.Location,
		Description: parsed.Description,
	}

	if parsed.StartTime != nil && strings.TrimSpace(*parsed.StartTime) != "" {
		start, err := e.parseTime(*parsed.StartTime)
		if err != nil {
			return calendar.EventUpdate{}, fmt.Errorf("%w: %q", ErrNoStart, *parsed.StartTime)
		}
		update.Start = &start
	}
	if parsed.EndTime != nil && strings.TrimSpace(*parsed.EndTime) != "" {
		// A new end time that does not parse is dropped rather than guessed.
		if end, err := e.parseTime(*parsed.EndTime); err == nil {
			update.End = &end
		}
	}

	return update, nil
}

var replyNumber = regexp.MustCompile(`\d+`)

func (e *ExtractorImpl) ResolveTarget(ctx context.Context, text string, candidates []calendar.Event) (int, error) {
	reply, err := e.complete(ctx, targetSystemPrompt(candidates, e.loc), text)
	if err != nil {
		return 0, err
	}

	reply = strings.ToLower(reply)
	if strings.Contains(reply, "non trovato") {
		return 0, ErrTargetNotFound
	}

	match := replyNumber.FindString(reply)
	if match == "" {
		return 0, ErrTargetNotFound
	}
	number, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrTargetNotFound, match)
	}

	index := number - 1
	if index < 0 || index >= len(candidates) {
		return 0, fmt.Errorf("%w: %d", ErrBadIndex, number)
	}

	return index, nil
}

func (e *ExtractorImpl) complete(ctx context.Context, systemPrompt string, text string) (string, error) {
	if e.client == nil {
		return "", ErrNoAPIKey
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: completionTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call completion backend: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrBadReply)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// decodeReply extracts the JSON object from a completion reply, tolerating
// prose the model may have wrapped around it.
func decodeReply(reply string, out any) error {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return fmt.Errorf("%w: no JSON object in reply", ErrBadReply)
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadReply, err)
	}
	return nil
}

var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (e *ExtractorImpl) parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty time value")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, e.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
