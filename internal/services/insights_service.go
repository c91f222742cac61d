package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aramaea/aceso/internal/models"
)

var (
	ErrInsightsNotConfigured = errors.New("insights upstream not configured")
	ErrInsightsUpstream      = errors.New("insights upstream request failed")
	ErrInsightsLogsFailed    = errors.New("load logs for insights failed")
)

const (
	DefaultInsightsDays = 30
	MaxInsightsDays     = 90
)

type InsightsLogReader interface {
	ListByUserRange(userID uint, fromStart time.Time, toEnd time.Time) ([]models.CheckIn, error)
	ListChildren(checkInID uint) ([]models.ConditionEntry, []models.TriggerEntry, error)
}

// InsightsService is a stateless proxy: it aggregates recent log data
// into a compact context block and forwards it with the user's question
// to an external chat-completion API. No insight is ever stored.
type InsightsService struct {
	logs     InsightsLogReader
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func NewInsightsService(logs InsightsLogReader, endpoint string, apiKey string, model string) *InsightsService {
	return &InsightsService{
		logs:     logs,
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (service *InsightsService) Generate(userID uint, days int, question string, location *time.Location) (string, error) {
	if service.endpoint == "" || service.apiKey == "" {
		return "", ErrInsightsNotConfigured
	}
	if days <= 0 {
		days = DefaultInsightsDays
	}
	if days > MaxInsightsDays {
		days = MaxInsightsDays
	}

	contextBlock, err := service.buildContext(userID, days, location)
	if err != nil {
		return "", ErrInsightsLogsFailed
	}

	prompt := "You are a careful health-journaling assistant. Based only on the " +
		"check-in log below, describe notable symptom and trigger patterns in " +
		"plain language. Do not give medical advice or diagnoses.\n\n" + contextBlock
	userContent := strings.TrimSpace(question)
	if userContent == "" {
		userContent = "What patterns stand out in my recent check-ins?"
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: service.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: userContent},
		},
	})
	if err != nil {
		return "", ErrInsightsUpstream
	}

	request, err := http.NewRequest(http.MethodPost, service.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", ErrInsightsUpstream
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+service.apiKey)

	response, err := service.client.Do(request)
	if err != nil {
		return "", ErrInsightsUpstream
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", ErrInsightsUpstream
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return "", ErrInsightsUpstream
	}
	if len(parsed.Choices) == 0 {
		return "", ErrInsightsUpstream
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (service *InsightsService) buildContext(userID uint, days int, location *time.Location) (string, error) {
	toStart, toEnd := DayRange(time.Now(), location)
	fromStart := toStart.AddDate(0, 0, -(days - 1))

	entries, err := service.logs.ListByUserRange(userID, fromStart, toEnd)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Check-ins from the last %d days (%d total):\n", days, len(entries))
	for _, entry := range entries {
		fmt.Fprintf(&builder, "- %s %s", entry.Date.Format("2006-01-02"), entry.Mode)
		if entry.OverallSeverity != nil {
			fmt.Fprintf(&builder, ", severity %d/10", *entry.OverallSeverity)
		}
		if entry.Activity != "" {
			fmt.Fprintf(&builder, ", activity: %s", entry.Activity)
		}

		conditions, triggers, err := service.logs.ListChildren(entry.ID)
		if err != nil {
			return "", err
		}
		if len(conditions) > 0 {
			fmt.Fprintf(&builder, ", %d condition(s)", len(conditions))
		}
		for _, trigger := range triggers {
			if trigger.ValueLabel != "" {
				fmt.Fprintf(&builder, ", trigger %d=%s", trigger.TriggerID, trigger.ValueLabel)
			} else if trigger.NumericValue != nil {
				fmt.Fprintf(&builder, ", trigger %d=%g", trigger.TriggerID, *trigger.NumericValue)
			}
		}
		if strings.TrimSpace(entry.Notes) != "" {
			fmt.Fprintf(&builder, ", notes: %s", TrimNotes(entry.Notes))
		}
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
