// Package ai extracts word pairs from free text with the Claude API.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lexidrill/lexidrill/internal/db"
)

// RequestTimeout bounds a single extraction call. HTTP servers fronting an
// import must allow writes for longer than this.
const RequestTimeout = 60 * time.Second

// PairExtractor turns document text into english/native word pairs
type PairExtractor interface {
	ExtractPairs(ctx context.Context, text, nativeLanguage string) ([]db.Pair, error)
}

// ClaudeClient implements PairExtractor using Claude API
type ClaudeClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

// AIError represents an error from the AI API
type AIError struct {
	Message     string
	StatusCode  int
	RequestID   string
	RawResponse string
}

func (e *AIError) Error() string {
	msg := fmt.Sprintf("AI API error (%d): %s", e.StatusCode, e.Message)
	if e.RequestID != "" {
		msg += fmt.Sprintf("\n  request-id: %s", e.RequestID)
	}
	if e.RawResponse != "" {
		msg += fmt.Sprintf("\n  raw: %s", e.RawResponse)
	}
	return msg
}

// IsAIError checks if an error is an AIError
func IsAIError(err error) bool {
	var aiErr *AIError
	return errors.As(err, &aiErr)
}

// NewClaudeClient creates a new Claude API client. Extra options are passed
// to the SDK, e.g. a base URL for tests.
func NewClaudeClient(apiKey string, opts ...option.RequestOption) (*ClaudeClient, error) {
	if err := validateAPIKey(apiKey); err != nil {
		return nil, err
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	return &ClaudeClient{
		client: &client,
		model:  anthropic.ModelClaudeSonnet4_5_20250929,
	}, nil
}

// ExtractPairs asks Claude for the english/native pairs found in text.
// Pairs come back normalized and without duplicates.
func (c *ClaudeClient) ExtractPairs(ctx context.Context, text, nativeLanguage string) ([]db.Pair, error) {
	if strings.TrimSpace(text) == "" {
		return []db.Pair{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4000,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(text, nativeLanguage))),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &AIError{
				Message:     apiErr.Error(),
				StatusCode:  apiErr.StatusCode,
				RequestID:   apiErr.RequestID,
				RawResponse: apiErr.RawJSON(),
			}
		}
		return nil, &AIError{
			Message:    fmt.Sprintf("failed to call Claude API: %v", err),
			StatusCode: 500,
		}
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return []db.Pair{}, nil
	}

	pairs, err := parsePairsResponse(b.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse word pairs: %w", err)
	}

	return deduplicatePairs(sanitizePairs(pairs)), nil
}

// buildPrompt constructs the prompt for Claude
func buildPrompt(text, nativeLanguage string) string {
	if nativeLanguage == "" {
		nativeLanguage = "the learner's native language"
	}

	return fmt.Sprintf(`You are a language learning assistant. The following notes were written by a %[1]s speaker learning English.
Extract every English word or short phrase in them together with its %[1]s translation.

Return ONLY a JSON array of objects with the keys "english" and "native", for example:
[{"english": "apple", "native": "яблоко"}]

Rules:
- "native" is the %[1]s translation; translate it yourself if the notes only give the English
- Skip lesson titles, section headers and full sentences
- Do not repeat a pair

Document content:
%[2]s`, nativeLanguage, text)
}

// parsePairsResponse decodes Claude's JSON answer, handling optional
// markdown code block wrappers.
func parsePairsResponse(response string) ([]db.Pair, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var pairs []db.Pair
	if err := json.Unmarshal([]byte(response), &pairs); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	return pairs, nil
}

// sanitizePairs normalizes both sides and drops pairs with a blank side
func sanitizePairs(pairs []db.Pair) []db.Pair {
	cleaned := make([]db.Pair, 0, len(pairs))
	for _, p := range pairs {
		p.English = db.NormalizeText(p.English)
		p.Native = db.NormalizeText(p.Native)
		if p.English != "" && p.Native != "" {
			cleaned = append(cleaned, p)
		}
	}
	return cleaned
}

// deduplicatePairs removes duplicate entries while preserving order
func deduplicatePairs(pairs []db.Pair) []db.Pair {
	seen := make(map[db.Pair]bool, len(pairs))
	unique := make([]db.Pair, 0, len(pairs))

	for _, p := range pairs {
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}

	return unique
}

// validateAPIKey checks if the API key is valid
func validateAPIKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	return nil
}
