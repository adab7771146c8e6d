// Package chatbot answers customer-care questions. The default responder
// is a small keyword table; with an API key configured, replies come from
// the Anthropic Messages API and fall back to the table on any failure.
package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Responder turns a customer message into a reply.
type Responder interface {
	Reply(ctx context.Context, message string) (string, error)
}

// New picks a responder from the environment: rule-based by default,
// API-backed with silent fallback when ANTHROPIC_API_KEY is set.
func New() Responder {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return Rules{}
	}
	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}
	return fallback{
		primary:   &API{Key: key, Model: model},
		secondary: Rules{},
	}
}

// Rules answers from a fixed keyword table. It never fails.
type Rules struct{}

func (Rules) Reply(_ context.Context, message string) (string, error) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "price") || strings.Contains(lower, "rates"):
		return "Aap product cards par price dekh sakte hain. Jo pasand aaye us par 'Buy on WhatsApp' dabayein.", nil
	case strings.Contains(lower, "delivery") || strings.Contains(lower, "ship"):
		return "Delivery details seller WhatsApp par confirm karega. Buy button se contact karein.", nil
	case strings.Contains(lower, "refund") || strings.Contains(lower, "return"):
		return "Return/Refund policy seller se WhatsApp par confirm hoti hai. Product details share kar dein.", nil
	default:
		return "Ji bilkul, main help kar deta hoon. Aap apna sawal detail me batayein ya product select karke Buy on WhatsApp use karein.", nil
	}
}

const systemPrompt = "You are a professional customer support agent for an online marketplace. " +
	"Answer briefly and helpfully in Hinglish/Urdu if the user writes that way. " +
	"If asked to purchase, instruct them to use the Buy button to contact via WhatsApp."

// API calls the Anthropic Messages endpoint.
type API struct {
	Key    string
	Model  string
	URL    string // defaults to the public endpoint
	Client *http.Client
}

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
	System      string       `json:"system"`
	Messages    []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *API) Reply(ctx context.Context, message string) (string, error) {
	url := a.URL
	if url == "" {
		url = "https://api.anthropic.com/v1/messages"
	}
	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	body, err := json.Marshal(apiRequest{
		Model:       a.Model,
		MaxTokens:   300,
		Temperature: 0.3,
		System:      systemPrompt,
		Messages:    []apiMessage{{Role: "user", Content: message}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.Key)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat api status %d", resp.StatusCode)
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Content) == 0 || out.Content[0].Text == "" {
		return "", errors.New("chat api returned empty reply")
	}
	return out.Content[0].Text, nil
}

// fallback tries primary and silently falls through to secondary.
type fallback struct {
	primary   Responder
	secondary Responder
}

func (f fallback) Reply(ctx context.Context, message string) (string, error) {
	if reply, err := f.primary.Reply(ctx, message); err == nil {
		return reply, nil
	}
	return f.secondary.Reply(ctx, message)
}
