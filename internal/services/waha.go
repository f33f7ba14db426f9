package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sampahku/internal/config"
)

// Messenger delivers WhatsApp messages
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// WahaService talks to a WAHA (WhatsApp HTTP API) instance
type WahaService struct {
	baseURL string
	apiKey  string
	session string
	client  *http.Client
	// pauses between seen, typing and send, so messages look typed by hand
	pauses [3]time.Duration
}

func NewWahaService(cfg config.WahaConfig) *WahaService {
	url := strings.TrimRight(cfg.BaseURL, "/")
	if url == "" {
		url = "http://waha:3000"
	}
	session := cfg.Session
	if session == "" {
		session = "default"
	}
	return &WahaService{
		baseURL: url,
		apiKey:  cfg.APIKey,
		session: session,
		client:  &http.Client{Timeout: 15 * time.Second},
		pauses:  [3]time.Duration{100 * time.Millisecond, 150 * time.Millisecond, 50 * time.Millisecond},
	}
}

func (s *WahaService) makeRequest(ctx context.Context, endpoint string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (s *WahaService) chatAction(ctx context.Context, endpoint, chatID string) error {
	return s.makeRequest(ctx, endpoint, map[string]string{
		"chatId":  chatID,
		"session": s.session,
	})
}

func (s *WahaService) sendText(ctx context.Context, chatID, text string) error {
	return s.makeRequest(ctx, "/api/sendText", map[string]string{
		"chatId":  chatID,
		"text":    text,
		"session": s.session,
	})
}

// NormalizeChatID normalizes WhatsApp chat IDs by adding required suffixes and standardizing country codes
func NormalizeChatID(chatID string) string {
	chatID = strings.TrimSpace(chatID)

	// If it's already a group ID, it's correct
	if strings.HasSuffix(chatID, "@g.us") {
		return chatID
	}

	chatID = strings.TrimSuffix(chatID, "@c.us")
	chatID = strings.TrimPrefix(chatID, "+")
	chatID = strings.NewReplacer(" ", "", "-", "").Replace(chatID)

	// Standardize Indonesian numbers starting with '0' to '62'
	if strings.HasPrefix(chatID, "0") {
		chatID = "62" + strings.TrimPrefix(chatID, "0")
	}

	return chatID + "@c.us"
}

// SendMessage sends a message with authentic behavior (seen -> typing -> stop typing -> send)
func (s *WahaService) SendMessage(ctx context.Context, chatID, text string) error {
	chatID = NormalizeChatID(chatID)

	steps := []struct {
		endpoint string
		what     string
	}{
		{"/api/sendSeen", "send seen"},
		{"/api/startTyping", "start typing"},
		{"/api/stopTyping", "stop typing"},
	}
	for i, step := range steps {
		if err := s.chatAction(ctx, step.endpoint, chatID); err != nil {
			return fmt.Errorf("failed to %s: %w", step.what, err)
		}
		if err := sleep(ctx, s.pauses[i]); err != nil {
			return err
		}
	}

	if err := s.sendText(ctx, chatID, text); err != nil {
		return fmt.Errorf("failed to send text: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
