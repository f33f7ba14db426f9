package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahku/internal/config"
)

func TestNormalizeChatID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"phone number without country code", "081246361829", "6281246361829@c.us"},
		{"phone number with country code", "6281246361829", "6281246361829@c.us"},
		{"group id", "120363407813232111@g.us", "120363407813232111@g.us"},
		{"phone number without country code, with suffix", "081246361829@c.us", "6281246361829@c.us"},
		{"phone number with country code, with suffix", "6281246361829@c.us", "6281246361829@c.us"},
		{"plus prefix and separators", "+62 812-4636-1829", "6281246361829@c.us"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeChatID(tt.input))
		})
	}
}

func TestWahaSendMessage(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		text  map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		if r.URL.Path == "/api/sendText" {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&text))
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	waha := NewWahaService(config.WahaConfig{BaseURL: srv.URL, APIKey: "secret", Session: "rt01"})
	waha.pauses = [3]time.Duration{}

	require.NoError(t, waha.SendMessage(context.Background(), "0812000111", "halo"))

	assert.Equal(t, []string{"/api/sendSeen", "/api/startTyping", "/api/stopTyping", "/api/sendText"}, paths)
	assert.Equal(t, "62812000111@c.us", text["chatId"])
	assert.Equal(t, "halo", text["text"])
	assert.Equal(t, "rt01", text["session"])
}

func TestWahaSendMessageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session not started", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	waha := NewWahaService(config.WahaConfig{BaseURL: srv.URL})
	waha.pauses = [3]time.Duration{}

	err := waha.SendMessage(context.Background(), "0812000111", "halo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send seen")
	assert.Contains(t, err.Error(), "422")
}
