package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"saludbot/core/config"
	"saludbot/internal/dialog"
	"saludbot/internal/session"
)

func TestGenerate(t *testing.T) {
	var gotAuth string
	var gotReq struct {
		Model    string            `json:"model"`
		Messages []session.Message `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Usa un peine fino."}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(config.GenerationConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
		Model:   "gpt-3.5-turbo",
	})

	history := []session.Message{{Role: session.RoleUser, Content: "¿cómo quito las liendres?"}}
	reply, err := c.Generate(context.Background(), history)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply != "Usa un peine fino." {
		t.Errorf("reply = %q", reply)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.Model != "gpt-3.5-turbo" || len(gotReq.Messages) != 1 {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(config.GenerationConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-3.5-turbo"})
	_, err := c.Generate(context.Background(), nil)
	if !errors.Is(err, dialog.ErrCollaborator) {
		t.Errorf("err = %v, want ErrCollaborator", err)
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(config.GenerationConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-3.5-turbo"})
	_, err := c.Generate(context.Background(), nil)
	if !errors.Is(err, dialog.ErrCollaborator) {
		t.Errorf("err = %v, want ErrCollaborator", err)
	}
}
