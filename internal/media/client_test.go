package media

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"saludbot/core/config"
	"saludbot/internal/dialog"
	"saludbot/internal/topics"
)

func TestLookup(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq struct {
		QueryInput struct {
			Text struct {
				Text         string `json:"text"`
				LanguageCode string `json:"languageCode"`
			} `json:"text"`
		} `json:"queryInput"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"queryResult": {
				"fulfillmentMessages": [
					{"text": {"text": ["sin tarjeta"]}},
					{"card": {
						"title": "Pediculosis",
						"imageUri": "https://img/piojos.png",
						"buttons": [{"text": "Ver más", "postback": "https://salud.example/piojos"}]
					}},
					{"card": {"title": "Parasitismo"}}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(config.MediaConfig{
		ProjectID:    "salud-proj",
		Endpoint:     srv.URL,
		SessionID:    "sesion-1",
		AccessToken:  "tok",
		LanguageCode: "es",
	})

	cards, err := c.Lookup(context.Background(), "muéstrame una imagen de piojos")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if gotPath != "/v2/projects/salud-proj/agent/sessions/sesion-1:detectIntent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotReq.QueryInput.Text.LanguageCode != "es" {
		t.Errorf("language = %q", gotReq.QueryInput.Text.LanguageCode)
	}

	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(cards))
	}
	first := cards[0]
	if first.Topic != topics.Pediculosis || first.PhotoURL != "https://img/piojos.png" || first.Title != "Pediculosis" {
		t.Errorf("card = %+v", first)
	}
	if len(first.Buttons) != 1 || first.Buttons[0].URL != "https://salud.example/piojos" {
		t.Errorf("buttons = %+v", first.Buttons)
	}
	// Cards without image or buttons still come through for text degradation.
	if cards[1].Topic != topics.Parasitismo || cards[1].PhotoURL != "" || len(cards[1].Buttons) != 0 {
		t.Errorf("bare card = %+v", cards[1])
	}
}

func TestLookupHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "permission denied", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(config.MediaConfig{ProjectID: "p", Endpoint: srv.URL, SessionID: "s"})
	_, err := c.Lookup(context.Background(), "imagen")
	if !errors.Is(err, dialog.ErrCollaborator) {
		t.Errorf("err = %v, want ErrCollaborator", err)
	}
}
