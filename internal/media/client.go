// Package media implements the media-lookup collaborator against a
// Dialogflow v2 detect-intent REST endpoint.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"saludbot/core/config"
	"saludbot/internal/dialog"
	"saludbot/internal/topics"
)

// Client resolves media requests through detect-intent calls. It implements
// dialog.MediaSource.
type Client struct {
	endpoint     string
	projectID    string
	sessionID    string
	accessToken  string
	languageCode string
	httpClient   *http.Client
}

// NewClient builds a media client from configuration.
func NewClient(cfg config.MediaConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		projectID:    cfg.ProjectID,
		sessionID:    cfg.SessionID,
		accessToken:  cfg.AccessToken,
		languageCode: cfg.LanguageCode,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type detectIntentRequest struct {
	QueryInput struct {
		Text struct {
			Text         string `json:"text"`
			LanguageCode string `json:"languageCode"`
		} `json:"text"`
	} `json:"queryInput"`
}

type detectIntentResponse struct {
	QueryResult struct {
		FulfillmentMessages []struct {
			Card *struct {
				Title    string `json:"title"`
				ImageURI string `json:"imageUri"`
				Buttons  []struct {
					Text     string `json:"text"`
					Postback string `json:"postback"`
				} `json:"buttons"`
			} `json:"card"`
		} `json:"fulfillmentMessages"`
	} `json:"queryResult"`
}

// Lookup sends the user's text to the intent agent and extracts the card
// messages from the fulfillment. The card title doubles as the topic tag.
func (c *Client) Lookup(ctx context.Context, query string) ([]dialog.Card, error) {
	var reqBody detectIntentRequest
	reqBody.QueryInput.Text.Text = query
	reqBody.QueryInput.Text.LanguageCode = c.languageCode

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("media: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/projects/%s/agent/sessions/%s:detectIntent",
		c.endpoint, c.projectID, c.sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: %w: %w", dialog.ErrCollaborator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("media: %w: http %d: %s",
			dialog.ErrCollaborator, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed detectIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("media: decode response: %w", err)
	}

	var cards []dialog.Card
	for _, msg := range parsed.QueryResult.FulfillmentMessages {
		if msg.Card == nil {
			continue
		}
		card := dialog.Card{
			Topic:    topics.Topic(strings.ToLower(msg.Card.Title)),
			PhotoURL: msg.Card.ImageURI,
			Title:    msg.Card.Title,
		}
		for _, b := range msg.Card.Buttons {
			card.Buttons = append(card.Buttons, dialog.LinkButton{Label: b.Text, URL: b.Postback})
		}
		cards = append(cards, card)
	}
	return cards, nil
}
