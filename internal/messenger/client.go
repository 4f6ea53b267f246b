package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/brewbot-backend/internal/conversation"
	pkgerrors "github.com/angelmondragon/brewbot-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://graph.facebook.com/v23.0"
	responseBodyReadLimit int64 = 1024

	// Messenger quick-reply limits. Anything beyond these is rejected by the
	// Send API, so we trim client-side.
	maxQuickReplies     = 11
	maxQuickReplyTitle  = 13
	truncatedTitleRunes = 12
)

var errAccessTokenRequired = errors.New("page access token is required")

// Client talks to the Facebook Graph Send API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Graph API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the default send timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the Send API client given a page access token.
func NewClient(accessToken string, opts ...Option) (*Client, error) {
	trimmedToken := strings.TrimSpace(accessToken)
	if trimmedToken == "" {
		return nil, errAccessTokenRequired
	}

	client := &Client{
		accessToken: trimmedToken,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type recipient struct {
	ID string `json:"id"`
}

type quickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

type message struct {
	Text         string          `json:"text,omitempty"`
	QuickReplies []quickReply    `json:"quick_replies,omitempty"`
	Attachment   json.RawMessage `json:"attachment,omitempty"`
}

type sendRequest struct {
	Recipient     recipient `json:"recipient"`
	MessagingType string    `json:"messaging_type"`
	Message       message   `json:"message"`
}

// SendText delivers a plain text message.
func (c *Client) SendText(ctx context.Context, userID, text string) error {
	return c.send(ctx, userID, message{Text: text})
}

// SendChoices delivers a text message with quick-reply buttons. Options past
// the platform cap are dropped and long titles are ellipsized to fit.
func (c *Client) SendChoices(ctx context.Context, userID, text string, choices []conversation.Choice) error {
	if len(choices) > maxQuickReplies {
		choices = choices[:maxQuickReplies]
	}

	replies := make([]quickReply, 0, len(choices))
	for _, choice := range choices {
		replies = append(replies, quickReply{
			ContentType: "text",
			Title:       fitTitle(choice.Title),
			Payload:     choice.Payload,
		})
	}
	return c.send(ctx, userID, message{Text: text, QuickReplies: replies})
}

// SendImage delivers an image attachment by URL.
func (c *Client) SendImage(ctx context.Context, userID, imageURL string) error {
	attachment, err := json.Marshal(map[string]any{
		"type": "image",
		"payload": map[string]any{
			"url":         imageURL,
			"is_reusable": true,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal image attachment")
	}
	return c.send(ctx, userID, message{Attachment: attachment})
}

// CarouselCard is one card in a generic-template carousel.
type CarouselCard struct {
	Title    string
	Subtitle string
	ImageURL string
	Choices  []conversation.Choice
}

// SendCarousel delivers a horizontally scrollable generic template.
func (c *Client) SendCarousel(ctx context.Context, userID string, cards []CarouselCard) error {
	if len(cards) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "carousel requires at least one card")
	}

	elements := make([]map[string]any, 0, len(cards))
	for _, card := range cards {
		buttons := make([]map[string]any, 0, len(card.Choices))
		for _, choice := range card.Choices {
			buttons = append(buttons, map[string]any{
				"type":    "postback",
				"title":   fitTitle(choice.Title),
				"payload": choice.Payload,
			})
		}
		element := map[string]any{"title": card.Title}
		if card.Subtitle != "" {
			element["subtitle"] = card.Subtitle
		}
		if card.ImageURL != "" {
			element["image_url"] = card.ImageURL
		}
		if len(buttons) > 0 {
			element["buttons"] = buttons
		}
		elements = append(elements, element)
	}

	attachment, err := json.Marshal(map[string]any{
		"type": "template",
		"payload": map[string]any{
			"template_type": "generic",
			"elements":      elements,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal carousel attachment")
	}
	return c.send(ctx, userID, message{Attachment: attachment})
}

func (c *Client) send(ctx context.Context, userID string, msg message) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "messenger client not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient user ID is required")
	}

	payload, err := json.Marshal(sendRequest{
		Recipient:     recipient{ID: userID},
		MessagingType: "RESPONSE",
		Message:       msg,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal send request")
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s",
		strings.TrimRight(c.baseURL, "/"), url.QueryEscape(c.accessToken))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build send request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute send request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			"send request failed")
	}
	return nil
}

func fitTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxQuickReplyTitle {
		return title
	}
	return string(runes[:truncatedTitleRunes]) + "…"
}
