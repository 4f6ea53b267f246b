package messenger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/angelmondragon/brewbot-backend/internal/conversation"
	pkgerrors "github.com/angelmondragon/brewbot-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"recipient_id":"user-1","message_id":"mid.1"}`)),
		Header:     http.Header{},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("test-token",
		WithBaseURL("http://graph.test/v23.0"),
		WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClientSendTextRequest(t *testing.T) {
	var capturedURL string
	var payload map[string]any

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return okResponse(), nil
	})

	if err := client.SendText(context.Background(), "user-1", "Hello!"); err != nil {
		t.Fatalf("send text: %v", err)
	}
	if capturedURL != "http://graph.test/v23.0/me/messages?access_token=test-token" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if payload["messaging_type"] != "RESPONSE" {
		t.Fatalf("unexpected messaging type %v", payload["messaging_type"])
	}
	msg := payload["message"].(map[string]any)
	if msg["text"] != "Hello!" {
		t.Fatalf("unexpected text %v", msg["text"])
	}
}

func TestClientSendChoicesCapsOptionsAndTitles(t *testing.T) {
	var payload struct {
		Message struct {
			QuickReplies []quickReply `json:"quick_replies"`
		} `json:"message"`
	}

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return okResponse(), nil
	})

	choices := make([]conversation.Choice, 0, 13)
	for i := 0; i < 13; i++ {
		choices = append(choices, conversation.Choice{Title: "Option", Payload: "X"})
	}
	choices[0].Title = "Caramel Macchiato Supreme"

	if err := client.SendChoices(context.Background(), "user-1", "Pick one", choices); err != nil {
		t.Fatalf("send choices: %v", err)
	}
	if len(payload.Message.QuickReplies) != maxQuickReplies {
		t.Fatalf("expected %d quick replies, got %d", maxQuickReplies, len(payload.Message.QuickReplies))
	}
	first := payload.Message.QuickReplies[0].Title
	if first != "Caramel Macc…" {
		t.Fatalf("unexpected truncated title %q", first)
	}
	if got := len([]rune(first)); got > maxQuickReplyTitle {
		t.Fatalf("title still too long: %d runes", got)
	}
}

func TestClientSendChoicesKeepsShortTitles(t *testing.T) {
	var payload struct {
		Message struct {
			QuickReplies []quickReply `json:"quick_replies"`
		} `json:"message"`
	}

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return okResponse(), nil
	})

	err := client.SendChoices(context.Background(), "user-1", "Pick one", []conversation.Choice{
		{Title: "✓ Extra Shot", Payload: "ADDON_Extra%20Shot"},
	})
	if err != nil {
		t.Fatalf("send choices: %v", err)
	}
	if payload.Message.QuickReplies[0].Title != "✓ Extra Shot" {
		t.Fatalf("short title should pass through, got %q", payload.Message.QuickReplies[0].Title)
	}
}

func TestClientSendImageAttachment(t *testing.T) {
	var payload struct {
		Message struct {
			Attachment struct {
				Type    string `json:"type"`
				Payload struct {
					URL string `json:"url"`
				} `json:"payload"`
			} `json:"attachment"`
		} `json:"message"`
	}

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return okResponse(), nil
	})

	if err := client.SendImage(context.Background(), "user-1", "https://cdn.test/welcome.png"); err != nil {
		t.Fatalf("send image: %v", err)
	}
	if payload.Message.Attachment.Type != "image" {
		t.Fatalf("unexpected attachment type %q", payload.Message.Attachment.Type)
	}
	if payload.Message.Attachment.Payload.URL != "https://cdn.test/welcome.png" {
		t.Fatalf("unexpected image URL %q", payload.Message.Attachment.Payload.URL)
	}
}

func TestClientSendSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadRequest,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"Invalid OAuth access token."}}`)),
			Header:     http.Header{},
		}, nil
	})

	err := client.SendText(context.Background(), "user-1", "Hello!")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("unexpected error code: %v", err)
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank token")
	}
}
