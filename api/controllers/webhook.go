package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/brewbot-backend/api/responses"
	"github.com/angelmondragon/brewbot-backend/api/validators"
	"github.com/angelmondragon/brewbot-backend/internal/conversation"
	pkgerrors "github.com/angelmondragon/brewbot-backend/pkg/errors"
	"github.com/angelmondragon/brewbot-backend/pkg/logger"
)

// EventRouter drives one inbound messaging event through the dialogue.
type EventRouter interface {
	HandleEvent(ctx context.Context, event conversation.Event) error
}

type eventGuard interface {
	MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
}

type webhookEnvelope struct {
	Object string         `json:"object" validate:"required"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID        string             `json:"id"`
	Time      int64              `json:"time"`
	Messaging []webhookMessaging `json:"messaging"`
}

type webhookMessaging struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message *struct {
		MID        string `json:"mid"`
		Text       string `json:"text"`
		QuickReply *struct {
			Payload string `json:"payload"`
		} `json:"quick_reply"`
	} `json:"message"`
	Postback *struct {
		Payload string `json:"payload"`
	} `json:"postback"`
}

// VerifyWebhook answers the Messenger platform subscription handshake: the
// challenge is echoed back only when the verify token matches.
func VerifyWebhook(verifyToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		mode := query.Get("hub.mode")
		token := query.Get("hub.verify_token")
		challenge := query.Get("hub.challenge")

		if mode == "subscribe" && token == verifyToken {
			responses.WriteText(w, http.StatusOK, challenge)
			return
		}
		responses.WriteText(w, http.StatusForbidden, "Forbidden")
	}
}

// ReceiveWebhook ingests a batch of messaging events. Entries are processed
// sequentially; a failure in one entry never blocks the rest, and the platform
// always gets a 200 so it does not retry the whole batch.
func ReceiveWebhook(router EventRouter, guard eventGuard, dedupTTL time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if router == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event router unavailable"))
			return
		}

		var envelope webhookEnvelope
		if err := validators.DecodeJSONBody(r, &envelope); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if envelope.Object != "page" {
			responses.WriteText(w, http.StatusNotFound, "Not Found")
			return
		}

		for _, entry := range envelope.Entry {
			processEntry(ctx, router, guard, dedupTTL, logg, entry)
		}

		responses.WriteText(w, http.StatusOK, "EVENT_RECEIVED")
	}
}

func processEntry(ctx context.Context, router EventRouter, guard eventGuard, dedupTTL time.Duration, logg *logger.Logger, entry webhookEntry) {
	defer func() {
		if rec := recover(); rec != nil && logg != nil {
			logg.Error(ctx, "webhook entry panicked", fmt.Errorf("panic: %v", rec))
		}
	}()

	if len(entry.Messaging) == 0 {
		return
	}
	msg := entry.Messaging[0]

	event := conversation.Event{SenderID: msg.Sender.ID}
	if msg.Message != nil {
		event.MessageID = msg.Message.MID
		event.Text = msg.Message.Text
		if msg.Message.QuickReply != nil {
			event.QuickReplyPayload = msg.Message.QuickReply.Payload
			// Tapping a quick reply echoes the button title as text.
			event.Text = ""
		}
	}
	if msg.Postback != nil {
		event.PostbackPayload = msg.Postback.Payload
	}

	if guard != nil && event.MessageID != "" {
		fresh, err := guard.MarkEventProcessed(ctx, event.MessageID, dedupTTL)
		if err != nil {
			if logg != nil {
				logg.Warn(ctx, "event dedup check failed")
			}
		} else if !fresh {
			return
		}
	}

	if err := router.HandleEvent(ctx, event); err != nil && logg != nil {
		logg.Error(ctx, "webhook entry failed", err)
	}
}
