package line

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// Handler terminates the LINE webhook: signature check, event fan-in, reply
// delivery. Event processing is synchronous per request; the router
// serializes per user underneath.
type Handler struct {
	ChannelSecret string
	Client        *Client
	Router        *Router
}

func NewHandler(channelSecret string, client *Client, router *Router) *Handler {
	return &Handler{
		ChannelSecret: channelSecret,
		Client:        client,
		Router:        router,
	}
}

func (h *Handler) Callback(w http.ResponseWriter, req *http.Request) {
	cb, err := webhook.ParseRequest(h.ChannelSecret, req)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			log.Printf("webhook: invalid signature")
			w.WriteHeader(http.StatusBadRequest)
		} else {
			log.Printf("webhook: parse request: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusOK)

	for _, ev := range cb.Events {
		me, ok := ev.(webhook.MessageEvent)
		if !ok {
			continue
		}
		tm, ok := me.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}
		src, ok := me.Source.(webhook.UserSource)
		if !ok || src.UserId == "" {
			continue
		}

		reply := h.safeRoute(req.Context(), src.UserId, tm.Text)
		if reply == "" {
			continue
		}
		if err := h.Client.Reply(me.ReplyToken, reply); err != nil {
			log.Printf("webhook: reply to %s: %v", src.UserId, err)
		}
	}
}

// safeRoute guarantees some reply even when a handler path panics; the
// panic is logged with enough context to diagnose later.
func (h *Handler) safeRoute(ctx context.Context, userID, text string) (out string) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("webhook: panic handling message from %s (%q): %v", userID, text, p)
			out = msgInternalError()
		}
	}()
	return h.Router.Route(ctx, userID, text)
}
