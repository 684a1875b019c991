package http

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/mdblog/blog/application"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-github/v68/github"
	"github.com/rs/zerolog/log"
)

// WebhookHandler rescans the content directory when the posts repository is pushed to.
type WebhookHandler struct {
	webhookSecret []byte
	scanner       application.Scanner
}

func NewWebhookHandler(secret string, scanner application.Scanner) (*WebhookHandler, error) {
	if secret == "" {
		return nil, errors.New("webhook secret is not set")
	}

	return &WebhookHandler{
		webhookSecret: []byte(secret),
		scanner:       scanner,
	}, nil
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook/git", h.HandleGitWebhook)
}

func (h *WebhookHandler) HandleGitWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, h.webhookSecret)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected webhook payload")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	eventType := github.WebHookType(r)
	if github.EventForType(eventType) == nil {
		log.Debug().Str("event", eventType).Msg("Ignoring unsupported webhook event")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		http.Error(w, "Invalid event", http.StatusBadRequest)
		return
	}

	switch evt := event.(type) {
	case *github.PushEvent:
		log.Info().
			Str("ref", evt.GetRef()).
			Str("after", evt.GetAfter()).
			Msg("Push received; rescanning posts")
		err = h.scanner.Scan()
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to rescan posts after push")
		http.Error(w, "Error handling event", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
