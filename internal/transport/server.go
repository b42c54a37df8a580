package transport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// WebhookPath scopes the webhook route by bot token so only Telegram can
// reach it.
func WebhookPath(token string) string {
	return "/webhook/" + token
}

// Router serves the Telegram webhook endpoint. Update handling runs inline:
// replying after the handler returns is fine, and Telegram retries on 5xx.
func Router(bot *Bot) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post(WebhookPath(bot.Token()), func(w http.ResponseWriter, req *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
			log.Warn().Err(err).Msg("invalid webhook payload")
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		bot.HandleUpdate(update)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
