package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/joelprem743/telegram-excel-bot/internal/config"
	"github.com/joelprem743/telegram-excel-bot/internal/engine"
	"github.com/joelprem743/telegram-excel-bot/internal/session"
	"github.com/joelprem743/telegram-excel-bot/internal/transport"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	// .env is optional; deployment platforms inject the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Msg("Error loading config")
		}
		cfg = config.Default()
	}

	if cfg.Telegram.Token == "" {
		log.Fatal().Msg("TOKEN not set. Set telegram.token in the config or the TOKEN environment variable")
	}
	if cfg.Telegram.WebhookURL == "" {
		log.Fatal().Msg("Webhook URL not set. Set telegram.webhook_url or the WEBHOOK_URL environment variable")
	}

	store := session.NewStore()
	eng := engine.New(cfg.Engine, store)

	bot, err := transport.NewBot(cfg.Telegram.Token, eng)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating Telegram bot")
	}
	if err := bot.RegisterWebhook(cfg.Telegram.WebhookURL); err != nil {
		log.Fatal().Err(err).Msg("Error registering webhook")
	}

	go expireSessions(store, cfg.SessionTTL())

	log.Info().Str("addr", cfg.Telegram.ListenAddr).Msg("Starting webhook server")
	if err := http.ListenAndServe(cfg.Telegram.ListenAddr, transport.Router(bot)); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// expireSessions drops sessions idle longer than the configured TTL so an
// abandoned chat does not pin its workbook bytes forever.
func expireSessions(store *session.Store, ttl time.Duration) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for range ticker.C {
		for _, s := range store.PruneStale(ttl) {
			log.Info().Int64("chat_id", s.ChatID).Str("session", s.ID).
				Str("state", s.State.String()).Msg("session expired")
		}
	}
}
