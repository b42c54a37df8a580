package transport

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/joelprem743/telegram-excel-bot/internal/engine"
)

// Bot bridges Telegram updates and the filtering engine: it downloads
// uploaded documents, forwards events, and sends the engine's replies back.
// It also serializes updates per chat, so the engine never sees two messages
// for the same session at once.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *engine.Engine
	client *http.Client

	mu    sync.Mutex
	chats map[int64]*chatLock
}

// chatLock is a per-chat mutex with a waiter count, so idle entries can be
// evicted from the map instead of accumulating one per chat ever seen.
type chatLock struct {
	mu   sync.Mutex
	refs int
}

func NewBot(token string, eng *engine.Engine) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}
	return &Bot{
		api:    api,
		engine: eng,
		client: &http.Client{Timeout: 60 * time.Second},
		chats:  make(map[int64]*chatLock),
	}, nil
}

// RegisterWebhook points Telegram at publicURL + the token-scoped path.
func (b *Bot) RegisterWebhook(publicURL string) error {
	wh, err := tgbotapi.NewWebhook(publicURL + WebhookPath(b.api.Token))
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	log.Info().Str("url", publicURL+WebhookPath(b.api.Token)).Msg("webhook registered")
	return nil
}

func (b *Bot) Token() string { return b.api.Token }

// HandleUpdate processes one inbound update end to end. Updates for the same
// chat run strictly one at a time.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	release := b.lockChat(chatID)
	defer release()

	var replies []engine.Reply
	switch {
	case msg.Document != nil:
		replies = b.handleDocument(chatID, msg.Document)
	case msg.Text != "":
		replies = b.engine.HandleText(chatID, msg.Text)
	default:
		return
	}
	b.send(chatID, replies)
}

func (b *Bot) handleDocument(chatID int64, doc *tgbotapi.Document) []engine.Reply {
	name := doc.FileName
	if name == "" {
		name = "file.xlsx"
	}
	data, err := b.download(doc.FileID)
	if err != nil {
		// I/O failure fetching bytes is a boundary concern; the engine
		// never sees it.
		log.Error().Err(err).Int64("chat_id", chatID).Str("file", name).Msg("download failed")
		return []engine.Reply{{Text: "Could not download the file from Telegram. Please send it again."}}
	}
	return b.engine.HandleDocument(chatID, name, data)
}

func (b *Bot) download(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	resp, err := b.client.Get(file.Link(b.api.Token))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) send(chatID int64, replies []engine.Reply) {
	for _, r := range replies {
		var err error
		if r.Document != nil {
			doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
				Name:  r.Document.Name,
				Bytes: r.Document.Data,
			})
			doc.Caption = r.Document.Caption
			_, err = b.api.Send(doc)
		} else {
			_, err = b.api.Send(tgbotapi.NewMessage(chatID, r.Text))
		}
		if err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
		}
	}
}

// lockChat serializes handling for one chat and returns the release
// function. The map entry lives only while a handler holds or waits on it;
// the last release evicts it.
func (b *Bot) lockChat(chatID int64) func() {
	b.mu.Lock()
	l, ok := b.chats[chatID]
	if !ok {
		l = &chatLock{}
		b.chats[chatID] = l
	}
	l.refs++
	b.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		b.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.chats, chatID)
		}
		b.mu.Unlock()
	}
}
