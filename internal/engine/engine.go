package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/joelprem743/telegram-excel-bot/internal/config"
	"github.com/joelprem743/telegram-excel-bot/internal/decoder"
	"github.com/joelprem743/telegram-excel-bot/internal/grid"
	"github.com/joelprem743/telegram-excel-bot/internal/helper"
	"github.com/joelprem743/telegram-excel-bot/internal/output"
	"github.com/joelprem743/telegram-excel-bot/internal/search"
	"github.com/joelprem743/telegram-excel-bot/internal/session"
)

// Document is a file delivery for the transport to send.
type Document struct {
	Name    string
	Caption string
	Data    []byte
}

// Reply is one outbound item: a plain message or a document.
type Reply struct {
	Text     string
	Document *Document
}

func message(format string, args ...interface{}) Reply {
	return Reply{Text: fmt.Sprintf(format, args...)}
}

// Engine drives each chat through upload, column pick, search, disambiguation
// and delivery. Every public method returns the replies to send and never
// lets an error escape to the transport; failures become user-facing messages
// and a state transition.
type Engine struct {
	store *session.Store
	cfg   config.EngineConfig
}

func New(cfg config.EngineConfig, store *session.Store) *Engine {
	return &Engine{store: store, cfg: cfg}
}

// Start resets the chat's session and prompts for a file.
func (e *Engine) Start(chatID int64) []Reply {
	e.store.Reset(chatID)
	return []Reply{message("Send an Excel file (.xls or .xlsx). I will strip formatting and process raw values.")}
}

// HandleDocument ingests an uploaded spreadsheet. An upload is accepted in
// any state and restarts the flow from column selection.
func (e *Engine) HandleDocument(chatID int64, fileName string, data []byte) []Reply {
	sess := e.store.Reset(chatID)

	g, err := decoder.Decode(data, fileName, decoder.Options{MaxRows: e.cfg.MaxRows})
	if err != nil {
		// Stay in AWAITING_FILE; the user re-uploads.
		log.Warn().Err(err).Int64("chat_id", chatID).Str("file", fileName).Msg("upload rejected")
		switch {
		case errors.Is(err, decoder.ErrUnsupportedFormat):
			return []Reply{message("Unsupported file type. Use .xls or .xlsx.")}
		case errors.Is(err, decoder.ErrEmptyWorkbook):
			return []Reply{message("Could not read headers or file is empty. Send another file.")}
		case errors.Is(err, decoder.ErrTooManyRows):
			return []Reply{message("That file is too large: %s. Send a smaller file.", err)}
		default:
			return []Reply{message("Error reading file: %s", err)}
		}
	}

	sess.Data = data
	sess.FileName = fileName
	sess.Columns = g.Width()
	sess.State = session.AwaitingColumn
	e.store.Touch(sess.ChatID)

	log.Info().Int64("chat_id", chatID).Str("session", sess.ID).Str("file", fileName).
		Int("columns", g.Width()).Int("rows", g.RowCount()).Msg("file loaded")

	var b strings.Builder
	fmt.Fprintf(&b, "File loaded. Found %d columns:\n\n", g.Width())
	for _, col := range grid.Columns(g) {
		fmt.Fprintf(&b, "%d. %s\n", col.Index, col.Label)
	}
	b.WriteString("\nSend column number to filter by.")
	return []Reply{{Text: b.String()}}
}

// HandleText routes a free-text message through the chat's current state.
func (e *Engine) HandleText(chatID int64, text string) []Reply {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "/start") {
		return e.Start(chatID)
	}
	if isCancel(text) {
		e.store.Delete(chatID)
		return []Reply{message("Operation cancelled. Send /start to begin again.")}
	}

	sess := e.store.Get(chatID)
	switch sess.State {
	case session.AwaitingFile:
		return []Reply{message("Please send an Excel file (.xls or .xlsx) first.")}
	case session.AwaitingColumn:
		return e.handleColumn(sess, text)
	case session.AwaitingQuery:
		return e.handleQuery(sess, text)
	case session.AwaitingSelection:
		return e.handleSelection(sess, text)
	default:
		return []Reply{message("I didn't understand that. Send /start to begin.")}
	}
}

// isCancel recognizes the cancellation command in any non-terminal state.
func isCancel(text string) bool {
	switch strings.ToLower(text) {
	case "/cancel", "cancel", "stop":
		return true
	}
	return false
}

func (e *Engine) handleColumn(sess *session.Session, text string) []Reply {
	n, err := strconv.Atoi(text)
	if err != nil {
		return []Reply{message("Send a valid column number (e.g. 3).")}
	}
	if n < 1 || n > sess.Columns {
		return []Reply{message("Invalid column number. Choose 1..%d", sess.Columns)}
	}

	g, replies := e.reload(sess)
	if g == nil {
		return replies
	}

	sess.Column = n - 1
	sess.State = session.AwaitingQuery
	e.store.Touch(sess.ChatID)

	label := grid.Columns(g)[sess.Column].Label
	return []Reply{message("Column %d selected (%s). Now send a substring to search for.", n, label)}
}

func (e *Engine) handleQuery(sess *session.Session, text string) []Reply {
	g, replies := e.reload(sess)
	if g == nil {
		return replies
	}

	candidates, err := search.Candidates(g, sess.Column, text, search.Options{
		Limit:         e.cfg.CandidateLimit,
		MinSimilarity: e.cfg.MinSimilarity,
	})
	if errors.Is(err, search.ErrEmptyQuery) {
		return []Reply{message("Send a non-empty substring to search for.")}
	}
	if err != nil {
		return e.fail(sess, err)
	}

	switch len(candidates) {
	case 0:
		// A normal terminal outcome, not an error.
		e.store.Delete(sess.ChatID)
		return []Reply{message("No column values contain '%s'. Send /start to search again.", text)}
	case 1:
		chosen := candidates[0]
		replies := []Reply{message("Found single match: %s. Filtering rows now...", helper.SanitizeValue(chosen))}
		return append(replies, e.deliver(sess, g, chosen)...)
	default:
		sess.Candidates = candidates
		sess.State = session.AwaitingSelection
		e.store.Touch(sess.ChatID)

		var b strings.Builder
		b.WriteString("Found multiple matches:\n")
		for i, v := range candidates {
			fmt.Fprintf(&b, "%d. %s\n", i+1, helper.SanitizeValue(v))
		}
		b.WriteString("\nSend the number of the correct value, or 0 to cancel.")
		return []Reply{{Text: b.String()}}
	}
}

func (e *Engine) handleSelection(sess *session.Session, text string) []Reply {
	n, err := strconv.Atoi(text)
	if err != nil {
		return []Reply{message("Send the number of the desired value (e.g. 2).")}
	}
	if n == 0 {
		e.store.Delete(sess.ChatID)
		return []Reply{message("Operation cancelled. Send /start to begin again.")}
	}
	if n < 1 || n > len(sess.Candidates) {
		return []Reply{message("Invalid selection. Send a number between 0 and %d.", len(sess.Candidates))}
	}

	g, replies := e.reload(sess)
	if g == nil {
		return replies
	}

	chosen := sess.Candidates[n-1]
	out := []Reply{message("You selected: %s. Filtering rows now...", helper.SanitizeValue(chosen))}
	return append(out, e.deliver(sess, g, chosen)...)
}

// deliver filters by the resolved value, serializes the result and ends the
// session whatever the outcome.
func (e *Engine) deliver(sess *session.Session, g *grid.Grid, chosen string) []Reply {
	data, count, err := output.Build(g, sess.Column, chosen)
	if err != nil {
		return e.fail(sess, err)
	}
	e.store.Delete(sess.ChatID)

	if count == 0 {
		return []Reply{message("No rows found for value '%s'.", helper.SanitizeValue(chosen))}
	}

	log.Info().Int64("chat_id", sess.ChatID).Str("session", sess.ID).
		Int("rows", count).Msg("filtered workbook delivered")

	return []Reply{{
		Document: &Document{
			Name:    helper.OutputFileName(sess.FileName),
			Caption: fmt.Sprintf("Filtered results: %d rows for '%s'.", count, helper.SanitizeValue(chosen)),
			Data:    data,
		},
	}}
}

// reload re-decodes the session's uploaded bytes. The bytes are the only
// retained copy of the workbook, so each step rebuilds its own grid. A nil
// grid means the failure replies should be returned as-is.
func (e *Engine) reload(sess *session.Session) (*grid.Grid, []Reply) {
	g, err := decoder.Decode(sess.Data, sess.FileName, decoder.Options{MaxRows: e.cfg.MaxRows})
	if err != nil {
		return nil, e.fail(sess, err)
	}
	return g, nil
}

// fail terminates the session after an unexpected mid-flow failure so no
// chat is left dangling in a half-built state.
func (e *Engine) fail(sess *session.Session, err error) []Reply {
	log.Error().Err(err).Int64("chat_id", sess.ChatID).Str("session", sess.ID).
		Str("state", sess.State.String()).Msg("processing failed")
	e.store.Delete(sess.ChatID)
	return []Reply{message("Something went wrong while processing your file. Send /start to try again.")}
}
