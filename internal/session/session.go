package session

import (
	"github.com/google/uuid"
)

// State is where one chat stands in the filtering conversation.
type State int

const (
	AwaitingFile State = iota
	AwaitingColumn
	AwaitingQuery
	AwaitingSelection
)

func (s State) String() string {
	switch s {
	case AwaitingFile:
		return "AWAITING_FILE"
	case AwaitingColumn:
		return "AWAITING_COLUMN"
	case AwaitingQuery:
		return "AWAITING_QUERY"
	case AwaitingSelection:
		return "AWAITING_SELECTION"
	default:
		return "UNKNOWN"
	}
}

// Session is the per-chat conversational state. The uploaded bytes are the
// only retained copy of the workbook; each step re-decodes them so no stale
// grid outlives a step. Terminal transitions remove the session from the
// store instead of parking it in a terminal state.
type Session struct {
	ID         string
	ChatID     int64
	State      State
	FileName   string
	Data       []byte
	Columns    int      // header width captured at upload
	Column     int      // selected column, 0-based
	Candidates []string // ranked values awaiting a pick
}

func newSession(chatID int64) *Session {
	return &Session{
		ID:     uuid.NewString(),
		ChatID: chatID,
		State:  AwaitingFile,
	}
}
