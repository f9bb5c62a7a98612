package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/program"
)

// StateChange is emitted on every accepted lifecycle transition.
type StateChange struct {
	SessionID uuid.UUID  `json:"session_id"`
	Program   program.ID `json:"program,omitempty"`
	From      State      `json:"from"`
	To        State      `json:"to"`
	At        time.Time  `json:"at"`
}

// Completion is emitted once when a session's program pipeline ends,
// whether it finished or failed. Err is nil on success.
type Completion struct {
	SessionID uuid.UUID       `json:"session_id"`
	Program   program.ID      `json:"program"`
	Result    *program.Result `json:"result"`
	Message   string          `json:"message"`
	Err       error           `json:"-"`
}

// Listener receives orchestrator events. Callbacks run on the
// orchestrator's goroutine, in some cases under its lock: they must not
// block or call back into the orchestrator.
type Listener interface {
	SessionStateChanged(StateChange)
	SessionCompleted(Completion)
}
