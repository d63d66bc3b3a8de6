package model

import (
	"github.com/cloudwego/eino/schema"
)

// TurnState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
type TurnState struct {
	SessionID string
	Session   *Session // set by the session loader, read by later handlers
	FellBack  bool     // set when the generator node served the canned fallback
}

// TurnInput represents the input for processing one user turn.
type TurnInput struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// TurnContext flows along the graph edges while one turn is processed.
type TurnContext struct {
	Query   string
	Session *Session
	Signals Signals
	Rows    []Property
	History []*schema.Message
}
