package conversation

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Input is one user turn routed into the active flow. Exactly one field is
// meaningful per turn: Text for free text, Choice for an inline keyboard
// callback, Command for a slash command stripped of its slash.
type Input struct {
	Text    string
	Choice  string
	Command string
}

// Outcome tells the runner what to do with the session after a state handler
// returns.
type Outcome int

const (
	// Stay keeps the session in the current state, typically to re-prompt.
	Stay Outcome = iota
	// Next advances to the following state; past the last state it completes
	// the flow.
	Next
	// Done completes the flow and discards the session.
	Done
)

// StateHandler consumes one user turn in a given state. Handlers mutate the
// session scratch and talk to the user through whatever messenger they close
// over; the runner owns the session lifecycle.
type StateHandler func(ctx context.Context, session *Session, in Input) (Outcome, error)

// Flow is an ordered list of states. Begin runs on the entry command, before
// any user turn is consumed.
type Flow struct {
	Name   string
	Begin  func(ctx context.Context, session *Session) (Outcome, error)
	States []StateHandler
}

// Runner drives the registered flows against the session store.
type Runner struct {
	store Store
	flows map[string]Flow
}

func NewRunner(store Store, flows ...Flow) *Runner {
	byName := make(map[string]Flow, len(flows))
	for _, flow := range flows {
		byName[flow.Name] = flow
	}
	return &Runner{store: store, flows: byName}
}

// StartFlow begins the named flow for the user, replacing any session already
// active. The fresh session is stored only if Begin leaves the flow
// unfinished.
func (r *Runner) StartFlow(ctx context.Context, flowName string, userID int64, chatID int64) error {
	flow, ok := r.flows[flowName]
	if !ok {
		return fmt.Errorf("unknown flow: %s", flowName)
	}

	r.store.Clear(userID)
	log.Debugf("Starting flow %s for user %d", flowName, userID)

	session := &Session{UserID: userID, ChatID: chatID, Flow: flowName}
	outcome, err := flow.Begin(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to start flow %s: %w", flowName, err)
	}
	if outcome != Done {
		r.store.Put(session)
	}
	return nil
}

// Handle routes one user turn into the active flow. It reports false when the
// user has no active session, leaving the turn to the caller. A handler error
// discards the session before being propagated.
func (r *Runner) Handle(ctx context.Context, userID int64, in Input) (bool, error) {
	session, ok := r.store.Get(userID)
	if !ok {
		return false, nil
	}

	flow, ok := r.flows[session.Flow]
	if !ok || session.State < 0 || session.State >= len(flow.States) {
		r.store.Clear(userID)
		return false, fmt.Errorf("session of user %d points at unknown state %s/%d", userID, session.Flow, session.State)
	}

	outcome, err := flow.States[session.State](ctx, session, in)
	if err != nil {
		r.store.Clear(userID)
		return true, fmt.Errorf("flow %s failed in state %d: %w", session.Flow, session.State, err)
	}

	switch outcome {
	case Next:
		session.State++
		if session.State >= len(flow.States) {
			log.Debugf("Flow %s completed for user %d", session.Flow, userID)
			r.store.Clear(userID)
		} else {
			r.store.Put(session)
		}
	case Done:
		log.Debugf("Flow %s completed for user %d", session.Flow, userID)
		r.store.Clear(userID)
	default:
		r.store.Put(session)
	}
	return true, nil
}

// Cancel drops the user's session, reporting whether one was active. Accepted
// in every state of every flow.
func (r *Runner) Cancel(ctx context.Context, userID int64) bool {
	session, ok := r.store.Get(userID)
	if !ok {
		return false
	}
	log.Debugf("Cancelling flow %s for user %d", session.Flow, userID)
	r.store.Clear(userID)
	return true
}
