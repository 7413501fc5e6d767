// Package dialog holds the per-user conversation state machines.
// Each flow is an ordered list of steps; a state is the flow, the current step
// and the answers collected so far.
package dialog

import (
	"errors"
	"fmt"
	"time"
)

// Flow names a multi-step dialogue
type Flow string

const (
	FlowRegistration Flow = "registration"
	FlowScheduleEdit Flow = "schedule_edit"
	FlowBroadcast    Flow = "broadcast"
	FlowSearch       Flow = "search"
)

// Step names one prompt within a flow
type Step string

const (
	StepFullName Step = "full_name"
	StepCity     Step = "city"
	StepAge      Step = "age"
	StepPhone    Step = "phone"
	StepTelegram Step = "telegram"

	StepText     Step = "text"
	StepDays     Step = "days"
	StepTime     Step = "time"
	StepTimezone Step = "timezone"

	StepMessage Step = "message"
	StepQuery   Step = "query"
)

// transitions is the step order of every flow
var transitions = map[Flow][]Step{
	FlowRegistration: {StepFullName, StepCity, StepAge, StepPhone, StepTelegram},
	FlowScheduleEdit: {StepText, StepDays, StepTime, StepTimezone},
	FlowBroadcast:    {StepMessage},
	FlowSearch:       {StepQuery},
}

var (
	ErrUnknownFlow       = errors.New("unknown dialogue flow")
	ErrInvalidTransition = errors.New("invalid dialogue transition")
)

// State is a user's position in a flow
type State struct {
	Flow      Flow              `json:"flow"`
	Step      Step              `json:"step"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func steps(f Flow) []Step {
	return transitions[f]
}

// Begin returns the initial state of a flow
func Begin(f Flow, now time.Time) (State, error) {
	order := steps(f)
	if len(order) == 0 {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownFlow, f)
	}
	return State{Flow: f, Step: order[0], Data: map[string]string{}, UpdatedAt: now}, nil
}

// Advance records the answer for the current step and moves to the next one.
// done is true when the answer completed the flow; the returned state then holds all answers.
func (s State) Advance(answer string, now time.Time) (next State, done bool, err error) {
	order := steps(s.Flow)
	if len(order) == 0 {
		return s, false, fmt.Errorf("%w: %q", ErrUnknownFlow, s.Flow)
	}

	idx := -1
	for i, step := range order {
		if step == s.Step {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, false, fmt.Errorf("%w: %q has no step %q", ErrInvalidTransition, s.Flow, s.Step)
	}

	data := make(map[string]string, len(s.Data)+1)
	for k, v := range s.Data {
		data[k] = v
	}
	data[string(s.Step)] = answer

	next = State{Flow: s.Flow, Step: s.Step, Data: data, UpdatedAt: now}
	if idx == len(order)-1 {
		return next, true, nil
	}
	next.Step = order[idx+1]
	return next, false, nil
}

// Answer returns the value collected at step
func (s State) Answer(step Step) string {
	return s.Data[string(step)]
}
