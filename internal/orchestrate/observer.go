package orchestrate

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Observer receives progress output and structured events from an
// orchestration run.
type Observer interface {
	// Printf emits a free-form progress line.
	Printf(format string, v ...interface{})

	// Event emits a structured event.
	Event(event Event)
}

// Event is one structured orchestration event.
type Event struct {
	Type      EventType
	State     string
	Message   string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType classifies orchestration events.
type EventType string

const (
	// EventStateEntered indicates the state machine advanced to a state.
	EventStateEntered EventType = "state.entered"
	// EventStateFailed indicates the transition into a state failed and
	// the run halted.
	EventStateFailed EventType = "state.failed"
	// EventRunCompleted indicates the run reached its terminal state.
	EventRunCompleted EventType = "run.completed"
	// EventRunWarning indicates a non-fatal condition the operator
	// should see, such as a version verification mismatch.
	EventRunWarning EventType = "run.warning"
)

// ConsoleObserver writes progress through the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates the default observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	parts := []string{string(event.Type)}
	if event.State != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.State))
	}
	parts = append(parts, event.Message)
	if len(event.Fields) > 0 {
		var fieldParts []string
		for k, v := range event.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, v))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}
	log.Print(strings.Join(parts, " "))
}
