package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type represents a stream event type.
type Type string

const (
	Thinking    Type = "thinking"
	ToolStart   Type = "tool_start"
	ToolResult  Type = "tool_result"
	FinalAnswer Type = "final_answer"
	Error       Type = "error"
)

// ErrUnknownType marks a frame whose type is not part of the taxonomy.
// Callers skip these rather than aborting the stream.
var ErrUnknownType = errors.New("unknown event type")

// Event is the common envelope for decoded stream events.
type Event struct {
	Type    Type
	Payload any
}

// Progress is a current/total pair reported by long-running tools.
type Progress struct {
	Current int
	Total   int
}

// ThinkingPayload carries the agent's reasoning text for one step.
// Content is cumulative: each event supersedes the previous one for
// the same step.
type ThinkingPayload struct {
	StepNumber  int
	Content     string
	IsStreaming bool
}

// ToolStartPayload marks a tool invocation beginning within a step.
type ToolStartPayload struct {
	StepNumber int
	ToolName   string
	Progress   *Progress
}

// ToolResultPayload carries a finished tool invocation's output.
type ToolResultPayload struct {
	StepNumber int
	ToolName   string
	Result     string
	IsError    bool
}

// FinalAnswerPayload carries the run's answer text. Content is
// cumulative while IsStreaming; IsStreaming=false settles it.
type FinalAnswerPayload struct {
	Content     string
	IsStreaming bool
}

// ErrorPayload reports a run-terminating error from the agent.
type ErrorPayload struct {
	Message string
}

// Content, Message, and Result are pointers so an absent field is
// distinguishable from an explicit empty string: thinking and
// final_answer content is cumulative, so an empty value is a legal
// replacement, but a missing one is a malformed frame.
type wireEvent struct {
	Type         string    `json:"type"`
	StepNumber   int       `json:"step_number"`
	Content      *string   `json:"content"`
	Message      *string   `json:"message"`
	IsStreaming  bool      `json:"is_streaming"`
	ToolName     string    `json:"tool_name"`
	ToolProgress []float64 `json:"tool_progress"`
	Result       *string   `json:"result"`
	IsError      bool      `json:"is_error"`
}

// ParseFrame decodes one frame payload into a typed event. A missing
// step_number means step 1. Frames with an unrecognized type return
// ErrUnknownType; malformed or incomplete frames return a regular error.
func ParseFrame(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("decode frame: %w", err)
	}

	stepNumber := w.StepNumber
	if stepNumber <= 0 {
		stepNumber = 1
	}

	switch Type(w.Type) {
	case Thinking:
		if w.Content == nil {
			return Event{}, fmt.Errorf("thinking frame missing content")
		}
		return Event{Type: Thinking, Payload: ThinkingPayload{
			StepNumber:  stepNumber,
			Content:     *w.Content,
			IsStreaming: w.IsStreaming,
		}}, nil
	case ToolStart:
		if w.ToolName == "" {
			return Event{}, fmt.Errorf("tool_start frame missing tool_name")
		}
		payload := ToolStartPayload{StepNumber: stepNumber, ToolName: w.ToolName}
		if len(w.ToolProgress) == 2 {
			payload.Progress = &Progress{Current: int(w.ToolProgress[0]), Total: int(w.ToolProgress[1])}
		}
		return Event{Type: ToolStart, Payload: payload}, nil
	case ToolResult:
		if w.ToolName == "" {
			return Event{}, fmt.Errorf("tool_result frame missing tool_name")
		}
		if w.Result == nil {
			return Event{}, fmt.Errorf("tool_result frame missing result")
		}
		return Event{Type: ToolResult, Payload: ToolResultPayload{
			StepNumber: stepNumber,
			ToolName:   w.ToolName,
			Result:     *w.Result,
			IsError:    w.IsError,
		}}, nil
	case FinalAnswer:
		if w.Content == nil {
			return Event{}, fmt.Errorf("final_answer frame missing content")
		}
		return Event{Type: FinalAnswer, Payload: FinalAnswerPayload{
			Content:     *w.Content,
			IsStreaming: w.IsStreaming,
		}}, nil
	case Error:
		if w.Content == nil && w.Message == nil {
			return Event{}, fmt.Errorf("error frame missing content and message")
		}
		message := ""
		if w.Content != nil {
			message = *w.Content
		}
		if message == "" && w.Message != nil {
			message = *w.Message
		}
		return Event{Type: Error, Payload: ErrorPayload{Message: message}}, nil
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
}
