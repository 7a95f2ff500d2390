package transcript

import (
	"fmt"
	"strings"

	"docq-cli/internal/events"
)

// DefaultCollapseLimit is the tool-result length above which output is
// rendered inside a collapsed block.
const DefaultCollapseLimit = 200

// Phase tracks where a run is in its lifecycle.
type Phase int

const (
	// PhaseWorking means thinking/tool events may still arrive.
	PhaseWorking Phase = iota
	// PhaseAnswerStreaming means the final answer is arriving incrementally.
	PhaseAnswerStreaming
	// PhaseAnswered means a settled final answer was received.
	PhaseAnswered
	// PhaseFailed means the agent or transport reported an error.
	PhaseFailed
	// PhaseInterrupted means the stream closed without a terminal event.
	PhaseInterrupted
)

// step is the in-progress step under construction. Thinking text is
// carried structurally so a tool_start never has to recover it from
// already-rendered markdown.
type step struct {
	number    int
	thinking  string
	toolLines []string
}

// State folds stream events into an ordered transcript. One State is
// owned by exactly one run; a new run gets a fresh State.
type State struct {
	CompletedSteps []string
	current        step
	FinalAnswer    string
	ErrorText      string
	Phase          Phase
	collapseLimit  int
}

// NewState returns an empty run state. collapseLimit <= 0 selects
// DefaultCollapseLimit.
func NewState(collapseLimit int) *State {
	if collapseLimit <= 0 {
		collapseLimit = DefaultCollapseLimit
	}
	return &State{collapseLimit: collapseLimit}
}

// CurrentStepNumber reports the step the open buffer belongs to, 0 when
// none is open.
func (s *State) CurrentStepNumber() int {
	return s.current.number
}

// Terminal reports whether the run reached a settled end state.
func (s *State) Terminal() bool {
	return s.Phase == PhaseAnswered || s.Phase == PhaseFailed || s.Phase == PhaseInterrupted
}

// Apply folds one event into the state per the cumulative/delta contract.
// Unrecognized payloads are ignored.
func (s *State) Apply(ev events.Event) {
	switch p := ev.Payload.(type) {
	case events.ThinkingPayload:
		s.openStep(p.StepNumber)
		// Thinking content is cumulative: replace, never append.
		s.current.thinking = p.Content
	case events.ToolStartPayload:
		s.openStep(p.StepNumber)
		label := fmt.Sprintf("🔧 Running `%s`...", p.ToolName)
		if p.Progress != nil {
			label = fmt.Sprintf("🔧 Running `%s` (%d/%d)...", p.ToolName, p.Progress.Current, p.Progress.Total)
		}
		s.current.toolLines = append(s.current.toolLines, label)
	case events.ToolResultPayload:
		s.sealWithResult(p)
	case events.FinalAnswerPayload:
		if p.IsStreaming {
			// Cumulative: the content already holds everything so far.
			s.FinalAnswer = p.Content
			s.Phase = PhaseAnswerStreaming
		} else {
			s.FinalAnswer = FormatAnswer(p.Content)
			s.Phase = PhaseAnswered
		}
	case events.ErrorPayload:
		s.ErrorText = p.Message
		s.Phase = PhaseFailed
	}
}

// Fail moves the run to the failed phase, as if an error event arrived.
func (s *State) Fail(message string) {
	s.ErrorText = message
	s.Phase = PhaseFailed
}

// Interrupt marks a stream that closed without any terminal event, so
// the transcript never sits on the thinking placeholder forever.
func (s *State) Interrupt() {
	if s.Terminal() {
		return
	}
	s.Phase = PhaseInterrupted
}

// openStep seals any step buffered under a different number and opens a
// buffer for stepNumber. A buffer already open for the same number is
// kept as is.
func (s *State) openStep(stepNumber int) {
	if s.current.number == stepNumber {
		return
	}
	if s.current.number != 0 {
		if sealed := s.current.render(); sealed != "" {
			s.CompletedSteps = append(s.CompletedSteps, sealed)
		}
	}
	s.current = step{number: stepNumber}
}

// sealWithResult finalizes the current step with a tool result,
// regardless of whether the step was still streaming. The step text is
// rebuilt from the preserved thinking, a tool label, and the formatted
// result; the running-tool marker is superseded.
func (s *State) sealWithResult(p events.ToolResultPayload) {
	number := s.current.number
	if number == 0 {
		number = p.StepNumber
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Step %d**", number)
	if s.current.thinking != "" {
		b.WriteString("\n\n")
		b.WriteString(s.current.thinking)
	}
	fmt.Fprintf(&b, "\n\n🔧 `%s`\n\n", p.ToolName)
	b.WriteString(s.formatResult(p))
	s.CompletedSteps = append(s.CompletedSteps, b.String())
	s.current = step{}
}

func (s *State) formatResult(p events.ToolResultPayload) string {
	if p.IsError {
		return "❌ Error: " + p.Result
	}
	if len(p.Result) > s.collapseLimit {
		return fmt.Sprintf("<details>\n<summary>View output (%d chars)</summary>\n\n```\n%s\n```\n\n</details>", len(p.Result), p.Result)
	}
	return p.Result
}

// render produces the markdown for an in-progress step. Empty when no
// step is open.
func (st step) render() string {
	if st.number == 0 {
		return ""
	}
	parts := []string{fmt.Sprintf("**Step %d**", st.number)}
	if st.thinking != "" {
		parts = append(parts, st.thinking)
	}
	parts = append(parts, st.toolLines...)
	return strings.Join(parts, "\n\n")
}
