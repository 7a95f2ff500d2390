package transcript

import "strings"

const interruptedMessage = "The stream ended before the agent finished. Partial progress is shown above."

// Markdown assembles the full transcript document: completed steps,
// then the in-progress step, then exactly one phase-dependent suffix.
// It is a pure read of the state, so re-rendering unchanged state
// produces byte-identical output.
func (s *State) Markdown() string {
	parts := make([]string, 0, len(s.CompletedSteps)+2)
	parts = append(parts, s.CompletedSteps...)
	if open := s.current.render(); open != "" {
		parts = append(parts, open)
	}
	parts = append(parts, s.suffix())
	return strings.Join(parts, "\n\n")
}

func (s *State) suffix() string {
	switch s.Phase {
	case PhaseAnswerStreaming:
		return "### Final Answer\n\n" + s.FinalAnswer
	case PhaseAnswered:
		return "### ✅ Final Answer\n\n" + s.FinalAnswer
	case PhaseFailed:
		return "### ❌ Error\n\n" + s.ErrorText
	case PhaseInterrupted:
		// A partially streamed answer stays visible; the interruption
		// note follows it instead of replacing it.
		if s.FinalAnswer != "" {
			return "### Final Answer\n\n" + s.FinalAnswer + "\n\n### ❌ Error\n\n" + interruptedMessage
		}
		return "### ❌ Error\n\n" + interruptedMessage
	default:
		return "_Thinking..._"
	}
}
