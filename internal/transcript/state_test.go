package transcript

import (
	"strings"
	"testing"

	"docq-cli/internal/events"
)

func thinking(step int, content string) events.Event {
	return events.Event{Type: events.Thinking, Payload: events.ThinkingPayload{StepNumber: step, Content: content, IsStreaming: true}}
}

func toolStart(step int, name string) events.Event {
	return events.Event{Type: events.ToolStart, Payload: events.ToolStartPayload{StepNumber: step, ToolName: name}}
}

func toolResult(step int, name, result string, isError bool) events.Event {
	return events.Event{Type: events.ToolResult, Payload: events.ToolResultPayload{StepNumber: step, ToolName: name, Result: result, IsError: isError}}
}

func TestStepBoundaryOnNumberChange(t *testing.T) {
	s := NewState(0)
	s.Apply(thinking(1, "A"))
	s.Apply(thinking(2, "B"))

	if len(s.CompletedSteps) != 1 {
		t.Fatalf("expected 1 completed step, got %d", len(s.CompletedSteps))
	}
	if !strings.Contains(s.CompletedSteps[0], "A") {
		t.Fatalf("completed step should contain A: %q", s.CompletedSteps[0])
	}
	if s.CurrentStepNumber() != 2 {
		t.Fatalf("expected current step 2, got %d", s.CurrentStepNumber())
	}
	doc := s.Markdown()
	if !strings.Contains(doc, "B") {
		t.Fatalf("current step B missing from document: %q", doc)
	}
	if strings.Count(doc, "A") != 1 {
		t.Fatalf("A should appear exactly once: %q", doc)
	}
}

func TestThinkingContentReplacesNotAppends(t *testing.T) {
	s := NewState(0)
	s.Apply(thinking(1, "par"))
	s.Apply(thinking(1, "partial thought"))
	s.Apply(thinking(1, "partial thought, complete"))

	doc := s.Markdown()
	if strings.Count(doc, "partial thought") != 1 {
		t.Fatalf("cumulative thinking duplicated: %q", doc)
	}
	if !strings.Contains(doc, "partial thought, complete") {
		t.Fatalf("latest thinking missing: %q", doc)
	}
}

func TestToolStartPreservesThinking(t *testing.T) {
	s := NewState(0)
	s.Apply(thinking(1, "deciding which tool to use"))
	s.Apply(toolStart(1, "extract_tables"))

	doc := s.Markdown()
	if !strings.Contains(doc, "deciding which tool to use") {
		t.Fatalf("thinking text lost after tool_start: %q", doc)
	}
	if !strings.Contains(doc, "extract_tables") {
		t.Fatalf("tool marker missing: %q", doc)
	}
	if len(s.CompletedSteps) != 0 {
		t.Fatalf("tool_start for same step must not seal: %d", len(s.CompletedSteps))
	}
}

func TestToolStartProgressPair(t *testing.T) {
	s := NewState(0)
	s.Apply(events.Event{Type: events.ToolStart, Payload: events.ToolStartPayload{
		StepNumber: 1,
		ToolName:   "split_pdf",
		Progress:   &events.Progress{Current: 2, Total: 5},
	}})
	if doc := s.Markdown(); !strings.Contains(doc, "(2/5)") {
		t.Fatalf("progress pair missing: %q", doc)
	}
}

func TestToolResultSealsStep(t *testing.T) {
	s := NewState(0)
	s.Apply(thinking(1, "A"))
	s.Apply(toolStart(1, "X"))
	s.Apply(toolResult(1, "X", "42", false))

	if len(s.CompletedSteps) != 1 {
		t.Fatalf("expected 1 completed step, got %d", len(s.CompletedSteps))
	}
	sealed := s.CompletedSteps[0]
	if !strings.Contains(sealed, "A") || !strings.Contains(sealed, "42") {
		t.Fatalf("sealed step should contain thinking and result: %q", sealed)
	}
	if s.CurrentStepNumber() != 0 {
		t.Fatalf("expected no open step, got %d", s.CurrentStepNumber())
	}
	if strings.Contains(sealed, "Running") {
		t.Fatalf("running marker should be superseded by the result: %q", sealed)
	}
}

func TestToolResultErrorLabel(t *testing.T) {
	s := NewState(0)
	s.Apply(toolResult(1, "ocr", "file not found", true))
	if doc := s.Markdown(); !strings.Contains(doc, "❌ Error: file not found") {
		t.Fatalf("error label missing: %q", doc)
	}
}

func TestToolResultCollapsesLongOutput(t *testing.T) {
	s := NewState(0)
	long := strings.Repeat("x", 201)
	s.Apply(toolResult(1, "ocr", long, false))
	doc := s.Markdown()
	if !strings.Contains(doc, "<details>") || !strings.Contains(doc, long) {
		t.Fatalf("expected collapsed block with full output: %q", doc)
	}

	s = NewState(0)
	s.Apply(toolResult(1, "ocr", strings.Repeat("x", 200), false))
	if doc := s.Markdown(); strings.Contains(doc, "<details>") {
		t.Fatalf("200 chars should render inline: %q", doc)
	}
}

func TestToolResultWithoutOpenStep(t *testing.T) {
	s := NewState(0)
	s.Apply(toolResult(3, "ocr", "done", false))
	if len(s.CompletedSteps) != 1 {
		t.Fatalf("expected sealed step, got %d", len(s.CompletedSteps))
	}
	if !strings.Contains(s.CompletedSteps[0], "Step 3") {
		t.Fatalf("expected step label from event: %q", s.CompletedSteps[0])
	}
}

func TestStreamingFinalAnswerIsCumulative(t *testing.T) {
	s := NewState(0)
	chunks := []string{"The doc", "The document has", "The document has 12 pages."}
	for _, chunk := range chunks {
		s.Apply(events.Event{Type: events.FinalAnswer, Payload: events.FinalAnswerPayload{Content: chunk, IsStreaming: true}})
		if s.FinalAnswer != chunk {
			t.Fatalf("live answer should equal latest cumulative content: %q vs %q", s.FinalAnswer, chunk)
		}
	}
	if s.Phase != PhaseAnswerStreaming {
		t.Fatalf("expected streaming phase, got %v", s.Phase)
	}
	if doc := s.Markdown(); strings.Contains(doc, "✅") {
		t.Fatalf("live answer must not carry settled framing: %q", doc)
	}
}

func TestSettledFinalAnswerFormatsStructuredContent(t *testing.T) {
	s := NewState(0)
	s.Apply(events.Event{Type: events.FinalAnswer, Payload: events.FinalAnswerPayload{
		Content:     `{"status":"success","summary":"done"}`,
		IsStreaming: false,
	}})
	if s.Phase != PhaseAnswered {
		t.Fatalf("expected answered phase, got %v", s.Phase)
	}
	doc := s.Markdown()
	if !strings.Contains(doc, "### ✅ Final Answer") {
		t.Fatalf("settled framing missing: %q", doc)
	}
	if !strings.Contains(doc, "done") {
		t.Fatalf("summary missing: %q", doc)
	}
}

func TestErrorEventLeavesStepsIntact(t *testing.T) {
	s := NewState(0)
	s.Apply(thinking(1, "A"))
	s.Apply(events.Event{Type: events.Error, Payload: events.ErrorPayload{Message: "backend exploded"}})
	if s.Phase != PhaseFailed {
		t.Fatalf("expected failed phase, got %v", s.Phase)
	}
	doc := s.Markdown()
	if !strings.Contains(doc, "### ❌ Error") || !strings.Contains(doc, "backend exploded") {
		t.Fatalf("error section missing: %q", doc)
	}
	if !strings.Contains(doc, "A") {
		t.Fatalf("existing step text must survive an error event: %q", doc)
	}
}

func TestInterruptIsTerminalAndVisible(t *testing.T) {
	s := NewState(0)
	s.Apply(thinking(1, "A"))
	s.Interrupt()
	if !s.Terminal() {
		t.Fatalf("interrupted state must be terminal")
	}
	doc := s.Markdown()
	if strings.Contains(doc, "Thinking...") {
		t.Fatalf("interrupted transcript must not show the processing placeholder: %q", doc)
	}
	if !strings.Contains(doc, "❌") {
		t.Fatalf("interrupted transcript needs a visible terminal section: %q", doc)
	}
}

func TestInterruptKeepsPartialStreamedAnswer(t *testing.T) {
	s := NewState(0)
	s.Apply(events.Event{Type: events.FinalAnswer, Payload: events.FinalAnswerPayload{Content: "the answer so far", IsStreaming: true}})
	s.Interrupt()
	if !s.Terminal() {
		t.Fatalf("interrupted state must be terminal")
	}
	doc := s.Markdown()
	if !strings.Contains(doc, "### Final Answer") || !strings.Contains(doc, "the answer so far") {
		t.Fatalf("partial answer must survive interruption: %q", doc)
	}
	if !strings.Contains(doc, "### ❌ Error") {
		t.Fatalf("interruption must still be visible: %q", doc)
	}
	if strings.Contains(doc, "✅") {
		t.Fatalf("interrupted answer must not carry settled framing: %q", doc)
	}
}

func TestInterruptDoesNotOverrideSettledAnswer(t *testing.T) {
	s := NewState(0)
	s.Apply(events.Event{Type: events.FinalAnswer, Payload: events.FinalAnswerPayload{Content: "done", IsStreaming: false}})
	s.Interrupt()
	if s.Phase != PhaseAnswered {
		t.Fatalf("interrupt must not override a settled answer, got %v", s.Phase)
	}
}
