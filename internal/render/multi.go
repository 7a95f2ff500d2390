package render

// MultiSink fans each Display out to several sinks, e.g. a live
// terminal view plus a plain-text log file that only records the final
// transcript of each exchange.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks; Display and Close apply to all of them.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Display(html string) {
	for _, s := range m.sinks {
		s.Display(html)
	}
}

func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
