package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"docq-cli/internal/events"

	"go.uber.org/zap"
)

const framePrefix = "data:"

// Decoder reads newline-delimited event frames from a byte stream and
// yields typed events. Lines without the frame prefix are ignored, and a
// frame that fails to decode is skipped so the stream keeps going. Frames
// split across reads are buffered by the scanner until the terminating
// newline arrives.
type Decoder struct {
	scanner   *bufio.Scanner
	logger    *zap.Logger
	anomalies int
}

// NewDecoder wraps a stream. Tool results can be large, so the scanner
// buffer allows frames up to 1 MiB.
func NewDecoder(r io.Reader, logger *zap.Logger) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{scanner: scanner, logger: logger}
}

// Next returns the next decoded event, io.EOF when the stream closes, or
// the underlying read error.
func (d *Decoder) Next() (events.Event, error) {
	for d.scanner.Scan() {
		line := d.scanner.Text()
		if !strings.HasPrefix(line, framePrefix) {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, framePrefix))
		if payload == "" {
			continue
		}
		ev, err := events.ParseFrame([]byte(payload))
		if err != nil {
			d.anomalies++
			if errors.Is(err, events.ErrUnknownType) {
				d.logger.Debug("skipping unknown event type", zap.Error(err))
			} else {
				d.logger.Debug("skipping malformed frame", zap.Error(err))
			}
			continue
		}
		return ev, nil
	}
	if err := d.scanner.Err(); err != nil {
		return events.Event{}, fmt.Errorf("read stream: %w", err)
	}
	return events.Event{}, io.EOF
}

// Anomalies reports how many frames were skipped so far.
func (d *Decoder) Anomalies() int {
	return d.anomalies
}
