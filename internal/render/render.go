package render

// HTMLFunc converts a markdown transcript into sanitized HTML. The
// conversion itself is an external collaborator; the identity function
// is a valid implementation for plain-text display.
type HTMLFunc func(markdown string) string

// Identity passes markdown through untouched.
func Identity(markdown string) string { return markdown }

// Sink displays the rendered transcript, replacing the previous view
// and keeping the latest content visible.
type Sink interface {
	Display(html string)
	Close() error
}
