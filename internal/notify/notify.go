// Package notify delivers fire-and-forget user notifications (toasts) to the
// active surface: the terminal for one-shot commands, the status bar for the TUI.
package notify

// Kind classifies a notification.
type Kind int

const (
	KindError Kind = iota
	KindWarning
	KindInfo
	KindSuccess
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindWarning:
		return "warning"
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Sink consumes notifications. Implementations must not block the caller.
type Sink interface {
	Notify(kind Kind, msg string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(kind Kind, msg string)

// Notify calls f.
func (f SinkFunc) Notify(kind Kind, msg string) {
	f(kind, msg)
}

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Kind, string) {})
