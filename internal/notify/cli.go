package notify

import "github.com/cristianoliveira/proposal-tracker/internal/colors"

// ColorOutput is the console printer behind CLISink.
type ColorOutput interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

// colorsOutput adapts the colors package to ColorOutput.
type colorsOutput struct{}

func (colorsOutput) Error(msgs ...string)   { colors.Error(msgs...) }
func (colorsOutput) Warning(msgs ...string) { colors.Warning(msgs...) }
func (colorsOutput) Info(msgs ...string)    { colors.LogInfo(msgs...) }
func (colorsOutput) Success(msgs ...string) { colors.Success(msgs...) }

// CLISink prints notifications to the terminal.
type CLISink struct {
	out ColorOutput
}

// NewCLISink creates a sink printing through out.
func NewCLISink(out ColorOutput) *CLISink {
	return &CLISink{out: out}
}

// NewDefaultCLISink creates a sink printing through the colors package.
// Info goes to stderr so JSON output on stdout stays parseable.
func NewDefaultCLISink() *CLISink {
	return NewCLISink(colorsOutput{})
}

// Notify prints msg with the style of kind.
func (s *CLISink) Notify(kind Kind, msg string) {
	switch kind {
	case KindError:
		s.out.Error(msg)
	case KindWarning:
		s.out.Warning(msg)
	case KindSuccess:
		s.out.Success(msg)
	default:
		s.out.Info(msg)
	}
}
