package testutils

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/mcuadros/go-defaults"
)

// TestingT is the subset of testing.T the asserters need.
type TestingT interface {
	Errorf(format string, args ...interface{})
}

// TextAssertOptions control how rendered console output is normalized
// before comparison. Tabwriter pads columns with trailing spaces, so
// trailing whitespace is ignored by default.
type TextAssertOptions struct {
	TrimSpace                bool `default:"true"`
	IgnoreTrailingWhitespace bool `default:"true"`
	IgnoreEmptyLines         bool `default:"false"`
	Colors                   bool `default:"false"`
}

// TextOption mutates TextAssertOptions.
type TextOption func(*TextAssertOptions)

// WithTrimSpace sets whether surrounding whitespace of the whole text
// is stripped before comparison.
func WithTrimSpace(trim bool) TextOption {
	return func(opts *TextAssertOptions) {
		opts.TrimSpace = trim
	}
}

// WithIgnoreTrailingWhitespace sets whether trailing whitespace on each
// line is ignored.
func WithIgnoreTrailingWhitespace(ignore bool) TextOption {
	return func(opts *TextAssertOptions) {
		opts.IgnoreTrailingWhitespace = ignore
	}
}

// WithIgnoreEmptyLines sets whether blank lines are dropped entirely.
func WithIgnoreEmptyLines(ignore bool) TextOption {
	return func(opts *TextAssertOptions) {
		opts.IgnoreEmptyLines = ignore
	}
}

// WithColors enables colored diff output with visible whitespace.
func WithColors(enable bool) TextOption {
	return func(opts *TextAssertOptions) {
		opts.Colors = enable
	}
}

// TextAsserter compares rendered console output against an expected
// layout and reports a unified diff on mismatch.
type TextAsserter struct {
	t       TestingT
	options TextAssertOptions
}

// NewTextAsserter creates a TextAsserter with console-friendly defaults.
func NewTextAsserter(t TestingT, opts ...TextOption) *TextAsserter {
	options := TextAssertOptions{}
	defaults.SetDefaults(&options)
	for _, opt := range opts {
		opt(&options)
	}
	return &TextAsserter{t: t, options: options}
}

// Assert fails the test when actual does not match expected after
// normalization.
func (ta *TextAsserter) Assert(actual, expected string) {
	if diff := ta.diff(actual, expected); diff != "" {
		ta.t.Errorf("Rendered output mismatch:\n%s", diff)
	}
}

func (ta *TextAsserter) diff(actual, expected string) string {
	normActual := ta.normalize(actual)
	normExpected := ta.normalize(expected)
	if normActual == normExpected {
		return ""
	}

	edits := myers.ComputeEdits("", normExpected, normActual)
	unified := fmt.Sprint(gotextdiff.ToUnified("expected", "actual", normExpected, edits))
	return ta.colorize(unified)
}

func (ta *TextAsserter) normalize(text string) string {
	if ta.options.TrimSpace {
		text = strings.TrimSpace(text)
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if ta.options.IgnoreEmptyLines && strings.TrimSpace(line) == "" {
			continue
		}
		if ta.options.IgnoreTrailingWhitespace {
			line = strings.TrimRight(line, " \t")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// colorize styles the unified diff and makes whitespace in changed
// lines visible.
func (ta *TextAsserter) colorize(diff string) string {
	if !ta.options.Colors {
		return diff
	}

	red := color.New(color.FgRed)
	red.EnableColor()
	green := color.New(color.FgGreen)
	green.EnableColor()
	cyan := color.New(color.FgCyan)
	cyan.EnableColor()

	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
			lines[i] = cyan.Sprint(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = red.Sprint(markWhitespace(line))
		case strings.HasPrefix(line, "+"):
			lines[i] = green.Sprint(markWhitespace(line))
		}
	}
	return strings.Join(lines, "\n")
}

// markWhitespace replaces spaces and tabs so padding differences show
// up in the diff.
func markWhitespace(line string) string {
	line = strings.ReplaceAll(line, " ", "·")
	return strings.ReplaceAll(line, "\t", "→")
}
