package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/srg/flossctl/internal/bt"
	"github.com/srg/flossctl/internal/client"
	"github.com/srg/flossctl/internal/groutine"
)

const (
	defaultPrompt      = "floss> "
	defaultHistorySize = 1024
)

// Options configure a Shell. Manager, Adapter, Gatt and Context are
// required, everything else has a sensible fallback.
type Options struct {
	Manager bt.Manager
	Adapter bt.Adapter
	Gatt    bt.Gatt
	Context *client.Context

	// HCI is the adapter index adapter enable/disable acts on.
	HCI int32

	// In and Out default to os.Stdin and os.Stdout.
	In  io.Reader
	Out io.Writer

	Prompt      string
	Color       bool
	HistorySize uint32

	Logger *logrus.Logger
}

// palette holds the output colors. Disabled palettes still render, they
// just pass text through unstyled.
type palette struct {
	prompt *color.Color
	err    *color.Color
	tag    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		prompt: color.New(color.FgGreen, color.Bold),
		err:    color.New(color.FgRed),
		tag:    color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.prompt, p.err, p.tag} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Shell is the interactive console loop. It is single-goroutine on the
// command side; only the event drainer writes to Out concurrently.
type Shell struct {
	manager bt.Manager
	adapter bt.Adapter
	gatt    bt.Gatt
	ctx     *client.Context
	hci     int32

	in          io.Reader
	out         io.Writer
	prompt      string
	interactive bool
	colors      palette

	collector *client.EventCollector
	commands  map[string]*command
	order     []*command
	quit      bool

	logger *logrus.Logger
	log    *logrus.Entry
}

// NewShell validates the options and prepares the console. The event
// collector is created here but only starts consuming in Run.
func NewShell(opts Options) (*Shell, error) {
	switch {
	case opts.Manager == nil:
		return nil, errors.New("shell: manager is required")
	case opts.Adapter == nil:
		return nil, errors.New("shell: adapter is required")
	case opts.Gatt == nil:
		return nil, errors.New("shell: gatt is required")
	case opts.Context == nil:
		return nil, errors.New("shell: client context is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	log := logger.WithField("component", "shell")

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	historySize := opts.HistorySize
	if historySize == 0 {
		historySize = defaultHistorySize
	}

	collector, err := client.NewEventCollector(opts.Context.History(), historySize, func(err error) {
		log.WithError(err).Error("Event collector failure")
	})
	if err != nil {
		return nil, fmt.Errorf("shell: %w", err)
	}

	s := &Shell{
		manager:     opts.Manager,
		adapter:     opts.Adapter,
		gatt:        opts.Gatt,
		ctx:         opts.Context,
		hci:         opts.HCI,
		in:          in,
		out:         out,
		prompt:      prompt,
		interactive: isTerminal(in),
		colors:      newPalette(opts.Color),
		collector:   collector,
		logger:      logger,
		log:         log,
	}
	s.register()
	return s, nil
}

// isTerminal reports whether the reader is an interactive terminal.
// Piped input never gets a prompt.
func isTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run drives the console until quit, end of input or context
// cancellation. Live events are drained to Out between commands, the
// history feed is buffered for the events command.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.collector.Start(); err != nil {
		return fmt.Errorf("start event collector: %w", err)
	}
	defer func() {
		if err := s.collector.Stop(); err != nil {
			s.log.WithError(err).Debug("Event collector stop")
		}
	}()

	drainer := client.NewEventDrainer(ctx, s.ctx.Events(), s.logger, s.out, s.renderEvent)
	defer drainer.Wait()
	defer drainer.Cancel()

	lines := make(chan string)
	groutine.Go(ctx, "shell-reader", func(ctx context.Context) {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.log.WithError(err).Error("Input read failure")
		}
	})

	for {
		s.printPrompt()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			s.execute(line)
			if s.quit {
				return nil
			}
		}
	}
}

// execute dispatches a single command line. Failures are printed, never
// propagated: a bad command must not take the console down.
func (s *Shell) execute(line string) {
	fields := strings.Fields(line)
	cmd, ok := s.commands[fields[0]]
	if !ok {
		fmt.Fprintf(s.out, "Unknown command %q, try \"help\"\n", fields[0])
		return
	}
	if err := cmd.run(s, fields[1:]); err != nil {
		fmt.Fprintln(s.out, s.colors.err.Sprint("Error: ", err.Error()))
	}
}

func (s *Shell) printPrompt() {
	if s.interactive {
		fmt.Fprint(s.out, s.colors.prompt.Sprint(s.prompt))
	}
}

// renderEvent matches Event.String but styles the tag.
func (s *Shell) renderEvent(e client.Event) string {
	return fmt.Sprintf("%s [%s] %s", e.Time.Format("15:04:05.000"), s.colors.tag.Sprint(e.Tag), e.Message)
}
