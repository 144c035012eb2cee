package userinteraction

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"research-client/internal/application/port/output"
	"research-client/internal/domain/entity"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

const (
	statusPrefix  = "Status: "
	restartPrompt = "Start new research? [y/N] "
)

var ErrInputClosed = errors.New("input closed")

type ReportRenderer interface {
	Render(w io.Writer, report *entity.Report) error
}

type Config struct {
	In       io.Reader
	Out      io.Writer
	NoColor  bool
	Renderer ReportRenderer
}

type palette struct {
	stage   *color.Color
	prompt  *color.Color
	info    *color.Color
	success *color.Color
	warn    *color.Color
	failure *color.Color
	dim     *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		stage:   color.New(color.FgCyan, color.Bold),
		prompt:  color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgBlue),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.stage, p.prompt, p.info, p.success, p.warn, p.failure, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

type lineResult struct {
	line string
	err  error
}

type ConsoleUserInteraction struct {
	in       io.Reader
	out      io.Writer
	colors   palette
	renderer ReportRenderer
	title    cases.Caser

	readOnce sync.Once
	lines    chan lineResult

	mu           sync.Mutex
	lastProgress string
}

func NewConsoleUserInteraction(cfg Config) *ConsoleUserInteraction {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = color.Output
	}
	return &ConsoleUserInteraction{
		in:       cfg.In,
		out:      cfg.Out,
		colors:   newPalette(cfg.NoColor),
		renderer: cfg.Renderer,
		title:    cases.Title(language.English),
		lines:    make(chan lineResult),
	}
}

func (u *ConsoleUserInteraction) AskQuery(ctx context.Context) (string, error) {
	for {
		u.colors.prompt.Fprint(u.out, "\nWhat would you like to research?\n> ")
		query, err := u.readLine(ctx)
		if err != nil {
			return "", err
		}
		if query != "" {
			return query, nil
		}
		u.colors.warn.Fprintln(u.out, "Please enter a research query.")
	}
}

// ReviewQuestions lets the user edit the generated questions before the
// task resumes. An empty line approves the current list.
func (u *ConsoleUserInteraction) ReviewQuestions(ctx context.Context, questions []string) ([]string, error) {
	current := append([]string(nil), questions...)

	u.printQuestions(current)
	u.printReviewHelp()

	for {
		u.colors.prompt.Fprint(u.out, "review> ")
		line, err := u.readLine(ctx)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return current, nil
		}

		next, msg := applyReviewCommand(current, line)
		if msg != "" {
			u.colors.warn.Fprintln(u.out, msg)
			u.printReviewHelp()
			continue
		}
		current = next
		u.printQuestions(current)
	}
}

func (u *ConsoleUserInteraction) ConfirmRestart(ctx context.Context) (bool, error) {
	u.colors.prompt.Fprint(u.out, "\n"+restartPrompt)
	answer, err := u.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (u *ConsoleUserInteraction) ShowStage(ctx context.Context, stage string) {
	u.mu.Lock()
	u.lastProgress = ""
	u.mu.Unlock()

	u.colors.stage.Fprintf(u.out, "\n━━━ %s ━━━\n", stage)
}

// ShowProgress prints a progress line unless it repeats the previous one.
func (u *ConsoleUserInteraction) ShowProgress(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if message == u.lastProgress {
		return
	}
	u.lastProgress = message
	u.colors.info.Fprintf(u.out, "  … %s\n", u.displayProgress(message))
}

func (u *ConsoleUserInteraction) ShowReport(ctx context.Context, report *entity.Report) {
	fmt.Fprintln(u.out)
	if u.renderer == nil {
		fmt.Fprintln(u.out, report.SummaryText())
		return
	}
	if err := u.renderer.Render(u.out, report); err != nil {
		u.colors.failure.Fprintf(u.out, "Failed to display report: %v\n", err)
		return
	}
	u.colors.success.Fprintln(u.out, "✓ Research complete")
}

func (u *ConsoleUserInteraction) ShowError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	u.colors.failure.Fprintln(u.out, "\n❌ Research Failed")
	fmt.Fprintln(u.out, errorMessage(err))
	u.colors.dim.Fprintln(u.out, "Start new research to try again.")
}

func (u *ConsoleUserInteraction) printQuestions(questions []string) {
	fmt.Fprintln(u.out, "\nResearch questions:")
	if len(questions) == 0 {
		u.colors.dim.Fprintln(u.out, "  (none, use add to create one)")
		return
	}
	for i, q := range questions {
		fmt.Fprintf(u.out, "  %d. %s\n", i+1, q)
	}
}

func (u *ConsoleUserInteraction) printReviewHelp() {
	u.colors.dim.Fprintln(u.out, "Commands: edit N <text> | add <text> | remove N | empty line to approve")
}

// displayProgress renders "Status: AWAITING_INPUT" as "Status: Awaiting Input".
func (u *ConsoleUserInteraction) displayProgress(message string) string {
	status, ok := strings.CutPrefix(message, statusPrefix)
	if !ok {
		return message
	}
	words := strings.ToLower(strings.ReplaceAll(status, "_", " "))
	return statusPrefix + u.title.String(words)
}

// readLine returns the next trimmed input line. A single goroutine owns the
// reader so a cancelled prompt does not lose the line typed afterwards.
func (u *ConsoleUserInteraction) readLine(ctx context.Context) (string, error) {
	u.readOnce.Do(func() {
		go u.scan()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-u.lines:
		if !ok {
			return "", ErrInputClosed
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}

func (u *ConsoleUserInteraction) scan() {
	defer close(u.lines)

	reader := bufio.NewReader(u.in)
	for {
		line, err := reader.ReadString('\n')
		if line != "" || err == nil {
			u.lines <- lineResult{line: line}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				u.lines <- lineResult{err: fmt.Errorf("failed to read user input: %w", err)}
			}
			return
		}
	}
}

func applyReviewCommand(questions []string, line string) ([]string, string) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "add":
		if rest == "" {
			return nil, "Nothing to add."
		}
		return append(questions, rest), ""

	case "edit":
		num, text, _ := strings.Cut(rest, " ")
		idx, msg := questionIndex(questions, num)
		if msg != "" {
			return nil, msg
		}
		next := append([]string(nil), questions...)
		next[idx] = strings.TrimSpace(text)
		return next, ""

	case "remove", "rm":
		idx, msg := questionIndex(questions, rest)
		if msg != "" {
			return nil, msg
		}
		next := append([]string(nil), questions[:idx]...)
		return append(next, questions[idx+1:]...), ""
	}

	return nil, fmt.Sprintf("Unknown command %q.", cmd)
}

func questionIndex(questions []string, raw string) (int, string) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(questions) {
		return 0, fmt.Sprintf("No question number %q.", raw)
	}
	return n - 1, ""
}

// errorMessage capitalizes the first letter of err for display.
func errorMessage(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
