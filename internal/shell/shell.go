// Package shell provides the interactive KPI analysis REPL.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/dashboard"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/kpi"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/session"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// Loader reads a data file into a table.
type Loader func(path string) (*table.Table, error)

// Renderer writes an analysis result.
type Renderer func(w io.Writer, res *analysis.Result) error

// ErrExit is returned by Eval for the exit command.
var ErrExit = errors.New("exit")

// Session manages an interactive shell session over a workspace.
type Session struct {
	Workspace *session.Workspace
	Load      Loader
	Render    Renderer

	// Selection is the KPI configuration applied by "show". Its target is
	// kept per file in the workspace instead.
	Selection analysis.Config

	CommandHistory []string
	HistoryFile    string
	StartTime      time.Time

	// KnownCommands is the list of shell commands for completion.
	KnownCommands []string
}

// NewSession creates a new interactive session.
func NewSession(ws *session.Workspace, load Loader) (*Session, error) {
	if ws == nil {
		ws = session.NewWorkspace()
	}
	if load == nil {
		return nil, fmt.Errorf("shell loader not configured")
	}

	home, _ := os.UserHomeDir()
	histFile := filepath.Join(home, ".kpi", "shell_history")

	// Ensure parent dir exists
	os.MkdirAll(filepath.Dir(histFile), 0755)

	return &Session{
		Workspace: ws,
		Load:      load,
		Render: func(w io.Writer, res *analysis.Result) error {
			return dashboard.Render(w, res, dashboard.Options{MaxRows: 20})
		},
		HistoryFile: histFile,
		StartTime:   time.Now(),
		KnownCommands: []string{
			"load", "files", "use", "columns",
			"kpi", "time", "rule", "unit", "target",
			"show", "status", "reset", "history", "help", "exit", "quit",
		},
	}, nil
}

// Run starts the REPL loop. Blocks until 'exit' or Ctrl+D.
func (s *Session) Run(ctx context.Context) error {
	completer := readline.NewPrefixCompleter(s.buildCompleter()...)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "kpi> ",
		HistoryFile:     s.HistoryFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("KPI Analyzer: interactive shell")
	fmt.Println("Type 'help' for commands, 'exit' to quit.")
	fmt.Println()

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		output, err := s.Eval(ctx, line)
		if errors.Is(err, ErrExit) {
			elapsed := time.Since(s.StartTime)
			fmt.Printf("\nSession ended. %d commands run in %s.\n",
				len(s.CommandHistory)-1, formatDuration(elapsed))
			return nil
		}
		if output != "" {
			fmt.Print(output)
			if !strings.HasSuffix(output, "\n") {
				fmt.Println()
			}
		}
		if err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", err)
		}
	}

	return nil
}

// Eval runs a single command line and returns its output.
func (s *Session) Eval(ctx context.Context, line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", nil
	}
	s.CommandHistory = append(s.CommandHistory, line)

	var out bytes.Buffer
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), args[0]))

	var err error
	switch strings.ToLower(args[0]) {
	case "exit", "quit":
		return "", ErrExit
	case "help":
		s.printHelp(&out)
	case "history":
		for i, cmd := range s.CommandHistory {
			fmt.Fprintf(&out, "  %d  %s\n", i+1, cmd)
		}
	case "load":
		err = s.load(&out, args[1:])
	case "files":
		s.files(&out)
	case "use":
		err = s.use(&out, rest)
	case "columns":
		err = s.columns(&out)
	case "kpi":
		err = s.setKPI(&out, rest)
	case "time":
		err = s.setTime(&out, rest)
	case "rule":
		err = s.setRule(&out, rest)
	case "unit":
		err = s.setUnit(&out, rest)
	case "target":
		err = s.setTarget(&out, rest)
	case "status":
		err = s.status(&out)
	case "show":
		err = s.show(&out)
	case "reset":
		s.Workspace.Reset()
		s.Selection = analysis.Config{}
		fmt.Fprintln(&out, "Workspace cleared.")
	default:
		err = fmt.Errorf("unknown command %q, type 'help'", args[0])
	}
	return out.String(), err
}

// LoadFiles adds files to the workspace as the "load" command does. Paths
// may contain spaces.
func (s *Session) LoadFiles(w io.Writer, paths ...string) error {
	return s.load(w, paths)
}

func (s *Session) load(w io.Writer, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("usage: load <file> [file...]")
	}
	for _, p := range paths {
		t, err := s.Load(p)
		if err != nil {
			return fmt.Errorf("could not load %s: %w", p, err)
		}
		e := s.Workspace.Add(t)
		fmt.Fprintf(w, "Loaded %s (%d rows, %d columns)\n", e.Name, e.Rows, e.Columns)
	}
	return s.ensureSelection(w)
}

func (s *Session) files(w io.Writer) {
	list := s.Workspace.List()
	if len(list) == 0 {
		fmt.Fprintln(w, "No files loaded.")
		return
	}
	for i, e := range list {
		marker := " "
		if e.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d  %s  (%d rows)\n", marker, i+1, e.Name, e.Rows)
	}
}

func (s *Session) use(w io.Writer, ref string) error {
	if ref == "" {
		return fmt.Errorf("usage: use <name|number>")
	}
	e, err := s.Workspace.Use(ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Active file: %s\n", e.Name)
	return s.ensureSelection(w)
}

// ensureSelection keeps the KPI and time selections valid for the active
// table, falling back to the default KPI and no time axis.
func (s *Session) ensureSelection(w io.Writer) error {
	e, err := s.Workspace.Active()
	if err != nil {
		return err
	}
	infos, err := analysis.Columns(e.Table)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(infos))
	eligible := make(map[string]bool, len(infos))
	for _, c := range infos {
		present[c.Name] = true
		eligible[c.Name] = c.KPIEligible
	}
	if !eligible[s.Selection.KPIColumn] {
		if def, ok := analysis.DefaultKPI(infos); ok {
			s.Selection.KPIColumn = def
			fmt.Fprintf(w, "KPI column: %s\n", def)
		} else {
			s.Selection.KPIColumn = ""
			fmt.Fprintln(w, "No column with numeric values; choose a KPI with 'kpi <column>'.")
		}
	}
	if s.Selection.HasTime() && !present[s.Selection.TimeColumn] {
		s.Selection.TimeColumn = ""
	}
	return nil
}

func (s *Session) columns(w io.Writer) error {
	e, err := s.Workspace.Active()
	if err != nil {
		return err
	}
	infos, err := analysis.Columns(e.Table)
	if err != nil {
		return err
	}
	for _, c := range infos {
		var tags []string
		if c.KPIEligible {
			tags = append(tags, fmt.Sprintf("kpi (%d values)", c.ValidValues))
		}
		if c.TimeCandidate {
			tags = append(tags, "time")
		}
		if c.Hint.Fixed {
			tags = append(tags, string(c.Hint.Direction))
		}
		fmt.Fprintf(w, "  %-30s %s\n", c.Name, strings.Join(tags, ", "))
	}
	return nil
}

func (s *Session) setKPI(w io.Writer, name string) error {
	if name == "" {
		return fmt.Errorf("usage: kpi <column>")
	}
	if err := s.requireColumn(name); err != nil {
		return err
	}
	s.Selection.KPIColumn = name
	fmt.Fprintf(w, "KPI column: %s\n", name)
	if c := kpi.Classify(name); c.Fixed {
		fmt.Fprintf(w, "Loss metric: rule fixed to %s\n", c.Direction)
	}
	return nil
}

func (s *Session) setTime(w io.Writer, name string) error {
	if name == "" || strings.EqualFold(name, analysis.NoTime) {
		s.Selection.TimeColumn = ""
		fmt.Fprintln(w, "Time axis disabled.")
		return nil
	}
	if err := s.requireColumn(name); err != nil {
		return err
	}
	s.Selection.TimeColumn = name
	fmt.Fprintf(w, "Time column: %s\n", name)
	return nil
}

func (s *Session) setRule(w io.Writer, v string) error {
	d, err := kpi.ParseDirection(v)
	if err != nil {
		return err
	}
	s.Selection.Direction = d
	fmt.Fprintf(w, "Rule: %s\n", d)
	return nil
}

func (s *Session) setUnit(w io.Writer, v string) error {
	u, err := analysis.ParseUnit(v)
	if err != nil {
		return err
	}
	s.Selection.Unit = u
	fmt.Fprintf(w, "Unit: %s\n", u)
	return nil
}

func (s *Session) setTarget(w io.Writer, v string) error {
	e, err := s.Workspace.Active()
	if err != nil {
		return err
	}
	if v == "" || strings.EqualFold(v, "auto") {
		if err := s.Workspace.Forget(e.ID); err != nil {
			return err
		}
		fmt.Fprintln(w, "Target: suggested")
		return nil
	}
	t, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil {
		return fmt.Errorf("invalid target %q", v)
	}
	if err := s.Workspace.Remember(e.ID, t); err != nil {
		return err
	}
	fmt.Fprintf(w, "Target for %s: %g\n", e.Name, t)
	return nil
}

func (s *Session) status(w io.Writer) error {
	e, err := s.Workspace.Active()
	if err != nil {
		return err
	}
	sel := s.Selection
	timeCol := analysis.NoTime
	if sel.HasTime() {
		timeCol = sel.TimeColumn
	}
	target := "suggested"
	if e.Target != nil {
		target = strconv.FormatFloat(*e.Target, 'f', -1, 64)
	}
	rule := string(sel.Direction)
	if rule == "" {
		rule = "by column name"
	}
	unit := string(sel.Unit)
	if unit == "" {
		unit = string(analysis.UnitPercent)
	}
	fmt.Fprintf(w, "  file:   %s\n  kpi:    %s\n  time:   %s\n  rule:   %s\n  unit:   %s\n  target: %s\n",
		e.Name, sel.KPIColumn, timeCol, rule, unit, target)
	return nil
}

func (s *Session) show(w io.Writer) error {
	if s.Selection.KPIColumn == "" {
		return fmt.Errorf("no KPI column selected, use 'kpi <column>'")
	}
	res, err := s.Workspace.Analyze("", s.Selection)
	if err != nil {
		return err
	}
	return s.Render(w, res)
}

func (s *Session) requireColumn(name string) error {
	e, err := s.Workspace.Active()
	if err != nil {
		return err
	}
	infos, err := analysis.Columns(e.Table)
	if err != nil {
		return err
	}
	for _, c := range infos {
		if c.Name == name {
			return nil
		}
	}
	return &table.ConfigError{Kind: table.ErrUnknownColumn, Names: []string{name}}
}

// Complete returns tab-completion candidates for the given input.
func (s *Session) Complete(input string) []string {
	input = strings.TrimLeft(input, " ")
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return s.KnownCommands
	}

	// Complete top-level command
	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		var matches []string
		for _, cmd := range s.KnownCommands {
			if strings.HasPrefix(cmd, parts[0]) {
				matches = append(matches, cmd)
			}
		}
		sort.Strings(matches)
		return matches
	}

	prefix := ""
	if !strings.HasSuffix(input, " ") {
		prefix = parts[len(parts)-1]
	}
	var matches []string
	for _, arg := range s.argumentsFor(parts[0]) {
		if strings.HasPrefix(arg, prefix) {
			matches = append(matches, arg)
		}
	}
	return matches
}

func (s *Session) argumentsFor(cmd string) []string {
	switch cmd {
	case "rule":
		return []string{"higher", "lower"}
	case "unit":
		return []string{"percent", "absolute"}
	case "target":
		return []string{"auto"}
	case "use":
		return s.Workspace.Names()
	case "kpi", "time":
		e, err := s.Workspace.Active()
		if err != nil {
			return nil
		}
		infos, err := analysis.Columns(e.Table)
		if err != nil {
			return nil
		}
		var out []string
		if cmd == "time" {
			out = append(out, analysis.NoTime)
		}
		for _, c := range infos {
			if (cmd == "kpi" && c.KPIEligible) || (cmd == "time" && c.TimeCandidate) {
				out = append(out, c.Name)
			}
		}
		return out
	}
	return nil
}

func (s *Session) printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  load <file>...      load CSV or Excel files")
	fmt.Fprintln(w, "  files               list loaded files (* = active)")
	fmt.Fprintln(w, "  use <name|n>        switch the active file")
	fmt.Fprintln(w, "  columns             list columns and what they can be used for")
	fmt.Fprintln(w, "  kpi <column>        choose the KPI column")
	fmt.Fprintln(w, "  time <column|none>  choose the time column")
	fmt.Fprintln(w, "  rule higher|lower   set the KPI rule")
	fmt.Fprintln(w, "  unit percent|absolute")
	fmt.Fprintln(w, "  target <n|auto>     set the target for the active file")
	fmt.Fprintln(w, "  status              show the current selection")
	fmt.Fprintln(w, "  show                run the analysis")
	fmt.Fprintln(w, "  reset               unload every file")
	fmt.Fprintln(w, "  history, help, exit")
}

func (s *Session) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range s.KnownCommands {
		cmd := cmd
		switch cmd {
		case "rule", "unit", "target":
			var subs []readline.PrefixCompleterInterface
			for _, a := range s.argumentsFor(cmd) {
				subs = append(subs, readline.PcItem(a))
			}
			items = append(items, readline.PcItem(cmd, subs...))
		case "kpi", "time", "use":
			items = append(items, readline.PcItem(cmd, readline.PcItemDynamic(func(string) []string {
				return s.argumentsFor(cmd)
			})))
		default:
			items = append(items, readline.PcItem(cmd))
		}
	}
	return items
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
