// Package main is the modhost command line. It loads the configured
// modules and runs one action operation against them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dshills/modhost/internal/app"
	"github.com/dshills/modhost/internal/builtin"
	"github.com/dshills/modhost/internal/config"
	"github.com/dshills/modhost/internal/proxy"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// headSize is how much of a file is passed to filers.
const headSize = 4096

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("modhost", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  string
		logLevel    string
		showVersion bool
	)
	fs.StringVar(&configPath, "config", "", "Path to configuration file")
	fs.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "modhost %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
		return 0
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	application, err := app.New(app.Options{Config: cfg, Out: stdout, LogOutput: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	for _, err := range application.ModuleErrors() {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}

	if err := execute(application, fs.Arg(0), fs.Args()[1:], stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "modhost - module action host\n\n")
	fmt.Fprintf(w, "Usage: modhost [options] <command> [args...]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  list                  List actions\n")
	fmt.Fprintf(w, "  find <query>          Search actions by name\n")
	fmt.Fprintf(w, "  run <prefix:text>     Run a command line\n")
	fmt.Fprintf(w, "  edit <file>           Run the editor hooks of a file\n")
	fmt.Fprintf(w, "  open <file>           Open a file with a filer\n")
	fmt.Fprintf(w, "  create <file>         Create a file with a filer\n")
	fmt.Fprintf(w, "  menu [area]           Show the tools of a menu (default panels)\n")
	fmt.Fprintf(w, "  tool <key> [area]     Run a tool\n")
	fmt.Fprintf(w, "  prefix <key> <value>  Change a command prefix\n")
	fmt.Fprintf(w, "  mask <key> <value>    Change an editor or filer mask\n")
	fmt.Fprintf(w, "  hotkey <key> <char>   Change a tool hotkey\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
}

func execute(a *app.Application, name string, args []string, out io.Writer) error {
	h := a.Host()

	switch name {
	case "list":
		return builtin.ListActions(out, h)

	case "find":
		if len(args) == 0 {
			return fmt.Errorf("%w: find <query>", errUsage)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, r := range h.Search(strings.Join(args, " "), 20) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Action.Kind(), r.Action.Name(), r.Action.Key())
		}
		return tw.Flush()

	case "run":
		if len(args) == 0 {
			return fmt.Errorf("%w: run <prefix:text>", errUsage)
		}
		return h.Command(strings.Join(args, " "), out)

	case "edit":
		if len(args) != 1 {
			return fmt.Errorf("%w: edit <file>", errUsage)
		}
		n, err := h.OpenEditor(&consoleEditor{Writer: out, name: args[0]})
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintf(out, "no editor hooks for %s\n", args[0])
		}
		return nil

	case "open":
		if len(args) != 1 {
			return fmt.Errorf("%w: open <file>", errUsage)
		}
		data, err := readHead(args[0])
		if err != nil {
			return err
		}
		return h.OpenFile(args[0], data, proxy.FilerModeNormal)

	case "create":
		if len(args) != 1 {
			return fmt.Errorf("%w: create <file>", errUsage)
		}
		return h.CreateFile(args[0])

	case "menu":
		from, err := area(args, 0)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, item := range h.Menu(from) {
			fmt.Fprintf(tw, "%s\t%s\n", item.Text, item.Tool.Key())
		}
		return tw.Flush()

	case "tool":
		if len(args) == 0 {
			return fmt.Errorf("%w: tool <key> [area]", errUsage)
		}
		from, err := area(args, 1)
		if err != nil {
			return err
		}
		action, err := a.Action(args[0])
		if err != nil {
			return err
		}
		return h.InvokeTool(action.ID(), from)

	case "prefix", "mask", "hotkey":
		if len(args) != 2 {
			return fmt.Errorf("%w: %s <key> <value>", errUsage, name)
		}
		set := map[string]func(string, string) error{
			"prefix": a.SetPrefix,
			"mask":   a.SetMask,
			"hotkey": a.SetHotkey,
		}[name]
		return set(args[0], args[1])
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, name)
}

func area(args []string, i int) (proxy.ToolOptions, error) {
	if len(args) <= i {
		return proxy.ToolPanels, nil
	}
	return proxy.ParseToolOption(args[i])
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, headSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// consoleEditor is the editor of an edit command. Hooks may write to it.
type consoleEditor struct {
	io.Writer
	name string
}

func (e *consoleEditor) FileName() string {
	return e.name
}
