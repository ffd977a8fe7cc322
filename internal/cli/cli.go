// Package cli is the command-line adapter over the catalog, the planner
// and the document exporters. Every subcommand loads the catalog from the
// data directory and writes it back after a change.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/piwi3910/MillPath/internal/config"
	"github.com/piwi3910/MillPath/internal/gcode"
	"github.com/piwi3910/MillPath/internal/grbl"
	"github.com/piwi3910/MillPath/internal/model"
	"github.com/piwi3910/MillPath/internal/project"
	"github.com/piwi3910/MillPath/internal/toolpath"
)

// errUsage marks errors caused by bad arguments; Run exits with 2 for them.
var errUsage = errors.New("usage")

func usageErr(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errUsage)
}

// App holds the loaded configuration and I/O streams for one invocation.
type App struct {
	Config   model.AppConfig
	Log      *zap.Logger
	Store    *project.Store
	Profiles *model.ProfileSet

	// Dial opens the controller link for send.
	Dial func(port string, baud int) (io.ReadWriteCloser, error)

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewApp wires an App for cfg. A nil logger discards log output.
func NewApp(cfg model.AppConfig, log *zap.Logger, stdin io.Reader, stdout, stderr io.Writer) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dir := project.ResolveDataDir(cfg.DataDir)
	cfg.DataDir = dir
	profiles, err := project.LoadProfileSet(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom profiles: %w", err)
	}
	store := project.NewStore(dir, log)
	store.RiserDiameter = cfg.Machine.RiserDiameter
	return &App{
		Config:   cfg,
		Log:      log,
		Store:    store,
		Profiles: profiles,
		Dial:     grbl.OpenSerial,
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
	}, nil
}

type command struct {
	summary string
	run     func(a *App, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"tool":     {"add, list or delete tools", (*App).cmdTool},
		"riser":    {"add, list or delete risers", (*App).cmdRiser},
		"part":     {"add, list or delete parts", (*App).cmdPart},
		"calc":     {"suggest spindle speed and feed rate for a cutter", (*App).cmdCalc},
		"steps":    {"show the step-down passes for a depth", (*App).cmdSteps},
		"generate": {"generate the G-code program for a part", (*App).cmdGenerate},
		"inspect":  {"summarise an existing G-code file", (*App).cmdInspect},
		"send":     {"stream a G-code file to a Grbl controller", (*App).cmdSend},
		"import":   {"import tools, risers and parts from CSV, XLSX or DXF", (*App).cmdImport},
		"export":   {"export the catalog as an XLSX workbook", (*App).cmdExport},
		"backup":   {"write the catalog, settings and profiles to a JSON backup", (*App).cmdBackup},
		"restore":  {"replace the catalog from a JSON backup", (*App).cmdRestore},
		"sheet":    {"write the PDF setup sheet and part labels for a part", (*App).cmdSheet},
		"layout":   {"write the DXF table layout for a part", (*App).cmdLayout},
		"profiles": {"list, import, export or remove G-code profiles", (*App).cmdProfiles},
		"menu":     {"interactive console menu", (*App).cmdMenu},
	}
}

// Run parses global flags, loads configuration and dispatches a subcommand.
// It returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("millpath", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Config file (default: millpath.yaml in ., ./configs or ~/.millpath).")
	dataDir := fs.String("data", "", "Directory holding tools.csv, risers.csv and parts.csv.")
	profile := fs.String("profile", "", "G-code profile to use.")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn or error.")
	fs.Usage = func() { printUsage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(config.Options{ConfigFile: *configFile})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	cfg.ApplyOverrides(model.MachineSettings{GCodeProfile: *profile})

	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Sync()

	app, err := NewApp(*cfg, log, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return app.Execute(fs.Args())
}

// Execute runs one subcommand and returns the exit code.
func (a *App) Execute(args []string) int {
	if len(args) == 0 {
		printUsage(a.Stderr, nil)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.Stderr, "Error: unknown command %q\n", args[0])
		printUsage(a.Stderr, nil)
		return 2
	}
	if err := cmd.run(a, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		a.Log.Debug("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: millpath [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}
	if fs != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fs.PrintDefaults()
	}
}

// newFlagSet returns a subcommand flag set that reports to stderr.
func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	return fs
}

// parseFlags parses args and maps flag syntax errors to usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageErr("%s: %v", fs.Name(), err)
	}
	return nil
}

func (a *App) planner() *toolpath.Planner {
	return toolpath.New(a.Config.Machine)
}

// generator resolves the configured profile, warning when it is unknown.
func (a *App) generator(name string) *gcode.Generator {
	if name == "" {
		name = a.Config.Machine.GCodeProfile
	}
	if !a.Profiles.Has(name) {
		fmt.Fprintf(a.Stderr, "Warning: unknown profile %q, using Generic\n", name)
	}
	return gcode.NewForProfile(a.Profiles.Get(name))
}

func (a *App) load() (*model.Catalog, error) {
	return a.Store.Load()
}

// save writes cat back and logs what changed.
func (a *App) save(cat *model.Catalog, what string) error {
	if err := a.Store.Save(cat); err != nil {
		return err
	}
	a.Log.Info("catalog updated", zap.String("change", what), zap.String("dir", a.Store.Dir))
	return nil
}

// subcommand splits "tool add ..." into the verb and its arguments.
func subcommand(noun string, args []string, verbs ...string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, usageErr("%s needs one of: %s", noun, strings.Join(verbs, ", "))
	}
	for _, v := range verbs {
		if args[0] == v {
			return v, args[1:], nil
		}
	}
	return "", nil, usageErr("unknown %s command %q (want %s)", noun, args[0], strings.Join(verbs, ", "))
}

// nameArg returns the -name flag value, or the first positional argument.
func nameArg(flagValue string, fs *flag.FlagSet) string {
	if flagValue != "" {
		return flagValue
	}
	return fs.Arg(0)
}
