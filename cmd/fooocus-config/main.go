// ABOUTME: Command-line front end for the local Fooocus preset and model store
// ABOUTME: Dispatches presets, models and tags subcommands against the SQLite database

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/2389/fooocus-config/internal/catalog"
	"github.com/2389/fooocus-config/internal/config"
	"github.com/2389/fooocus-config/internal/store"
)

// EnvConfigPath names a config file when --config is not given.
const EnvConfigPath = "FOOOCUS_CONFIG"

const banner = `
  __                                                    __ _
 / _| ___   ___   ___   ___ _   _ ___        ___ ___  _ __  / _(_) __ _
| |_ / _ \ / _ \ / _ \ / __| | | / __|_____ / __/ _ \| '_ \| |_| |/ _' |
|  _| (_) | (_) | (_) | (__| |_| \__ \_____| (_| (_) | | | |  _| | (_| |
|_|  \___/ \___/ \___/ \___|\__,_|___/      \___\___/|_| |_|_| |_|\__, |
                                                                  |___/
`

// app carries what every subcommand needs. Output goes to out, diagnostics
// from flag parsing to errOut.
type app struct {
	store   store.Store
	catalog *catalog.Service
	logger  *slog.Logger
	out     io.Writer
	errOut  io.Writer
	json    bool
}

func newApp(st store.Store, logger *slog.Logger, out, errOut io.Writer) *app {
	return &app{
		store:   st,
		catalog: catalog.New(st, logger),
		logger:  logger,
		out:     out,
		errOut:  errOut,
	}
}

func main() {
	fs := flag.NewFlagSet("fooocus-config", flag.ContinueOnError)
	fs.SetInterspersed(false)
	configPath := fs.StringP("config", "c", os.Getenv(EnvConfigPath), "Path to a YAML or TOML config file")
	jsonOut := fs.Bool("json", false, "Print results as JSON")
	verbose := fs.BoolP("verbose", "v", false, "Log at debug level")
	fs.Usage = printUsage

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(1)
	}

	args := fs.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	switch args[0] {
	case "help", "-h", "--help":
		printUsage()
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	logger := setupLogger(cfg.Logging, os.Stderr)

	st, err := store.Open(cfg.Database.Dir,
		store.WithDriver(cfg.Database.Driver),
		store.WithLogger(logger),
	)
	if err != nil {
		color.Red("Error: opening database: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	a := newApp(st, logger, os.Stdout, os.Stderr)
	a.json = *jsonOut
	err = a.run(ctx, args)

	stop()
	if cerr := st.Close(); cerr != nil {
		logger.Error("closing database", "error", cerr)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads path when given, otherwise uses the defaults. Without a
// file the CLI only logs warnings so routine commands stay quiet.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		cfg.Logging.Level = "warn"
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "presets", "preset":
		return a.cmdPresets(ctx, args)
	case "models", "model":
		return a.cmdModels(ctx, args)
	case "tags", "tag":
		return a.cmdTags(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s (use presets, models, tags)", cmd)
	}
}

// flagSet returns a subcommand flag set that also accepts --json.
func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.BoolVar(&a.json, "json", a.json, "Print results as JSON")
	return fs
}

// subcommand splits off the first argument, defaulting to list.
func subcommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "list", nil
	}
	return args[0], args[1:]
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: fooocus-config [--config path] [--json] <command> [args]")
	fmt.Println()
	yellow.Println("Presets:")
	fmt.Println("  presets list                    List presets, most recently updated first")
	fmt.Println("  presets show <id>               Show one preset")
	fmt.Println("  presets search <text>           Case-sensitive search of name, description, tags")
	fmt.Println("  presets filter [flags]          Filter with --search --tag --favorite --base-model")
	fmt.Println("                                  and order with --sort name|createdAt|updatedAt|useCount --order asc|desc")
	fmt.Println("  presets base-models             List the distinct base models presets use")
	fmt.Println("  presets favorite <id>           Toggle the favorite flag")
	fmt.Println("  presets use <id>                Record one use of a preset")
	fmt.Println("  presets delete <id>             Delete a preset")
	fmt.Println("  presets import <file> [--name]  Import a Fooocus preset JSON file")
	fmt.Println("  presets export <id> <file>      Write a preset as Fooocus preset JSON")
	fmt.Println()
	yellow.Println("Models:")
	fmt.Println("  models list [--type T]          List catalog models")
	fmt.Println("  models show <id>                Show one model")
	fmt.Println("  models search <text>            Case-sensitive search of name, description, scope, tags")
	fmt.Println("  models filter [flags]           Filter with --search --type --tag, order with --sort --order")
	fmt.Println("  models add --name N --type T    Add a model (--file --description --scope --path --tag)")
	fmt.Println("  models usage <id>               List presets referencing a model")
	fmt.Println("  models delete <id> [--force]    Delete a model, refusing while presets use it")
	fmt.Println()
	yellow.Println("Tags:")
	fmt.Println("  tags list                       List tags with preset counts")
	fmt.Println("  tags create <name> [--color]    Create a tag")
	fmt.Println("  tags delete <id>                Delete a tag (presets keep their labels)")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  FOOOCUS_CONFIG                  Config file used when --config is not given")
	fmt.Println("  FOOOCUS_CONFIG_DIR              Data directory holding fooocus_config.db")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  fooocus-config presets import ~/Fooocus/presets/realistic.json --name Realistic")
	fmt.Println("  fooocus-config presets filter --tag portrait --sort useCount")
	fmt.Println("  fooocus-config --json models list --type LoRA")
	fmt.Println()
}
