package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/marmos91/dataroom/internal/logger"
	"github.com/marmos91/dataroom/pkg/config"
	"github.com/marmos91/dataroom/pkg/dataroom"
	"github.com/marmos91/dataroom/pkg/snapshot"
	"github.com/marmos91/dataroom/pkg/store"
)

const usage = `Dataroom - hierarchical document store

Usage: dataroom [global flags] <command> [arguments]

Commands:
  init      Write a default configuration file
  serve     Open the store and expose /metrics and /healthz until interrupted
  shell     Read commands from standard input against one open store
  mkdir     Create a folder
  upload    Upload a document
  ls        List the contents of a folder
  tree      Print the whole hierarchy
  path      Print the breadcrumbs of a folder
  rename    Rename a folder or a file
  rm        Delete a file, or a folder with everything below it
  get       Write the content of a file to disk
  export    Write a snapshot of the store to the configured sink
  import    Restore a snapshot under a folder

Global flags:
`

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/dataroom/config.yaml)")
	logLevel := flag.String("log-level", "", "Override the configured log level (DEBUG, INFO, WARN, ERROR)")
	jsonOutput := flag.Bool("json", false, "Print results as JSON envelopes")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	// Variables from a local .env file take part in DATAROOM_* overrides
	_ = godotenv.Load()

	name, args := flag.Arg(0), flag.Args()[1:]
	if name == "init" {
		return exitCode(runInit(*configPath, args))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Logging.Level = strings.ToUpper(*logLevel)
	}

	if err := logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	// Create cancellable context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, os.Stdout, *jsonOutput)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}
	defer a.close()

	return exitCode(a.dispatch(ctx, name, args))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 2
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}

// runInit writes a default configuration file.
func runInit(configPath string, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := configPath
	if path == "" {
		written, err := config.InitConfig(*force)
		if err != nil {
			return err
		}
		path = written
	} else if err := config.InitConfigToPath(path, *force); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

// app holds the components opened for one invocation.
type app struct {
	cfg     *config.Config
	store   store.ItemStore
	room    *dataroom.DataRoom
	metrics *config.MetricsResult
	out     io.Writer
	json    bool
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer, jsonOutput bool) (*app, error) {
	a := &app{cfg: cfg, out: out, json: jsonOutput}

	a.metrics = config.InitializeMetrics(cfg, func(ctx context.Context) error {
		return a.room.Healthcheck(ctx)
	})

	itemStore, err := config.CreateItemStore(ctx, &cfg.Store, a.metrics.StoreMetrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create item store: %w", err)
	}
	a.store = itemStore

	a.room = dataroom.New(itemStore, config.ServiceOptions(&cfg.Service, a.metrics.ServiceMetrics))
	if err := a.room.Initialize(ctx); err != nil {
		_ = itemStore.Close()
		return nil, err
	}

	logger.Debug("Item store ready: type=%s", cfg.Store.Type)
	return a, nil
}

func (a *app) close() {
	if err := a.room.Close(); err != nil {
		logger.Error("Failed to close item store: %v", err)
	}
}

// snapshots builds a snapshot manager over the configured sink.
func (a *app) snapshots(ctx context.Context) (*snapshot.Manager, error) {
	sink, err := config.CreateSnapshotSink(ctx, &a.cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot sink: %w", err)
	}
	return snapshot.NewManager(a.store, sink, a.metrics.SnapshotMetrics), nil
}
