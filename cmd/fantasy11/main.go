// Command fantasy11 drives the Fantasy 11 backend from the terminal.
//
// Usage:
//
//	fantasy11 [flags] <command> [command flags] [args]
//
// The session is kept in a local SQLite file by default, so a login survives between
// invocations. With -fake the command runs against an in-process demo backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	fantasy11 "github.com/MrEthical07/fantasy11"
	"github.com/MrEthical07/fantasy11/internal/apitest"
	"github.com/MrEthical07/fantasy11/internal/envconfig"
	"github.com/MrEthical07/fantasy11/internal/logging"
)

const envNamespace = "FANTASY11"

type options struct {
	store     string
	dbPath    string
	redisAddr string
	profile   string
	fake      bool
	metrics   string
	envFile   string
	audit     bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	flag.StringVar(&opts.store, "store", "", "session store: sqlite, redis or memory (default sqlite, memory with -fake)")
	flag.StringVar(&opts.dbPath, "db", "", "sqlite session file (default <user config dir>/fantasy11/session.db)")
	flag.StringVar(&opts.redisAddr, "redis-addr", "", `redis address for -store=redis; "mini" starts an in-process server`)
	flag.StringVar(&opts.profile, "profile", "default", "session profile name")
	flag.BoolVar(&opts.fake, "fake", false, "run against an in-process demo backend")
	flag.StringVar(&opts.metrics, "metrics", "", "print client metrics after the command: prom or otel")
	flag.StringVar(&opts.envFile, "env", "", "extra .env file to load")
	flag.BoolVar(&opts.audit, "audit", false, "write session audit events to stderr as JSON lines")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dotenv []string
	if opts.envFile != "" {
		dotenv = append(dotenv, opts.envFile)
	}

	cfg, err := fantasy11.LoadConfig(envNamespace, dotenv...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	// Loggers are captured when the client and stores are built, so this must run first.
	var logCfg logging.Config
	if err := envconfig.Parse(&logCfg, envNamespace+"_LOG"); err != nil {
		fmt.Fprintf(os.Stderr, "log config: %v\n", err)
		return 1
	}
	if err := logging.Configure(ctx, logCfg, "fantasy11"); err != nil {
		fmt.Fprintf(os.Stderr, "log config: %v\n", err)
		return 1
	}
	log := logging.GetLogger("cli")

	if opts.fake {
		backend := apitest.New()
		if _, err := backend.SeedDemo(); err != nil {
			fmt.Fprintf(os.Stderr, "seed demo backend: %v\n", err)
			return 1
		}
		srv := backend.Start()
		defer srv.Close()
		cfg.HTTP.BaseURL = srv.URL + apitest.BasePath
		if opts.store == "" {
			opts.store = storeMemory
		}
		log.InfoContext(ctx, "using in-process demo backend", "url", cfg.HTTP.BaseURL)
	}
	if opts.metrics != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.EnableLatencyHistograms = true
	}
	if opts.audit {
		cfg.Audit.Enabled = true
	}

	store, closeStore, err := openStore(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session store: %v\n", err)
		return 1
	}
	defer closeStore()

	builder := fantasy11.New().WithConfig(cfg).WithSessionStore(store)
	if opts.audit {
		builder = builder.WithAuditSink(fantasy11.NewJSONWriterSink(os.Stderr))
	}
	client, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		return 1
	}
	defer client.Close()

	name, args := flag.Arg(0), flag.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		return 2
	}

	if opts.fake && cmd.needsLogin && !store.IsAuthenticated(ctx) {
		if err := loginDemo(ctx, client); err != nil {
			fmt.Fprintf(os.Stderr, "demo login: %v\n", err)
			return 1
		}
	}

	err = cmd.run(ctx, client, args)

	if opts.audit {
		if ferr := flushAudit(ctx, client, auditFlushTimeout); ferr != nil {
			fmt.Fprintf(os.Stderr, "audit: %v\n", ferr)
		}
	}
	if opts.metrics != "" {
		if merr := printMetrics(ctx, os.Stderr, opts.metrics, client); merr != nil {
			fmt.Fprintf(os.Stderr, "metrics: %v\n", merr)
		}
	}

	if err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if fantasy11.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "hint: run `fantasy11 login` first")
		}
		return 1
	}
	return 0
}

const auditFlushTimeout = 2 * time.Second

// flushAudit makes sure the command's audit lines are written before the process
// prints its summary and exits.
func flushAudit(ctx context.Context, client *fantasy11.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.FlushAudit(ctx); err != nil {
		return fmt.Errorf("events still pending after %s: %w", timeout, err)
	}
	if n := client.AuditDropped(); n > 0 {
		return fmt.Errorf("%d events dropped", n)
	}
	return nil
}

func loginDemo(ctx context.Context, client *fantasy11.Client) error {
	resp, err := client.Login(ctx, fantasy11.LoginRequest{Mobile: "9876543210", Password: "secret1"})
	if err != nil {
		return err
	}
	return client.PersistAuth(ctx, resp)
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "usage: fantasy11 [flags] <command> [command flags] [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")
	for _, name := range commandNames() {
		fmt.Fprintf(out, "  %-16s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "flags:")
	flag.PrintDefaults()
}
