package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spicestory/spicestory/internal/api"
	"github.com/spicestory/spicestory/internal/db"
	"github.com/spicestory/spicestory/internal/events"
	"github.com/spicestory/spicestory/internal/logging"
	"github.com/spicestory/spicestory/internal/model"
	"github.com/spicestory/spicestory/internal/orders"
	"github.com/spicestory/spicestory/internal/payments"
	"github.com/spicestory/spicestory/internal/store"
)

type config struct {
	dbPath            string
	addr              string
	logPath           string
	stripeKey         string
	currency          string
	paymentTimeout    time.Duration
	paymentRetries    int
	amqpURL           string
	strictTransitions bool
	corsOrigin        string
	pruneInterval     time.Duration
	debug             bool
}

func parseFlags(args []string) (*config, error) {
	fs := flag.NewFlagSet("spicestory", flag.ContinueOnError)
	cfg := &config{}

	fs.StringVar(&cfg.dbPath, "db", "spicestory.sqlite3", "")
	fs.StringVar(&cfg.dbPath, "d", "spicestory.sqlite3", "")

	defaultAddr := ":5000"
	if port := os.Getenv("PORT"); port != "" {
		defaultAddr = ":" + port
	}
	fs.StringVar(&cfg.addr, "addr", defaultAddr, "")
	fs.StringVar(&cfg.addr, "a", defaultAddr, "")

	fs.StringVar(&cfg.logPath, "log", "", "")
	fs.StringVar(&cfg.logPath, "l", "", "")

	fs.StringVar(&cfg.stripeKey, "stripe-key", os.Getenv("STRIPE_SECRET_KEY"), "")
	fs.StringVar(&cfg.currency, "currency", "usd", "")
	fs.DurationVar(&cfg.paymentTimeout, "payment-timeout", payments.DefaultTimeout, "")
	fs.IntVar(&cfg.paymentRetries, "payment-retries", payments.DefaultMaxAttempts, "")
	fs.StringVar(&cfg.amqpURL, "amqp", os.Getenv("AMQP_URL"), "")
	fs.BoolVar(&cfg.strictTransitions, "strict-transitions", false, "")

	defaultOrigin := "*"
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		defaultOrigin = origin
	}
	fs.StringVar(&cfg.corsOrigin, "cors-origin", defaultOrigin, "")
	fs.DurationVar(&cfg.pruneInterval, "prune-interval", time.Hour, "")
	fs.BoolVar(&cfg.debug, "debug", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: spicestory [flags]

Flags:
  -d, -db <path>            SQLite database path (default: spicestory.sqlite3)
  -a, -addr <host:port>     listen address (default: :5000, or :$PORT)
  -l, -log <path>           log file path (default: no file, stdout/stderr only)
  -stripe-key <key>         Stripe secret key (default: $STRIPE_SECRET_KEY; empty uses mock payments)
  -currency <code>          ISO currency for payment intents (default: usd)
  -payment-timeout <dur>    timeout per payment processor call (default: 5s)
  -payment-retries <n>      attempts per payment processor call (default: 3)
  -amqp <url>               RabbitMQ URL for order events (default: $AMQP_URL; empty disables)
  -strict-transitions       only allow forward order status transitions
  -cors-origin <origin>     allowed CORS origin (default: $CORS_ORIGIN or *)
  -prune-interval <dur>     how often expired token revocations are deleted (default: 1h)
  -debug                    enable debug logging
  -h, -help                 show this help and exit
`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if cfg.paymentRetries < 1 {
		return nil, fmt.Errorf("-payment-retries must be at least 1")
	}
	if cfg.pruneInterval <= 0 {
		return nil, fmt.Errorf("-prune-interval must be positive")
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// INFO/WARN → stdout, ERROR → stderr, optionally also a log file.
	closeLog, err := logging.Setup(cfg.logPath, cfg.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config) error {
	logger := slog.Default()

	cur, err := model.ParseCurrency(cfg.currency)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.dbPath)

	// Generated on first run and persisted.
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	pruneCtx, stopPrune := context.WithCancel(context.Background())
	defer stopPrune()
	go pruneRevokedTokens(pruneCtx, database, cfg.pruneInterval)

	var publisher events.Publisher = events.Nop{}
	if cfg.amqpURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		amqpPublisher, err := events.DialAMQP(ctx, cfg.amqpURL, 30*time.Second, logger)
		cancel()
		if err != nil {
			slog.Warn("order events disabled", "error", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
			slog.Info("publishing order events", "exchange", events.Exchange)
		}
	}

	var policy orders.TransitionPolicy = orders.Permissive{}
	if cfg.strictTransitions {
		policy = orders.Strict{}
	}
	manager := &orders.Manager{DB: database, Publisher: publisher, Policy: policy, Logger: logger}

	var processor payments.Processor
	if cfg.stripeKey != "" {
		processor = payments.NewStripeProcessor(cfg.stripeKey, nil)
	} else {
		slog.Warn("no Stripe key configured, using mock payment processor")
		processor = payments.NewMockProcessor(payments.StatusSucceeded)
	}
	bridge := &payments.Bridge{
		Orders:      manager,
		Processor:   processor,
		Currency:    cur,
		Timeout:     cfg.paymentTimeout,
		MaxAttempts: cfg.paymentRetries,
		Logger:      logger,
	}

	handler := api.NewRouter(api.Config{
		DB:         database,
		JWTSecret:  jwtSecret,
		Orders:     manager,
		Payments:   bridge,
		Logger:     logger,
		CORSOrigin: cfg.corsOrigin,
	})

	server := &http.Server{
		Addr:              cfg.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.addr, "strict_transitions", cfg.strictTransitions)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// pruneRevokedTokens deletes expired token revocations every interval until
// ctx is canceled.
func pruneRevokedTokens(ctx context.Context, database *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PruneRevokedTokens(ctx, database, now)
			if err != nil {
				slog.Error("pruning revoked tokens", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("pruned revoked tokens", "count", n)
			}
		}
	}
}
