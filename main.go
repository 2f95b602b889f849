// Package main is the entry point for the sacristy PocketBase extension.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/jsvm"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/pocketbase/pocketbase/tools/hook"
	"github.com/redis/go-redis/v9"

	"github.com/parish/sacristy/internal/api"
	"github.com/parish/sacristy/internal/config"
	"github.com/parish/sacristy/internal/domain"
	"github.com/parish/sacristy/internal/housekeeping"
	"github.com/parish/sacristy/internal/lock"
	"github.com/parish/sacristy/internal/metrics"
	"github.com/parish/sacristy/internal/notify"

	_ "github.com/parish/sacristy/internal/migrations"
	"github.com/parish/sacristy/logging"
	"github.com/parish/sacristy/ratelimit"
)

func main() {
	// Initialize unified logging format
	// Format: 2026-01-06T14:05:52Z [sacristy] LEVEL message key=value...
	logging.Init("sacristy")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetLogLoggerLevel(cfg.SlogLevel())

	app := pocketbase.New()

	// ---------------------------------------------------------------
	// Optional plugin flags:
	// ---------------------------------------------------------------

	var hooksDir string
	app.RootCmd.PersistentFlags().StringVar(&hooksDir, "hooksDir", "", "the directory with the JS app hooks")

	var hooksWatch bool
	app.RootCmd.PersistentFlags().BoolVar(&hooksWatch, "hooksWatch", true, "auto restart the app on pb_hooks file change")

	var hooksPool int
	app.RootCmd.PersistentFlags().IntVar(&hooksPool, "hooksPool", 15, "the total prewarm goja.Runtime instances for the JS app hooks execution")

	var migrationsDir string
	app.RootCmd.PersistentFlags().StringVar(&migrationsDir, "migrationsDir", "", "the directory with the user defined migrations")

	var automigrate bool
	app.RootCmd.PersistentFlags().BoolVar(&automigrate, "automigrate", true, "enable/disable auto migrations")

	var publicDir string
	app.RootCmd.PersistentFlags().StringVar(&publicDir, "publicDir", defaultPublicDir(), "the directory to serve static files")

	var indexFallback bool
	app.RootCmd.PersistentFlags().BoolVar(&indexFallback, "indexFallback", true, "fallback the request to index.html on missing static path")

	// ---------------------------------------------------------------
	// Register plugins:
	// ---------------------------------------------------------------

	jsvm.MustRegister(app, jsvm.Config{
		HooksDir:      hooksDir,
		HooksWatch:    hooksWatch,
		HooksPoolSize: hooksPool,
		MigrationsDir: migrationsDir,
	})

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: automigrate,
		Dir:         migrationsDir,
	})

	metrics.Register()

	// ---------------------------------------------------------------
	// Register custom routes and services:
	// ---------------------------------------------------------------

	app.OnServe().Bind(&hook.Handler[*core.ServeEvent]{
		Func: func(e *core.ServeEvent) error {
			deps, hk, err := wireServices(app, cfg)
			if err != nil {
				return err
			}

			api.Register(e, deps)

			go func() {
				slog.Info("starting metrics server", "port", cfg.MetricsPort)
				srv := metrics.NewServer(":" + cfg.MetricsPort)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("metrics server stopped", "error", err)
				}
			}()

			if err := hk.Start(); err != nil {
				slog.Error("failed to start housekeeping scheduler", "error", err)
			}
			app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
				hk.Stop()
				return e.Next()
			})

			return e.Next()
		},
	})

	app.OnServe().Bind(&hook.Handler[*core.ServeEvent]{
		Func: func(e *core.ServeEvent) error {
			if !e.Router.HasRoute(http.MethodGet, "/{path...}") {
				e.Router.GET("/{path...}", apis.Static(os.DirFS(publicDir), indexFallback))
			}
			return e.Next()
		},
		Priority: 999,
	})

	if err := app.Start(); err != nil {
		slog.Error("Failed to start application", "error", err)
		os.Exit(1)
	}
}

// wireServices builds the collaborators api.Deps and the housekeeping
// scheduler need: the generation lock (Redis-backed when REDIS_URL is
// set, in-process otherwise), the Slack/email notifier, and the fairness
// weights.
func wireServices(app core.App, cfg *config.Config) (api.Deps, *housekeeping.Scheduler, error) {
	var locker lock.Locker
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return api.Deps{}, nil, err
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, falling back to in-process lock", "error", err)
			locker = lock.NewMemLocker()
		} else {
			locker = lock.NewRedisLocker(client)
		}
	} else {
		locker = lock.NewMemLocker()
	}

	slackNotifier := notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
	emailSender := notify.NewEmailSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, slog.Default())
	throttled := notify.NewThrottled(slackNotifier, emailSender, ratelimit.DefaultConfig())

	deps := api.Deps{
		App:              app,
		Locker:           locker,
		Notifier:         throttled,
		Weights:          domain.DefaultWeights(),
		CoordinatorEmail: cfg.CoordinatorEmail,
	}

	hk := housekeeping.NewScheduler(app, throttled, cfg.ArchiveAfterMonths, cfg.CoordinatorEmail)
	return deps, hk, nil
}

// the default pb_public dir location is relative to the executable
func defaultPublicDir() string {
	if strings.HasPrefix(os.Args[0], os.TempDir()) {
		// most likely ran with go run
		return "./pb_public"
	}
	return filepath.Join(filepath.Dir(os.Args[0]), "pb_public")
}
