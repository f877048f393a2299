package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"petclinic/internal/adapters/auth/authsvc"
	"petclinic/internal/adapters/auth/jwtverifier"
	"petclinic/internal/adapters/messaging/kafka"
	"petclinic/internal/adapters/storage/redisstore"
	"petclinic/internal/adapters/storage/sqlstore"
	"petclinic/internal/gateway"
	"petclinic/internal/platform/config"
	"petclinic/internal/platform/jobs"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/migrations"
	"petclinic/internal/ports/auth"
	"petclinic/internal/router"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		port        int
		autoMigrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve [service]",
		Short: "Run one service, the gateway or all of them",
		Long: "Run one of " + strings.Join(router.Backends, ", ") +
			", the gateway, or all (default) in a single process.",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return err
			}
			if len(args) == 1 && !router.Known(strings.ToLower(args[0])) {
				return fmt.Errorf("unknown service %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Port = port
			}
			service := router.All
			if len(args) == 1 {
				service = strings.ToLower(args[0])
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, service, autoMigrate)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides PORT)")
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, service string, autoMigrate bool) error {
	log := newLogger(cfg).With(map[string]any{"service": service})
	opts := router.Options{Service: service, Config: cfg, Log: log}

	if service != router.Gateway && strings.TrimSpace(cfg.DB.DSN) != "" {
		db, err := sqlstore.Open(cfg.DB.Driver, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if autoMigrate {
			if err := migrations.Up(db.DB, cfg.DB.Driver); err != nil {
				return err
			}
		}
		opts.DB = db
		log.Info("sql storage enabled", map[string]any{"driver": cfg.DB.Driver})
	}

	if (service == router.All || service == gateway.ServiceCarts) && strings.TrimSpace(cfg.Redis.Addr) != "" {
		rdb, err := redisstore.NewClient(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts.Redis = rdb
		log.Info("redis cart storage enabled", map[string]any{"addr": cfg.Redis.Addr})
	}

	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		pub := kafka.NewPublisher(brokers, log)
		defer pub.Close()
		opts.Publisher = pub
		if service == router.All || service == gateway.ServiceNotifications {
			opts.Consumer = kafka.NewConsumer(brokers, cfg.Kafka.GroupID, log)
		}
		log.Info("kafka enabled", map[string]any{"brokers": brokers})
	}

	if service == router.All || service == router.Gateway {
		v, err := newVerifier(cfg)
		if err != nil {
			return err
		}
		opts.Verifier = v
		log.Info("gateway auth", map[string]any{"mode": cfg.Auth.VerifyMode})
	}

	sched := jobs.NewScheduler(log)
	opts.Scheduler = sched

	handler, err := router.NewRouter(ctx, opts)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return run(ctx, srv, log)
}

// run sirve hasta que ctx se cancela y después hace shutdown ordenado.
func run(ctx context.Context, srv *http.Server, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// newVerifier elige cómo valida tokens el gateway. En modo dev devuelve nil.
func newVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	switch cfg.Auth.VerifyMode {
	case config.VerifyLocal:
		return jwtverifier.New(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	case config.VerifyRemote:
		return authsvc.NewVerifier(authsvc.Config{
			BaseURL: cfg.Services.Auth,
			Timeout: cfg.Gateway.ClientTimeout,
		})
	default:
		return nil, nil
	}
}
