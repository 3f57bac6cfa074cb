package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"storefront/pkg/infrastructure/mysql"
	"storefront/pkg/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  appID,
		Usage: "storefront backend: catalog, cart, orders and accounts",
		Commands: []*cli.Command{
			{
				Name:  "service",
				Usage: "serve the HTTP API and the gRPC health check",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "apply pending migrations before serving"},
				},
				Action: runService,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations",
				Action: runMigrate,
			},
			{
				Name:   "seed",
				Usage:  "replace the catalog with sample products and ensure the admin account",
				Action: runSeed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("storefront failed")
	}
}

func openDatabase(ctx context.Context, cfg *config) (*sqlx.DB, error) {
	db, err := mysql.Open(ctx, cfg.database())
	if err != nil {
		return nil, err
	}
	log.Info("connected to database")
	return db, nil
}

func runMigrate(c *cli.Context) error {
	cfg, err := parseEnv()
	if err != nil {
		return err
	}
	db, err := openDatabase(c.Context, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return mysql.Migrate(db)
}

func runService(c *cli.Context) error {
	cfg, err := parseEnv()
	if err != nil {
		return err
	}
	db, err := openDatabase(c.Context, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if c.Bool("migrate") {
		if err := mysql.Migrate(db); err != nil {
			return err
		}
	}

	deps, err := newContainer(c.Context, cfg, db)
	if err != nil {
		return err
	}
	defer deps.Close()

	httpServer := &http.Server{
		Addr: cfg.HTTPAddress,
		Handler: transport.Router(deps.services, transport.Config{
			UploadDir:      cfg.UploadDir,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	listener, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return errors.Wrap(err, "listen grpc")
	}

	killSignalChan := getKillSignalChan()
	g, ctx := errgroup.WithContext(c.Context)
	g.Go(func() error {
		log.WithFields(log.Fields{"url": cfg.HTTPAddress}).Info("Starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve http")
		}
		return nil
	})
	g.Go(func() error {
		log.WithFields(log.Fields{"url": cfg.GRPCAddress}).Info("Starting health server")
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return errors.Wrap(err, "serve grpc")
		}
		return nil
	})
	g.Go(func() error {
		waitForKillSignal(ctx, killSignalChan)
		healthServer.Shutdown()
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignal(ctx context.Context, killSignalChan <-chan os.Signal) {
	select {
	case <-ctx.Done():
		log.Info("server failed, shutting down")
	case killSignal := <-killSignalChan:
		switch killSignal {
		case os.Interrupt:
			log.Info("Got SIGINT...")
		case syscall.SIGTERM:
			log.Info("Got SIGTERM...")
		}
	}
}
