package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cafe-api/internal/infrastructure/config"
	dbcommon "cafe-api/internal/infrastructure/database/common"
	"cafe-api/internal/infrastructure/database/memory"
	"cafe-api/internal/infrastructure/database/mysql"
	"cafe-api/internal/infrastructure/database/postgres"
	"cafe-api/internal/infrastructure/logger"
	"cafe-api/internal/infrastructure/metrics"
	"cafe-api/internal/usecase"
)

type Server struct {
	cfg    *config.Config
	logger *zap.Logger
}

type Option func(*Server)

// WithConfig skips loading the configuration from files and environment
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithLogger replaces the logger built from the configuration
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func NewServer(opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM is received.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.cfg
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
	}

	log := s.logger
	if log == nil {
		var err error
		if log, err = logger.New(cfg.Logger); err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer func() { _ = log.Sync() }()
	}

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("Database connection successful", zap.String("driver", cfg.Database.Driver))

	registry, err := metrics.NewRegistry(cfg.Metrics.DataPath, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := registry.Close(); err != nil {
			log.Warn("failed to close metrics storage", zap.Error(err))
		}
	}()

	e := NewRouter(usecase.NewCafeUsecase(repo, log), registry, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", zap.String("addr", cfg.Server.Addr))
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (usecase.CoffeeRepository, func(), error) {
	db := cfg.Database
	pool := dbcommon.PoolConfig{
		MaxOpenConns:    db.MaxOpenConns,
		MaxIdleConns:    db.MaxIdleConns,
		ConnMaxLifetime: db.ConnMaxLifetime,
	}

	switch db.Driver {
	case config.DriverMemory:
		return memory.NewCoffeeRepository(), func() {}, nil
	case config.DriverMySQL:
		conn, err := mysql.Connect(ctx, mysql.Options{
			Host:     db.Host,
			Port:     cfg.DatabasePort(),
			User:     db.User,
			Password: db.Password,
			Database: db.Name,
			Pool:     pool,
		})
		if err != nil {
			return nil, nil, err
		}
		return mysql.NewCoffeeRepository(conn), func() { _ = conn.Close() }, nil
	case config.DriverPostgres:
		conn, err := postgres.Connect(ctx, postgres.Options{
			Host:     db.Host,
			Port:     cfg.DatabasePort(),
			User:     db.User,
			Password: db.Password,
			Database: db.Name,
			SSLMode:  db.SSLMode,
			Pool:     pool,
		})
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewCoffeeRepository(conn), func() { _ = conn.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", db.Driver)
	}
}
