package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/foodshare/internal/adapter/ingress"
	"github.com/xiaot623/gogo/foodshare/internal/catalog"
	"github.com/xiaot623/gogo/foodshare/internal/repository"
	"github.com/xiaot623/gogo/foodshare/internal/service"
	"github.com/xiaot623/gogo/foodshare/internal/study"
	handler "github.com/xiaot623/gogo/foodshare/internal/transport/http"
	"github.com/xiaot623/gogo/foodshare/internal/transport/rpc"
	"github.com/xiaot623/gogo/foodshare/policy"
)

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the catalog and serve the discovery and study API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.HTTPPort = port
			}

			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			logger.Info("starting foodshare",
				zap.Int("http_port", cfg.HTTPPort),
				zap.Int("rpc_port", cfg.RPCPort),
				zap.String("catalog", cfg.CatalogSource),
				zap.String("study", cfg.StudyConfig),
				zap.String("database", cfg.DatabaseURL))

			studyCfg, err := study.LoadConfig(cfg.StudyConfig)
			if err != nil {
				return err
			}

			db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			policyEngine, err := loadPolicy(ctx, cfg.PolicyFile)
			if err != nil {
				return err
			}

			loader := catalog.NewLoader(catalog.NewSource(cfg.CatalogSource), cfg.BaseLocation, logger.Named("catalog"))
			ingressClient := ingress.NewClient(cfg.IngressURL, logger.Named("ingress"))
			svc := service.New(loader, studyCfg, db, ingressClient, cfg, policyEngine, logger.Named("service"))
			defer svc.Close()

			httpServer := handler.NewServer(svc)
			rpcServer, err := rpc.NewServer(svc, logger.Named("rpc"))
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return svc.Run(gctx)
			})
			g.Go(func() error {
				addr := fmt.Sprintf(":%d", cfg.HTTPPort)
				logger.Info("http api listening", zap.String("addr", addr))
				if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			if cfg.RPCPort > 0 {
				g.Go(func() error {
					addr := fmt.Sprintf(":%d", cfg.RPCPort)
					logger.Info("rpc listening", zap.String("addr", addr))
					if err := rpcServer.Start(addr); err != nil {
						return fmt.Errorf("rpc server: %w", err)
					}
					return nil
				})
			}
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					logger.Warn("failed to shutdown http server gracefully", zap.Error(err))
				}
				if err := rpcServer.Shutdown(shutdownCtx); err != nil {
					logger.Warn("failed to shutdown rpc server gracefully", zap.Error(err))
				}
				return nil
			})

			if err := g.Wait(); err != nil {
				logger.Error("foodshare stopped", zap.Error(err))
				return err
			}
			logger.Info("foodshare stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides HTTP_PORT)")
	return cmd
}

func loadPolicy(ctx context.Context, path string) (*policy.Engine, error) {
	content := policy.DefaultPolicy
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read policy: %w", err)
		}
		content = string(data)
	}
	engine, err := policy.NewEngine(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}
	return engine, nil
}
