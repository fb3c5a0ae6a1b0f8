package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/config"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/infrastructure/alpaca"
	pgstore "github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/infrastructure/postgres"
	redisstore "github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/infrastructure/redis"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/mockdata"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/ops"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/pipeline"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/utils"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"golang.org/x/sync/errgroup"
)

type priceWriter interface {
	interfaces.PriceWriter
	Ping(ctx context.Context) error
}

func main() {
	envErr := godotenv.Load()

	log := logger.New()
	defer log.Sync()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn("could not load .env file", logger.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Getenv, log)
	if err != nil {
		log.Fatal("failed to load configuration", logger.Error(err))
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error("price ingestor stopped with error", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Info("price ingestor stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	stopCollector := metrics.StartRuntimeMetricsCollector(ctx, 15*time.Second)
	defer stopCollector()

	writer, err := openPriceWriter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer writer.Close()

	source, err := openMarketData(ctx, cfg, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pipeline.New(source, writer, cfg, log).Run(gctx)
	})
	g.Go(func() error {
		router := ops.NewRouter(map[string]ops.Check{cfg.PriceStore: writer.Ping})
		return ops.Serve(gctx, cfg.HTTPAddr, router, log.Component("ops_http"))
	})
	if cfg.PprofAddr != "" {
		g.Go(func() error {
			return ops.Serve(gctx, cfg.PprofAddr, ops.NewPprofRouter(), log.Component("pprof"))
		})
	}
	return g.Wait()
}

func openMarketData(ctx context.Context, cfg *config.Config, log *logger.Logger) (interfaces.MarketDataClient, error) {
	if cfg.MockMarketData {
		log.Info("using mock market data")
		return mockdata.NewGenerator(mockdata.DefaultConfig(), log), nil
	}
	client, err := alpaca.NewClient(ctx, log)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func openPriceWriter(ctx context.Context, cfg *config.Config, log *logger.Logger) (priceWriter, error) {
	var writer priceWriter
	connect := func(ctx context.Context) error {
		switch cfg.PriceStore {
		case config.StorePostgres:
			w, err := pgstore.Open(ctx, cfg.PostgresDSN)
			if err != nil {
				return err
			}
			writer = w
		default:
			w, err := redisstore.NewPriceStore(ctx, cfg)
			if err != nil {
				return err
			}
			writer = w
		}
		return nil
	}

	if err := utils.RetryWithConfig(ctx, connect, utils.ConnectRetryConfig(), log); err != nil {
		return nil, err
	}
	log.Info("price store connected", logger.String("store", cfg.PriceStore))
	return writer, nil
}
