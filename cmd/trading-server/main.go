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
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/infrastructure/kafka"
	pgstore "github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/infrastructure/postgres"
	redisstore "github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/infrastructure/redis"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/ops"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/producer"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/rpc"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/session"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/utils"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"golang.org/x/sync/errgroup"
)

const eventDrainTimeout = 10 * time.Second

type priceStore interface {
	interfaces.PriceStore
	Ping(ctx context.Context) error
	Close() error
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
		log.Error("trading server stopped with error", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Info("trading server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	stopCollector := metrics.StartRuntimeMetricsCollector(ctx, 15*time.Second)
	defer stopCollector()

	store, err := openPriceStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	events, drainEvents, err := startEventSink(cfg, log)
	if err != nil {
		return err
	}

	svc := rpc.NewService(store, rpc.ServiceOptionsFromConfig(cfg), session.Deps{
		Logger: log,
		Events: events,
	})
	grpcServer := rpc.NewServer(cfg.GRPCAddr, svc, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Start(gctx)
	})
	g.Go(func() error {
		router := ops.NewRouter(map[string]ops.Check{cfg.PriceStore: store.Ping})
		return ops.Serve(gctx, cfg.HTTPAddr, router, log.Component("ops_http"))
	})
	if cfg.PprofAddr != "" {
		g.Go(func() error {
			return ops.Serve(gctx, cfg.PprofAddr, ops.NewPprofRouter(), log.Component("pprof"))
		})
	}

	err = g.Wait()
	// sessions are gone once the servers stop, so no event can follow
	drainEvents()
	return err
}

func openPriceStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (priceStore, error) {
	var store priceStore
	connect := func(ctx context.Context) error {
		switch cfg.PriceStore {
		case config.StorePostgres:
			s, err := pgstore.Open(ctx, cfg.PostgresDSN)
			if err != nil {
				return err
			}
			store = s
		default:
			s, err := redisstore.NewPriceStore(ctx, cfg)
			if err != nil {
				return err
			}
			store = s
		}
		return nil
	}

	log.Info("connecting to price store", logger.String("store", cfg.PriceStore))
	if err := utils.RetryWithConfig(ctx, connect, utils.ConnectRetryConfig(), log); err != nil {
		return nil, err
	}
	log.Info("price store connected", logger.String("store", cfg.PriceStore))
	return store, nil
}

// startEventSink wires the trade event channel to kafka. Without brokers the
// sessions publish into a no-op sink.
func startEventSink(cfg *config.Config, log *logger.Logger) (interfaces.EventPublisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, func() {}, nil
	}

	eventProducer, err := kafka.NewEventProducer(cfg)
	if err != nil {
		return nil, nil, err
	}

	events := producer.NewEventChannel(cfg.EventsChanBuff, log)
	worker := producer.NewKafkaWorker(eventProducer, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Start(context.Background(), events.Events())
	}()

	drain := func() {
		events.Close()
		select {
		case <-done:
		case <-time.After(eventDrainTimeout):
			log.Warn("timed out draining trade events", logger.Duration("timeout", eventDrainTimeout))
		}
	}
	return events, drain, nil
}
