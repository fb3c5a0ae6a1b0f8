package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/demo"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/rpc"
)

func main() {
	envErr := godotenv.Load()

	log := logger.New()
	defer log.Sync()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn("could not load .env file", logger.Error(envErr))
	}

	defaultTarget := os.Getenv("TRADING_SERVER_ADDR")
	if defaultTarget == "" {
		defaultTarget = "localhost:9090"
	}
	target := flag.String("target", defaultTarget, "trading server address")
	symbol := flag.String("symbol", "AAPL", "symbol to subscribe to")
	orders := flag.Int("live-orders", demo.DefaultLiveOrders, "number of live trading orders")
	interval := flag.Duration("live-interval", demo.DefaultLiveInterval, "gap between live trading orders")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := rpc.Dial(*target)
	if err != nil {
		log.Fatal("failed to create client connection", logger.String("target", *target), logger.Error(err))
	}
	defer conn.Close()

	driver := demo.NewDriver(rpc.NewClient(conn), log).WithLivePacing(*orders, *interval)
	if err := driver.Run(ctx, *symbol); err != nil {
		log.Error("demo failed", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}
}
