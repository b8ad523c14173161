package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/slickwilli/neoview/config"
	"github.com/slickwilli/neoview/pkg/api"
	"github.com/slickwilli/neoview/pkg/store"
)

func main() {
	logConf := zap.NewProductionConfig()
	logConf.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	logConf.DisableCaller = true
	logger, err := logConf.Build()
	if err != nil {
		log.Fatal("error building zap logger", err)
	}
	defer logger.Sync()

	conf, err := config.LoadServer()
	if err != nil {
		logger.Fatal("unable to build configuration", zap.Error(err))
	}

	st, closeStore, err := openStore(context.Background(), logger, conf)
	if err != nil {
		logger.Fatal("unable to open reading store", zap.Error(err))
	}
	defer closeStore()

	app := api.NewServer(st, logger, api.WithHistoryLimit(conf.DefaultHistoryLimit)).NewApp()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("exiting neoview api")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("error shutting down http server", zap.Error(err))
		}
	}()

	logger.Info("starting neoview api", zap.String("addr", conf.ListenAddr), zap.String("store", conf.StoreBackend))
	if err := app.Listen(conf.ListenAddr); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}

// openStore builds the configured store, wrapped in the Redis stats cache when
// a Redis address is set.
func openStore(ctx context.Context, logger *zap.Logger, conf *config.ServerConfig) (store.Store, func(), error) {
	var (
		st      store.Store
		closers []func()
	)
	switch conf.StoreBackend {
	case config.StoreClickHouse:
		ch, err := store.NewClickHouseStore(ctx, logger, store.ClickHouseOptions{
			Addresses: conf.ClickHouseAddresses,
			Database:  conf.ClickHouseDatabase,
			Username:  conf.ClickHouseUsername,
			Password:  conf.ClickHousePassword,
		})
		if err != nil {
			return nil, nil, err
		}
		st = ch
		closers = append(closers, func() { _ = ch.Close() })
	default:
		st = store.NewMemoryStore()
	}

	if conf.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, stats will not be cached until it is reachable", zap.Error(err))
		}
		st = store.NewStatsCache(st, client, conf.StatsCacheTTL, logger)
		closers = append(closers, func() { _ = client.Close() })
	}

	return st, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}
