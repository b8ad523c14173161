package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/slickwilli/neoview/config"
	"github.com/slickwilli/neoview/pkg/clients/glucoseapi"
	"github.com/slickwilli/neoview/pkg/devicelink"
	"github.com/slickwilli/neoview/pkg/ingest"
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

	conf, err := config.LoadBridge()
	if err != nil {
		logger.Fatal("unable to build configuration", zap.Error(err))
	}

	client, err := glucoseapi.NewClient(conf.APIURL, &http.Client{})
	if err != nil {
		logger.Fatal("unable to build glucose api client", zap.Error(err))
	}
	adapter := ingest.NewAdapter(client, logger,
		ingest.WithDeviceID(conf.DeviceID),
		ingest.WithTimeout(conf.RequestTimeout),
	)

	machine := devicelink.NewMachine()
	machine.OnChange(func(from, to devicelink.State, cause error) {
		fields := []zap.Field{zap.Stringer("from", from), zap.Stringer("to", to)}
		if cause != nil {
			fields = append(fields, zap.Error(cause))
		}
		logger.Info("device link state changed", fields...)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = devicelink.WithMachine(ctx, machine)

	if err := devicelink.NewSession(newLink(conf), logger).Run(ctx, adapter.Handle); err != nil {
		logger.Error("device link failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("exiting neoview bridge")
}

func newLink(conf *config.BridgeConfig) devicelink.Link {
	if conf.Link == config.LinkWebSocket {
		return devicelink.NewWebSocketLink(conf.WebSocketURL, nil)
	}
	return devicelink.NewSimulator(devicelink.SimulatorOptions{
		Interval: conf.SimulatorInterval,
		Min:      conf.SimulatorMin,
		Max:      conf.SimulatorMax,
	})
}
