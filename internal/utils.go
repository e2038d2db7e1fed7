package utils

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

var QuitChan = make(chan os.Signal, 1)

// NewLogger builds a production zap logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	return buildLogger(zap.NewProductionConfig(), level)
}

func buildLogger(cfg zap.Config, level string) (*zap.Logger, error) {
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// WithSignalCancel returns a context cancelled on SIGINT or SIGTERM.
func WithSignalCancel(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signal.Notify(QuitChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-QuitChan:
			logger.Warn("received signal, stopping upload", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(QuitChan)
		cancel()
	}
}

func Shutdown(reason string) {
	fmt.Fprintf(os.Stderr, "🚨 %s\n", reason)
	os.Exit(1)
}
