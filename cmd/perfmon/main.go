package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/perfmon/internal/config"
	"codeberg.org/mutker/perfmon/internal/errors"
	"codeberg.org/mutker/perfmon/internal/logger"
	"codeberg.org/mutker/perfmon/internal/perfdata"
	"codeberg.org/mutker/perfmon/internal/performance"
)

const (
	actionShow = "show"
	actionDemo = "demo"

	demoRounds    = 5
	demoBlockSize = 1 << 20
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel == string(config.LogLevelDebug), true, logger.IsService())
	if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
		logger.SetLogLevel(level)
	}
	logger.Debug().Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("perfmon failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	action := actionShow
	if len(cfg.Args) > 0 {
		action = cfg.Args[0]
	}

	switch action {
	case actionShow:
		if err := show(ctx, cfg, out); err != nil {
			return errors.Wrap(errors.ErrShowReport, err)
		}
	case actionDemo:
		if err := demo(ctx, cfg, out); err != nil {
			return errors.Wrap(errors.ErrRunDemo, err)
		}
	default:
		return errors.New().WithData(errors.ErrUnknownAction, action)
	}

	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// show prints the per-operation summary of the configured store.
func show(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store, err := perfdata.NewStore(cfg.Database, logger.Default())
	if err != nil {
		return err
	}

	records, err := store.ReadAll(ctx)
	if err != nil {
		return err
	}

	logger.Debug().
		Str("path", store.Path()).
		Int("records", len(records)).
		Msg("Loaded performance records")

	return perfdata.WriteReport(out, perfdata.Summarize(records))
}

// demo measures a synthetic workload and flushes it to the configured sink.
func demo(ctx context.Context, cfg *config.Config, out io.Writer) error {
	root, err := performance.New("demo", cfg.Performance(), performance.WithOutput(out))
	if err != nil {
		return err
	}
	ctx = performance.WithMonitor(ctx, root)

	err = performance.Measure(root, func() error {
		return workload(ctx)
	})
	if err != nil {
		return err
	}

	return root.Flush(ctx)
}

func workload(ctx context.Context) error {
	mon := performance.FromContext(ctx)
	allocating := mon.Child("allocating blocks")
	hashing := mon.Child("hashing blocks")

	var blocks [][]byte
	for round := 0; round < demoRounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_ = performance.Measure(allocating, func() error {
			block := make([]byte, demoBlockSize)
			for i := range block {
				block[i] = byte(i + round)
			}
			blocks = append(blocks, block)
			return nil
		})

		_ = performance.Measure(hashing, func() error {
			for _, block := range blocks {
				sha256.Sum256(block)
			}
			return nil
		})
	}

	logger.Debug().Int("blocks", len(blocks)).Msg("Demo workload finished")

	return nil
}
