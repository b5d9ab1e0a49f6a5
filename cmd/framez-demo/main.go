// Command framez-demo streams random frames through a StreamingFrame and
// logs running aggregates: the whole-history mean, a rolling mean over the
// last N rows, and the mean of x grouped by y.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/framez"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		freq     time.Duration
		interval time.Duration
		window   int
		runFor   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "framez-demo",
		Short: "Stream random frames and print running aggregates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), freq, interval, window, runFor)
		},
	}

	cmd.Flags().DurationVar(&freq, "freq", 100*time.Millisecond, "time spacing between generated rows")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "time between emitted frames")
	cmd.Flags().IntVar(&window, "window", 20, "rolling window size in rows")
	cmd.Flags().DurationVar(&runFor, "run-for", 10*time.Second, "how long to run before exiting (0 = until interrupted)")

	return cmd
}

func run(ctx context.Context, freq, interval time.Duration, window int, runFor time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runFor)
		defer cancel()
	}

	sf := framez.NewStreamingFrame(framez.RandomSchema())

	sf.Mean().Series().Each(func(s *framez.Series) error {
		logger.Info("running mean", seriesAttrs(s)...)
		return nil
	})

	sf.Rolling(framez.CountWindow(window)).Mean().Frames().Each(func(f *framez.Frame) error {
		if f.Len() == 0 {
			return nil
		}
		logger.Info("rolling mean", lastRowAttrs(f)...)
		return nil
	})

	grouped, err := sf.GroupBy("y")
	if err != nil {
		return err
	}
	grouped.Mean().Frames().Each(func(f *framez.Frame) error {
		s, err := f.Col("x")
		if err != nil {
			return err
		}
		logger.Info("mean of x grouped by y", seriesAttrs(s)...)
		return nil
	})

	source := framez.NewRandomSource(freq, interval, framez.RealClock)
	logger.Info("streaming random frames",
		"freq", freq, "interval", interval, "window", window)

	err = source.Run(ctx, sf)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// seriesAttrs renders a label-indexed series as logger attributes.
func seriesAttrs(s *framez.Series) []any {
	labels := s.Index().Labels()
	attrs := make([]any, 0, len(labels)*2)
	for _, label := range labels {
		v, _ := s.Value(label)
		attrs = append(attrs, label, v)
	}
	return attrs
}

// lastRowAttrs renders the newest row of a frame as logger attributes.
func lastRowAttrs(f *framez.Frame) []any {
	last := f.Len() - 1
	cols := f.Columns()
	attrs := make([]any, 0, len(cols)*2)
	for _, name := range cols {
		s, err := f.Col(name)
		if err != nil {
			continue
		}
		attrs = append(attrs, name, s.Float(last))
	}
	return attrs
}
