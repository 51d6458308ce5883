package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"racing-line-follower/internal/logging"
	"racing-line-follower/internal/telemetry"
)

func renderSession(store *telemetry.Store, session, out string) (int, error) {
	records, err := store.Records(session)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	if err := telemetry.Render(f, "Telemetry "+session, records); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", out, err)
	}
	return len(records), nil
}

func main() {
	addr := flag.String("listen", telemetry.DefaultAddr, "UDP address to receive telemetry on")
	dbPath := flag.String("db", "telemetry.db", "sqlite database for recorded sessions")
	out := flag.String("html", "telemetry.html", "HTML chart output")
	duration := flag.Duration("duration", 0, "Stop recording after this long (0 waits for Ctrl-C)")
	session := flag.String("session", "", "Render an existing session instead of recording")
	list := flag.Bool("list", false, "List recorded sessions and exit")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log, err := logging.New(*level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	store, err := telemetry.OpenStore(*dbPath)
	if err != nil {
		log.Fatal("failed to open telemetry store", zap.Error(err))
	}
	defer store.Close()

	if *list {
		sessions, err := store.Sessions()
		if err != nil {
			log.Fatal("failed to list sessions", zap.Error(err))
		}
		for _, s := range sessions {
			log.Info("session",
				zap.String("id", s.ID),
				zap.Time("started", s.Started),
				zap.String("source", s.Source),
				zap.Int("records", s.Records),
			)
		}
		return
	}

	if *session != "" {
		n, err := renderSession(store, *session, *out)
		if err != nil {
			log.Fatal("failed to render session", zap.Error(err))
		}
		log.Info("charts written", zap.String("path", *out), zap.Int("records", n))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	listener, err := telemetry.Listen(*addr, log)
	if err != nil {
		log.Fatal("failed to listen for telemetry", zap.Error(err))
	}
	sink, err := telemetry.NewStoreSink(store, listener.Addr())
	if err != nil {
		log.Fatal("failed to start session", zap.Error(err))
	}
	log.Info("recording telemetry", zap.String("session", sink.Session()))

	started := time.Now()
	err = listener.Serve(ctx, sink.Emit)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Error("telemetry listener failed", zap.Error(err))
	}
	if sink.Failed() > 0 {
		log.Warn("some records were not stored", zap.Int("failed", sink.Failed()))
	}

	n, err := renderSession(store, sink.Session(), *out)
	if err != nil {
		log.Fatal("failed to render session", zap.Error(err))
	}
	log.Info("charts written",
		zap.String("path", *out),
		zap.Int("records", n),
		zap.Duration("recorded_for", time.Since(started)),
	)
}
