package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"chess-sweeper/config"
	"chess-sweeper/engine"
	"chess-sweeper/protocol"
	"chess-sweeper/transport"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging(os.Stderr)
	log.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	bind, err := protocol.BindingByName(cfg.GetString(config.ConfigBinding))
	if err != nil {
		log.Fatal().Err(err).Msg("binding")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, bind); err != nil {
		log.Fatal().Err(err).Msg("engine stopped")
	}
	log.Info().Msg("server gracefully shutting down")
}

// serve runs the TCP server and, when a NATS URL is set, the NATS responder
// until sigCtx is done. A transport that fails first is returned as an
// error; a shutdown that outlasts GracefulShutdownTimeout is one too.
func serve(sigCtx context.Context, cfg *config.Config, bind protocol.Binding) error {
	// one engine per transport; the TCP peer and NATS requesters each get
	// their own board
	var nc *nats.Conn
	if url := cfg.GetString(config.ConfigNatsURL); url != "" {
		var err error
		if nc, err = nats.Connect(url, nats.Name("sweeper-engined")); err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()
	}

	g, gctx := errgroup.WithContext(sigCtx)
	srv := &transport.Server{Handler: engine.New(), Binding: bind}
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.GetString(config.ConfigListenAddr))
	})
	if nc != nil {
		r := &transport.Responder{Handler: engine.New(), Subject: cfg.GetString(config.ConfigNatsSubject)}
		g.Go(func() error {
			return r.Serve(gctx, nc)
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err == nil && sigCtx.Err() == nil {
			return errors.New("transports stopped without a signal")
		}
		return err
	case <-sigCtx.Done():
		log.Info().Msg("got quit signal...")
	}
	select {
	case err := <-done:
		return err
	case <-time.After(GracefulShutdownTimeout):
		return errors.New("timed out waiting for connections to close")
	}
}
