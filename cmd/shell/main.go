package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"chess-sweeper/config"
	"chess-sweeper/engine"
	"chess-sweeper/protocol"
	"chess-sweeper/shell"
	"chess-sweeper/transport"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging(os.Stderr)
	log.Debug().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	var caller protocol.Caller
	switch cfg.GetString(config.ConfigRemote) {
	case "tcp":
		bind, err := protocol.BindingByName(cfg.GetString(config.ConfigBinding))
		if err != nil {
			log.Fatal().Err(err).Msg("binding")
		}
		addr := cfg.GetString(config.ConfigListenAddr)
		c, err := transport.Dial(ctx, addr, bind)
		if err != nil {
			log.Fatal().Err(err).Str("addr", addr).Msg("dial")
		}
		defer c.Close()
		caller = c
		log.Info().Str("addr", addr).Str("binding", bind.Name()).Msg("connected")
	case "nats":
		nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL), nats.Name("sweeper-shell"))
		if err != nil {
			log.Fatal().Err(err).Msg("nats connect")
		}
		defer nc.Close()
		caller = transport.NewNATSClient(nc, cfg.GetString(config.ConfigNatsSubject),
			cfg.GetDuration(config.ConfigNatsTimeout))
	default:
		caller = engine.New()
	}

	sc := shell.NewController(caller)
	if err := sc.Loop(ctx, cfg.GetString(config.ConfigHistoryFile)); err != nil {
		log.Error().Err(err).Msg("shell")
	}
}
