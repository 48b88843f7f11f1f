package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/matryer/is"

	"chess-sweeper/config"
	"chess-sweeper/protocol"
)

func testConfig(t *testing.T, addr string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Load([]string{"--listen-addr", addr}); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestServeFailsWhenPortTaken(t *testing.T) {
	is := is.New(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	is.NoErr(err)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = serve(ctx, testConfig(t, ln.Addr().String()), protocol.WordBinding{})
	is.True(err != nil) // a bind failure is an error, not a clean shutdown
	is.NoErr(ctx.Err()) // and it is reported before any signal
}

func TestServeStopsCleanlyOnSignal(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- serve(ctx, testConfig(t, "127.0.0.1:0"), protocol.SerialBinding{}) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	is.NoErr(<-errc)
}
