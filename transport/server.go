// Package transport carries protocol commands to an engine over TCP or NATS.
package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"chess-sweeper/protocol"
)

// Server serves one binding on a stream listener. Connections share the
// handler; each command is applied atomically but there are no sessions.
type Server struct {
	Handler protocol.Handler
	Binding protocol.Binding
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln and
// every open connection and waits for them.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log.Info().Str("addr", ln.Addr().String()).Str("binding", s.Binding.Name()).Msg("serving")
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			g.Go(func() error {
				defer conn.Close()
				stop := context.AfterFunc(ctx, func() { conn.Close() })
				defer stop()
				addr := conn.RemoteAddr().String()
				log.Info().Str("remote", addr).Msg("connection-opened")
				err := s.ServeConn(ctx, conn)
				if err != nil && ctx.Err() == nil {
					log.Err(err).Str("remote", addr).Msg("connection-failed")
				}
				log.Info().Str("remote", addr).Msg("connection-closed")
				return nil
			})
		}
	})
	err := g.Wait()
	if errors.Is(err, net.ErrClosed) && ctx.Err() != nil {
		return nil
	}
	return err
}

// ServeConn answers commands read from rw until it reaches EOF. Commands that
// fail to decode are logged and skipped. A query that fails to decode or that
// the handler rejects is still answered, with NotFound, so the peer stays in
// step.
func (s *Server) ServeConn(ctx context.Context, rw io.ReadWriter) error {
	r := bufio.NewReader(rw)
	w := bufio.NewWriter(rw)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd, err := s.Binding.ReadCommand(r)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if isDecodeError(err) {
				log.Err(err).Msg("bad-command")
				var de *protocol.DecodeError
				if errors.As(err, &de) && de.Op.Query() {
					if err := s.reply(w, protocol.NotFound); err != nil {
						return err
					}
				}
				continue
			}
			return err
		}
		resp, err := s.Handler.Handle(cmd)
		if err != nil {
			log.Err(err).Str("cmd", cmd.String()).Msg("command-failed")
			resp = protocol.NotFound
		}
		if !cmd.Op.Query() {
			continue
		}
		if err := s.reply(w, resp); err != nil {
			return err
		}
	}
}

func (s *Server) reply(w *bufio.Writer, resp protocol.Response) error {
	if err := s.Binding.WriteResponse(w, resp); err != nil {
		return err
	}
	return w.Flush()
}

func isDecodeError(err error) bool {
	return errors.Is(err, protocol.ErrInvalidOp) ||
		errors.Is(err, protocol.ErrInvalidPiece) ||
		errors.Is(err, protocol.ErrSquareRange) ||
		errors.Is(err, protocol.ErrFraming)
}
