package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"chess-sweeper/protocol"
)

// ErrorHeader carries a batch failure back to the requester.
const ErrorHeader = "Sweeper-Error"

// A NATS request is a batch of command words, two bytes each, high byte
// first. The reply holds one response byte per query in the batch.

// EncodeBatch packs cmds as command words.
func EncodeBatch(cmds []protocol.Command) []byte {
	out := make([]byte, 0, 2*len(cmds))
	for _, cmd := range cmds {
		b := protocol.EncodeWord(cmd).Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// DecodeBatch unpacks a request payload.
func DecodeBatch(data []byte) ([]protocol.Command, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: batch of %d bytes", protocol.ErrShortWord, len(data))
	}
	cmds := make([]protocol.Command, 0, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		cmd, err := protocol.DecodeWord(protocol.WordFromBytes(data[i], data[i+1]))
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i/2, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Responder answers command batches published on Subject.
type Responder struct {
	Handler protocol.Handler
	Subject string
}

// Process runs one request payload and returns the reply payload. The batch
// is decoded in full before any command runs.
func (r *Responder) Process(data []byte) ([]byte, error) {
	cmds, err := DecodeBatch(data)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, cmd := range cmds {
		resp, err := r.Handler.Handle(cmd)
		if err != nil {
			return out, fmt.Errorf("%v: %w", cmd, err)
		}
		if cmd.Op.Query() {
			out = append(out, byte(resp))
		}
	}
	return out, nil
}

func (r *Responder) handle(m *nats.Msg) {
	log.Debug().Int("bytes", len(m.Data)).Msg("batch-received")
	reply := nats.NewMsg(m.Reply)
	data, err := r.Process(m.Data)
	reply.Data = data
	if err != nil {
		log.Err(err).Msg("batch-failed")
		reply.Header.Set(ErrorHeader, err.Error())
	}
	if err := m.RespondMsg(reply); err != nil {
		log.Err(err).Msg("respond-failed")
	}
}

// Serve subscribes on nc and answers requests until ctx is cancelled, then
// drains the subscription.
func (r *Responder) Serve(ctx context.Context, nc *nats.Conn) error {
	sub, err := nc.Subscribe(r.Subject, r.handle)
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	log.Info().Str("subject", r.Subject).Msg("listening")
	<-ctx.Done()
	return sub.Drain()
}

// NATSClient is a protocol.Caller over NATS request/reply. Requests that time
// out or find no responder are retried.
type NATSClient struct {
	nc       *nats.Conn
	subject  string
	timeout  time.Duration
	attempts uint
}

func NewNATSClient(nc *nats.Conn, subject string, timeout time.Duration) *NATSClient {
	return &NATSClient{nc: nc, subject: subject, timeout: timeout, attempts: 3}
}

// Batch sends cmds in one request and returns the query responses in order.
func (c *NATSClient) Batch(ctx context.Context, cmds []protocol.Command) ([]protocol.Response, error) {
	data := EncodeBatch(cmds)
	var msg *nats.Msg
	err := retry.Do(
		func() error {
			rctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			var err error
			msg, err = c.nc.RequestWithContext(rctx, c.subject, data)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) ||
				errors.Is(err, nats.ErrNoResponders)
		}),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Msg("request-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return nil, err
	}
	if e := msg.Header.Get(ErrorHeader); e != "" {
		return nil, fmt.Errorf("remote: %s", e)
	}
	out := make([]protocol.Response, len(msg.Data))
	for i, b := range msg.Data {
		out[i] = protocol.Response(b)
		if err := out[i].Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *NATSClient) Call(ctx context.Context, cmd protocol.Command) (protocol.Response, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	resps, err := c.Batch(ctx, []protocol.Command{cmd})
	if err != nil {
		return 0, err
	}
	if cmd.Op.Query() {
		if len(resps) != 1 {
			return 0, fmt.Errorf("%w: %d responses to %v", protocol.ErrFraming, len(resps), cmd)
		}
		return resps[0], nil
	}
	return 0, nil
}
