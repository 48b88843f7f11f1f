// Package shell is a line-oriented front end to an engine, local or remote.
// Each text command maps onto one or more protocol commands.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"chess-sweeper/board"
	"chess-sweeper/engine"
	"chess-sweeper/protocol"
	"chess-sweeper/render"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

const helpText = `commands:
  reset                      empty board, all squares enabled, white to move
  fen <fen>                  load a position
  piece <square> <piece|.>   set or clear one square
  enable <square> on|off     set one enable bit
  enableall                  enable every square
  enablecolor [w|b]          enable the squares of a color (default: side to move)
  side [w|b]                 select the side to move (no argument flips it)
  victim [w|b]               find the next destination
  aggressor <square> [w|b]   find the next source reaching a square
  sweep [w|b] [divide]       enumerate every pair
  word <hex>                 execute a raw 16-bit command word
  show                       print the board
  render <file.svg>          write the board and last sweep as SVG
  help                       this text
  quit                       leave`

type Response struct {
	message string
}

func (r *Response) String() string { return r.message }

func msg(message string) *Response { return &Response{message: message} }

type shellcmd struct {
	cmd  string
	args []string
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return &shellcmd{cmd: strings.ToLower(fields[0]), args: fields[1:]}, nil
}

// Controller runs shell commands against a protocol.Caller. It mirrors the
// board and side it has set so that show and render work over any transport.
type Controller struct {
	caller    protocol.Caller
	pos       board.Board
	side      board.Color
	lastPairs []engine.Pair
}

func NewController(c protocol.Caller) *Controller {
	return &Controller{caller: c}
}

func (sc *Controller) call(ctx context.Context, cmd protocol.Command) (protocol.Response, error) {
	resp, err := sc.caller.Call(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return resp, resp.Validate()
}

// sideArg parses an optional color argument. ok is false when none is given.
func sideArg(args []string, i int) (c board.Color, ok bool, err error) {
	if len(args) <= i {
		return 0, false, nil
	}
	c, ok = board.ParseColor(args[i])
	if !ok {
		return 0, false, fmt.Errorf("bad color %q", args[i])
	}
	return c, true, nil
}

func squareArg(args []string, i int) (board.Square, error) {
	if len(args) <= i {
		return board.NoSquare, errors.New("missing square")
	}
	return board.ParseSquare(args[i])
}

// Execute runs one line.
func (sc *Controller) Execute(ctx context.Context, line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil || cmd == nil {
		return nil, err
	}
	switch cmd.cmd {
	case "help":
		return msg(helpText), nil
	case "quit", "exit", "bye":
		return nil, ErrQuit
	case "reset":
		return sc.reset(ctx)
	case "fen":
		return sc.fen(ctx, cmd)
	case "piece":
		return sc.piece(ctx, cmd)
	case "enable":
		return sc.enable(ctx, cmd)
	case "enableall":
		_, err := sc.call(ctx, protocol.EnableAll())
		return msg("ok"), err
	case "enablecolor":
		c, ok, err := sideArg(cmd.args, 0)
		if err != nil {
			return nil, err
		}
		pc := protocol.EnableFriendly()
		if ok {
			pc = protocol.EnableColor(c)
		}
		_, err = sc.call(ctx, pc)
		return msg("ok"), err
	case "side":
		return sc.selectSide(ctx, cmd)
	case "victim":
		return sc.victim(ctx, cmd)
	case "aggressor":
		return sc.aggressor(ctx, cmd)
	case "sweep":
		return sc.sweep(ctx, cmd)
	case "word":
		return sc.word(ctx, cmd)
	case "show":
		return msg(fmt.Sprintf("%s%s to move\n%s\nkey %016x", sc.pos.String(), sc.side, sc.pos.FEN(sc.side), sc.pos.Key())), nil
	case "render":
		return sc.render(cmd)
	}
	log.Debug().Msgf("you said: %v", strconv.Quote(line))
	return nil, fmt.Errorf("unknown command %q, try help", cmd.cmd)
}

func (sc *Controller) reset(ctx context.Context) (*Response, error) {
	if _, err := sc.call(ctx, protocol.Reset()); err != nil {
		return nil, err
	}
	sc.pos.Reset()
	sc.side = board.White
	sc.lastPairs = nil
	return msg("ok"), nil
}

func (sc *Controller) fen(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: fen <fen>")
	}
	b, side, err := board.ParseFEN(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	if err := engine.Load(ctx, sc.caller, b, side); err != nil {
		return nil, err
	}
	sc.pos = *b
	sc.side = side
	sc.lastPairs = nil
	return msg(fmt.Sprintf("loaded %d pieces, %v to move", b.Count(), side)), nil
}

func (sc *Controller) piece(ctx context.Context, cmd *shellcmd) (*Response, error) {
	sq, err := squareArg(cmd.args, 0)
	if err != nil {
		return nil, err
	}
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: piece <square> <piece|.>")
	}
	p, ok := board.ParsePiece(cmd.args[1])
	if !ok {
		return nil, fmt.Errorf("bad piece %q", cmd.args[1])
	}
	if _, err := sc.call(ctx, protocol.SetPiece(sq, p)); err != nil {
		return nil, err
	}
	sc.pos.SetPiece(sq, p)
	return msg("ok"), nil
}

func (sc *Controller) enable(ctx context.Context, cmd *shellcmd) (*Response, error) {
	sq, err := squareArg(cmd.args, 0)
	if err != nil {
		return nil, err
	}
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: enable <square> on|off")
	}
	var on bool
	switch strings.ToLower(cmd.args[1]) {
	case "on", "1", "true":
		on = true
	case "off", "0", "false":
	default:
		return nil, fmt.Errorf("bad enable value %q", cmd.args[1])
	}
	_, err = sc.call(ctx, protocol.SetEnable(sq, on))
	return msg("ok"), err
}

func (sc *Controller) selectSide(ctx context.Context, cmd *shellcmd) (*Response, error) {
	c, ok, err := sideArg(cmd.args, 0)
	if err != nil {
		return nil, err
	}
	pc := protocol.FlipSide()
	next := sc.side.Other()
	if ok {
		pc = protocol.SelectSide(c)
		next = c
	}
	if _, err := sc.call(ctx, pc); err != nil {
		return nil, err
	}
	sc.side = next
	return msg(next.String() + " to move"), nil
}

func (sc *Controller) victim(ctx context.Context, cmd *shellcmd) (*Response, error) {
	c, ok, err := sideArg(cmd.args, 0)
	if err != nil {
		return nil, err
	}
	pc := protocol.FindVictimCurrent()
	if ok {
		pc = protocol.FindVictim(c)
	}
	resp, err := sc.call(ctx, pc)
	if err != nil {
		return nil, err
	}
	return msg(resp.String()), nil
}

func (sc *Controller) aggressor(ctx context.Context, cmd *shellcmd) (*Response, error) {
	sq, err := squareArg(cmd.args, 0)
	if err != nil {
		return nil, err
	}
	c, ok, err := sideArg(cmd.args, 1)
	if err != nil {
		return nil, err
	}
	pc := protocol.Command{Op: protocol.OpFindAggressor, Square: sq}
	if ok {
		pc = protocol.FindAggressor(c, sq)
	}
	resp, err := sc.call(ctx, pc)
	if err != nil {
		return nil, err
	}
	return msg(resp.String()), nil
}

func (sc *Controller) sweep(ctx context.Context, cmd *shellcmd) (*Response, error) {
	side := sc.side
	divide := false
	for _, a := range cmd.args {
		if a == "divide" {
			divide = true
			continue
		}
		c, ok := board.ParseColor(a)
		if !ok {
			return nil, fmt.Errorf("bad sweep argument %q", a)
		}
		side = c
	}
	pairs, st, err := engine.WalkAll(ctx, sc.caller, side)
	if err != nil {
		return nil, err
	}
	sc.lastPairs = pairs
	var sb strings.Builder
	if divide {
		div := engine.Divide(pairs)
		dsts := lo.Keys(div)
		slices.Sort(dsts)
		for _, dst := range dsts {
			srcs := lo.Map(div[dst], func(s board.Square, _ int) string { return s.String() })
			fmt.Fprintf(&sb, "%v: %s\n", dst, strings.Join(srcs, " "))
		}
	} else {
		for i, p := range pairs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(p.String())
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%d pairs, %d destinations, %d queries", st.Pairs, st.Destinations, st.Queries)
	return msg(sb.String()), nil
}

func (sc *Controller) word(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: word <hex>")
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(cmd.args[0]), "0x"), 16, 16)
	if err != nil {
		return nil, err
	}
	pc, err := protocol.DecodeWord(protocol.Word(v))
	if err != nil {
		return nil, err
	}
	resp, err := sc.call(ctx, pc)
	if err != nil {
		return nil, err
	}
	switch pc.Op {
	case protocol.OpSetPiece:
		sc.pos.SetPiece(pc.Square, pc.Piece)
	case protocol.OpReset:
		sc.pos.Reset()
		sc.side = board.White
	case protocol.OpSelectSide:
		if pc.Explicit {
			sc.side = pc.Side
		} else {
			sc.side = sc.side.Other()
		}
	}
	if pc.Op.Query() {
		return msg(fmt.Sprintf("%v -> %#04x %v", pc, uint8(resp), resp)), nil
	}
	return msg(pc.String()), nil
}

func (sc *Controller) render(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: render <file.svg>")
	}
	f, err := os.Create(cmd.args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var targets board.SquareSet
	for _, p := range sc.lastPairs {
		targets = targets.With(p.To)
	}
	render.SVG(f, &sc.pos, render.Options{Targets: targets, Pairs: sc.lastPairs, Coordinates: true})
	return msg("wrote " + cmd.args[0]), nil
}
