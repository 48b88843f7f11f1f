// Package engine holds the enumeration engine: a board store, a per-square
// enable mask and a side-to-move register, driven one command at a time.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"chess-sweeper/board"
	"chess-sweeper/protocol"
)

var (
	ErrSquareRange  = protocol.ErrSquareRange
	ErrSelfAttack   = errors.New("engine: aggressor reported on its own destination")
	ErrNoProgress   = errors.New("engine: sweep exceeded its query bound")
	ErrBoardChanged = errors.New("engine: board changed during a sweep")
)

// Engine is safe for use by several goroutines; every command runs under one
// lock. It keeps no cursor: the progress of a sweep lives entirely in the
// enable mask.
type Engine struct {
	mu      sync.Mutex
	board   board.Board
	enabled board.SquareSet
	side    board.Color
}

// New returns an engine with an empty board, every square enabled and White
// to move.
func New() *Engine {
	return &Engine{enabled: board.AllSquares}
}

// Reset restores the state New returns.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.board.Reset()
	e.enabled = board.AllSquares
	e.side = board.White
}

func (e *Engine) SetPiece(sq board.Square, p board.Piece) error {
	if !sq.Valid() {
		return fmt.Errorf("set_piece %d: %w", sq, ErrSquareRange)
	}
	if !p.Valid() {
		return fmt.Errorf("set_piece %v: %w", sq, protocol.ErrInvalidPiece)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.board.SetPiece(sq, p)
	return nil
}

func (e *Engine) SetEnable(sq board.Square, on bool) error {
	if !sq.Valid() {
		return fmt.Errorf("set_enable %d: %w", sq, ErrSquareRange)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if on {
		e.enabled = e.enabled.With(sq)
	} else {
		e.enabled = e.enabled.Without(sq)
	}
	return nil
}

func (e *Engine) EnableAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = board.AllSquares
}

// EnableColor enables every square occupied by c. Other bits are untouched.
func (e *Engine) EnableColor(c board.Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = e.enabled.Union(e.board.Occupancy(c))
}

func (e *Engine) SelectSide(c board.Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.side = c
}

// FlipSide hands the move to the other side and returns it.
func (e *Engine) FlipSide() board.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.side = e.side.Other()
	return e.side
}

// FindVictim reports the next destination for side, or board.NoSquare.
func (e *Engine) FindVictim(side board.Color) board.Square {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ScanForDestination(&e.board, e.enabled, side)
}

// FindAggressor reports the next source of side reaching dst, or board.NoSquare.
func (e *Engine) FindAggressor(side board.Color, dst board.Square) (board.Square, error) {
	if !dst.Valid() {
		return board.NoSquare, fmt.Errorf("find_aggressor %d: %w", dst, ErrSquareRange)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return ScanForSource(&e.board, e.enabled, side, dst), nil
}

// Board returns a copy of the board store.
func (e *Engine) Board() board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board
}

// Key returns the Zobrist key of the stored placement.
func (e *Engine) Key() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Key()
}

func (e *Engine) Enabled() board.SquareSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

func (e *Engine) Side() board.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.side
}

// Load replaces the board with a copy of b, enables every square and sets
// the side to move.
func (e *Engine) Load(b *board.Board, side board.Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.board = *b
	e.enabled = board.AllSquares
	e.side = side
}

func (e *Engine) sideFor(cmd protocol.Command) board.Color {
	if cmd.Explicit {
		return cmd.Side
	}
	return e.Side()
}

// Handle executes one command. Only find_victim and find_aggressor return a
// meaningful response; the others return 0.
func (e *Engine) Handle(cmd protocol.Command) (protocol.Response, error) {
	if err := cmd.Validate(); err != nil {
		return 0, fmt.Errorf("%v: %w", cmd, err)
	}
	var resp protocol.Response
	switch cmd.Op {
	case protocol.OpNop:
	case protocol.OpReset:
		e.Reset()
	case protocol.OpSetPiece:
		if err := e.SetPiece(cmd.Square, cmd.Piece); err != nil {
			return 0, err
		}
	case protocol.OpSetEnable:
		if err := e.SetEnable(cmd.Square, cmd.Enable); err != nil {
			return 0, err
		}
	case protocol.OpEnableAll:
		e.EnableAll()
	case protocol.OpEnableColor:
		e.EnableColor(e.sideFor(cmd))
	case protocol.OpSelectSide:
		if cmd.Explicit {
			e.SelectSide(cmd.Side)
		} else {
			e.FlipSide()
		}
	case protocol.OpFindVictim:
		resp = protocol.ResponseFor(e.FindVictim(e.sideFor(cmd)))
	case protocol.OpFindAggressor:
		src, err := e.FindAggressor(e.sideFor(cmd), cmd.Square)
		if err != nil {
			return 0, err
		}
		resp = protocol.ResponseFor(src)
	}
	if cmd.Op.Query() {
		log.Debug().Str("cmd", cmd.String()).Str("resp", resp.String()).Msg("handled")
	} else {
		log.Debug().Str("cmd", cmd.String()).Uint64("key", e.Key()).Msg("handled")
	}
	return resp, nil
}

// Call runs cmd in-process, so an Engine can stand in for a remote caller.
func (e *Engine) Call(ctx context.Context, cmd protocol.Command) (protocol.Response, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.Handle(cmd)
}

// SetupCommands returns the commands that load b into a freshly reset engine
// with side to move.
func SetupCommands(b *board.Board, side board.Color) []protocol.Command {
	cmds := []protocol.Command{protocol.Reset()}
	for _, sq := range b.AllOccupancy().Squares() {
		cmds = append(cmds, protocol.SetPiece(sq, b.PieceAt(sq)))
	}
	return append(cmds, protocol.SelectSide(side), protocol.EnableAll())
}

// Load sends the setup commands for b through c.
func Load(ctx context.Context, c protocol.Caller, b *board.Board, side board.Color) error {
	for _, cmd := range SetupCommands(b, side) {
		if _, err := c.Call(ctx, cmd); err != nil {
			return fmt.Errorf("load %v: %w", cmd, err)
		}
	}
	return nil
}
