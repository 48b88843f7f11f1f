// Package protocol defines the engine's command set and its two wire
// bindings: a fixed-width word binding and a chip-select framed
// nibble-serial binding.
package protocol

import (
	"context"
	"errors"
	"fmt"

	"chess-sweeper/board"
)

var (
	ErrInvalidOp    = errors.New("protocol: invalid opcode")
	ErrInvalidPiece = errors.New("protocol: invalid piece nibble")
	ErrSquareRange  = errors.New("protocol: square out of range")
	ErrReservedBit  = errors.New("protocol: reserved response bit set")
	ErrFraming      = errors.New("protocol: bad transaction framing")
	ErrShortWord    = errors.New("protocol: stream ended inside a command word")
)

// DecodeError is a command that failed to decode after its opcode was read.
// A server uses Op to keep a query answered.
type DecodeError struct {
	Op  Op
	Err error
}

func (e *DecodeError) Error() string { return e.Op.String() + ": " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// Op is a 4-bit opcode.
type Op uint8

const (
	OpNop           Op = 0x0
	OpEnableColor   Op = 0x8
	OpReset         Op = 0x9
	OpSelectSide    Op = 0xA
	OpSetPiece      Op = 0xB
	OpEnableAll     Op = 0xC
	OpSetEnable     Op = 0xD
	OpFindVictim    Op = 0xE
	OpFindAggressor Op = 0xF
)

var opNames = map[Op]string{
	OpNop:           "nop",
	OpEnableColor:   "enable_color",
	OpReset:         "reset",
	OpSelectSide:    "select_side",
	OpSetPiece:      "set_piece",
	OpEnableAll:     "enable_all",
	OpSetEnable:     "set_enable",
	OpFindVictim:    "find_victim",
	OpFindAggressor: "find_aggressor",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%#x)", uint8(op))
}

// Valid reports whether op is a defined opcode.
func (op Op) Valid() bool {
	_, ok := opNames[op]
	return ok
}

// Query reports whether op produces a response.
func (op Op) Query() bool { return op == OpFindVictim || op == OpFindAggressor }

// HasSide reports whether op carries a side operand.
func (op Op) HasSide() bool {
	switch op {
	case OpEnableColor, OpSelectSide, OpFindVictim, OpFindAggressor:
		return true
	}
	return false
}

// HasSquare reports whether op carries a square operand.
func (op Op) HasSquare() bool {
	return op == OpSetPiece || op == OpSetEnable || op == OpFindAggressor
}

// HasValue reports whether op carries a value nibble.
func (op Op) HasValue() bool { return op == OpSetPiece || op == OpSetEnable }

// Command is one decoded request. Fields an op does not use are zero.
//
// Side is only meaningful when Explicit is set; otherwise enable_color and
// the find operations use the engine's side to move, and select_side flips it.
type Command struct {
	Op       Op
	Explicit bool
	Side     board.Color
	Square   board.Square
	Piece    board.Piece
	Enable   bool
}

func Nop() Command       { return Command{Op: OpNop} }
func Reset() Command     { return Command{Op: OpReset} }
func EnableAll() Command { return Command{Op: OpEnableAll} }

func SetPiece(sq board.Square, p board.Piece) Command {
	return Command{Op: OpSetPiece, Square: sq, Piece: p}
}

func SetEnable(sq board.Square, on bool) Command {
	return Command{Op: OpSetEnable, Square: sq, Enable: on}
}

// EnableColor re-enables every square held by c.
func EnableColor(c board.Color) Command {
	return Command{Op: OpEnableColor, Explicit: true, Side: c}
}

// EnableFriendly re-enables every square held by the side to move.
func EnableFriendly() Command { return Command{Op: OpEnableColor} }

func SelectSide(c board.Color) Command {
	return Command{Op: OpSelectSide, Explicit: true, Side: c}
}

// FlipSide hands the move to the other side.
func FlipSide() Command { return Command{Op: OpSelectSide} }

func FindVictim(c board.Color) Command {
	return Command{Op: OpFindVictim, Explicit: true, Side: c}
}

// FindVictimCurrent queries on behalf of the side to move.
func FindVictimCurrent() Command { return Command{Op: OpFindVictim} }

func FindAggressor(c board.Color, dst board.Square) Command {
	return Command{Op: OpFindAggressor, Explicit: true, Side: c, Square: dst}
}

// Canonical zeroes every field the op does not use.
func (c Command) Canonical() Command {
	out := Command{Op: c.Op}
	if c.Op.HasSide() && c.Explicit {
		out.Explicit = true
		out.Side = c.Side
	}
	if c.Op.HasSquare() {
		out.Square = c.Square
	}
	switch c.Op {
	case OpSetPiece:
		out.Piece = c.Piece
	case OpSetEnable:
		out.Enable = c.Enable
	}
	return out
}

// Validate checks the op and the operands it uses.
func (c Command) Validate() error {
	if !c.Op.Valid() {
		return ErrInvalidOp
	}
	if c.Op.HasSquare() && !c.Square.Valid() {
		return ErrSquareRange
	}
	if c.Op == OpSetPiece && !c.Piece.Valid() {
		return ErrInvalidPiece
	}
	if c.Explicit && c.Side > board.Black {
		return ErrFraming
	}
	return nil
}

func (c Command) String() string {
	s := c.Op.String()
	if c.Op.HasSide() && c.Explicit {
		s += " " + c.Side.String()
	}
	if c.Op.HasSquare() {
		s += " " + c.Square.String()
	}
	switch c.Op {
	case OpSetPiece:
		s += " " + c.Piece.String()
	case OpSetEnable:
		if c.Enable {
			s += " on"
		} else {
			s += " off"
		}
	}
	return s
}

// Handler executes commands against engine state.
type Handler interface {
	Handle(cmd Command) (Response, error)
}

// Caller issues commands to an engine, local or remote. Non-query commands
// return a zero Response.
type Caller interface {
	Call(ctx context.Context, cmd Command) (Response, error)
}
