package protocol

import (
	"fmt"
	"io"

	"chess-sweeper/board"
)

// On the nibble-serial binding every symbol is one byte: bit 4 is the
// chip-select line and bits 3:0 carry a nibble. A transaction is a run of
// selected symbols closed by a single deselected symbol.
const (
	ChipSelect byte = 0x10
	Deselect   byte = 0x00
)

// AppendTransaction frames nibbles as one transaction.
func AppendTransaction(dst []byte, nibbles ...uint8) []byte {
	for _, n := range nibbles {
		dst = append(dst, ChipSelect|n&0xF)
	}
	return append(dst, Deselect)
}

// ReadTransaction returns the nibbles of the next transaction, skipping idle
// deselected symbols before it.
func ReadTransaction(r io.ByteReader) ([]uint8, error) {
	var nibbles []uint8
	for {
		sym, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && len(nibbles) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if sym&^(ChipSelect|0xF) != 0 {
			return nil, fmt.Errorf("%w: stray bits in symbol %#02x", ErrFraming, sym)
		}
		if sym&ChipSelect == 0 {
			if sym != Deselect {
				return nil, fmt.Errorf("%w: data while deselected %#02x", ErrFraming, sym)
			}
			if len(nibbles) == 0 {
				continue
			}
			return nibbles, nil
		}
		nibbles = append(nibbles, sym&0xF)
	}
}

// serialLength is the number of nibbles a request for op occupies.
func serialLength(op Op) int {
	n := 1
	if op.HasSide() {
		n++
	}
	if op.HasSquare() {
		n += 2
	}
	if op.HasValue() {
		n++
	}
	return n
}

// SerialNibbles lays out cmd: opcode, side nibble ([1] explicit, [0] color),
// square as two nibbles most significant first, then the value nibble.
func SerialNibbles(cmd Command) []uint8 {
	cmd = cmd.Canonical()
	out := make([]uint8, 0, serialLength(cmd.Op))
	out = append(out, uint8(cmd.Op)&0xF)
	if cmd.Op.HasSide() {
		var side uint8
		if cmd.Explicit {
			side = 2 | uint8(cmd.Side)&1
		}
		out = append(out, side)
	}
	if cmd.Op.HasSquare() {
		out = append(out, uint8(cmd.Square>>4)&0x3, uint8(cmd.Square)&0xF)
	}
	switch cmd.Op {
	case OpSetPiece:
		out = append(out, PieceNibble(cmd.Piece))
	case OpSetEnable:
		if cmd.Enable {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

// ParseSerialCommand decodes the nibbles of one request transaction.
func ParseSerialCommand(nibbles []uint8) (Command, error) {
	if len(nibbles) == 0 {
		return Command{}, fmt.Errorf("%w: empty transaction", ErrFraming)
	}
	op := Op(nibbles[0])
	if !op.Valid() {
		return Command{}, ErrInvalidOp
	}
	if len(nibbles) != serialLength(op) {
		return Command{}, &DecodeError{Op: op, Err: fmt.Errorf("%w: want %d nibbles, got %d", ErrFraming, serialLength(op), len(nibbles))}
	}
	cmd := Command{Op: op}
	rest := nibbles[1:]
	if op.HasSide() {
		if rest[0]&2 != 0 {
			cmd.Explicit = true
			cmd.Side = board.Color(rest[0] & 1)
		}
		rest = rest[1:]
	}
	if op.HasSquare() {
		if rest[0] > 3 {
			return Command{}, &DecodeError{Op: op, Err: fmt.Errorf("%w: square high nibble %#x", ErrSquareRange, rest[0])}
		}
		cmd.Square = board.Square(rest[0])<<4 | board.Square(rest[1])
		rest = rest[2:]
	}
	switch op {
	case OpSetPiece:
		p, err := PieceFromNibble(rest[0])
		if err != nil {
			return Command{}, &DecodeError{Op: op, Err: err}
		}
		cmd.Piece = p
	case OpSetEnable:
		cmd.Enable = rest[0]&1 != 0
	}
	return cmd, nil
}

// SerialResponseNibbles splits a response byte, most significant nibble first.
func SerialResponseNibbles(r Response) []uint8 {
	return []uint8{uint8(r) >> 4, uint8(r) & 0xF}
}

// ParseSerialResponse joins the two nibbles of a response transaction.
func ParseSerialResponse(nibbles []uint8) (Response, error) {
	if len(nibbles) != 2 {
		return 0, fmt.Errorf("%w: response wants 2 nibbles, got %d", ErrFraming, len(nibbles))
	}
	r := Response(nibbles[0]<<4 | nibbles[1])
	return r, r.Validate()
}
