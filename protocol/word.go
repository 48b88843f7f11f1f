package protocol

import "chess-sweeper/board"

// Word is a 16-bit command word:
//
//	hi byte: [7:4] opcode  [3] explicit side  [2] color  [1:0] square[5:4]
//	lo byte: [7:4] square[3:0]  [3:0] value (piece nibble or enable bit)
type Word uint16

const (
	wordExplicit = 1 << 11
	wordColor    = 1 << 10
)

// EncodeWord packs the canonical form of cmd.
func EncodeWord(cmd Command) Word {
	cmd = cmd.Canonical()
	w := Word(cmd.Op&0xF) << 12
	if cmd.Explicit {
		w |= wordExplicit
		if cmd.Side == board.Black {
			w |= wordColor
		}
	}
	if cmd.Op.HasSquare() {
		w |= Word(cmd.Square&0x3F) << 4
	}
	switch cmd.Op {
	case OpSetPiece:
		w |= Word(PieceNibble(cmd.Piece))
	case OpSetEnable:
		if cmd.Enable {
			w |= 1
		}
	}
	return w
}

// DecodeWord unpacks a command word. Bits an op does not use are ignored.
func DecodeWord(w Word) (Command, error) {
	op := Op(w >> 12)
	if !op.Valid() {
		return Command{}, ErrInvalidOp
	}
	cmd := Command{Op: op}
	if op.HasSide() && w&wordExplicit != 0 {
		cmd.Explicit = true
		if w&wordColor != 0 {
			cmd.Side = board.Black
		}
	}
	if op.HasSquare() {
		cmd.Square = board.Square((w >> 4) & 0x3F)
	}
	value := uint8(w & 0xF)
	switch op {
	case OpSetPiece:
		p, err := PieceFromNibble(value)
		if err != nil {
			return Command{}, &DecodeError{Op: op, Err: err}
		}
		cmd.Piece = p
	case OpSetEnable:
		cmd.Enable = value&1 != 0
	}
	return cmd, nil
}

// Bytes returns the word big-endian, high byte first.
func (w Word) Bytes() [2]byte { return [2]byte{byte(w >> 8), byte(w)} }

// WordFromBytes reverses Bytes.
func WordFromBytes(hi, lo byte) Word { return Word(hi)<<8 | Word(lo) }
