package board

import (
	"errors"
	"strings"
)

// FENStartPos is the FEN string for the standard initial chess position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FENKiwipete is the perft test position known as "kiwipete".
const FENKiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

var (
	ErrFENFields    = errors.New("invalid FEN: not enough fields")
	ErrFENRanks     = errors.New("invalid FEN: incorrect number of ranks")
	ErrFENPiece     = errors.New("invalid FEN: unrecognized piece character")
	ErrFENRankWidth = errors.New("invalid FEN: rank does not have 8 columns")
	ErrFENSide      = errors.New("invalid FEN: side to move must be 'w' or 'b'")
)

// pieceFromChar converts a FEN character to the corresponding Piece constant.
func pieceFromChar(ch rune) Piece {
	switch ch {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

// charFromPiece converts a Piece constant to its FEN character representation.
func charFromPiece(p Piece) rune {
	if p.Kind() == NoKind || p.Kind() > King {
		return '?'
	}
	c := " pnbrqk"[p.Kind()]
	if p.Color() == White {
		c -= 'a' - 'A'
	}
	return rune(c)
}

// ParseFEN parses the placement and side-to-move fields of a FEN string.
// A bare placement field is accepted and means White to move. Castling,
// en passant and clock fields are accepted and ignored.
func ParseFEN(fen string) (*Board, Color, error) {
	fields := strings.Fields(fen)
	if len(fields) < 1 {
		return nil, White, ErrFENFields
	}

	board := &Board{}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, White, ErrFENRanks
	}
	for i, rankStr := range ranks {
		rankIndex := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			piece := pieceFromChar(ch)
			if piece == NoPiece {
				return nil, White, ErrFENPiece
			}
			if file >= 8 {
				return nil, White, ErrFENRankWidth
			}
			board.addPiece(Square(rankIndex*8+file), piece)
			file++
		}
		if file != 8 {
			return nil, White, ErrFENRankWidth
		}
	}

	side := White
	if len(fields) > 1 {
		switch fields[1] {
		case "w":
		case "b":
			side = Black
		default:
			return nil, White, ErrFENSide
		}
	}
	return board, side, nil
}

// FEN renders the placement and side to move; the remaining fields are
// written as "- - 0 1" because the engine does not track them.
func (b *Board) FEN(side Color) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		emptyCount := 0
		for file := 0; file < 8; file++ {
			p := b.pieces[rank*8+file]
			if p == NoPiece {
				emptyCount++
				continue
			}
			if emptyCount > 0 {
				sb.WriteByte('0' + byte(emptyCount))
				emptyCount = 0
			}
			sb.WriteRune(charFromPiece(p))
		}
		if emptyCount > 0 {
			sb.WriteByte('0' + byte(emptyCount))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	if side == White {
		sb.WriteString(" w")
	} else {
		sb.WriteString(" b")
	}
	sb.WriteString(" - - 0 1")
	return sb.String()
}
