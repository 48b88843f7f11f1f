package board_test

import (
	"testing"

	"chess-sweeper/board"
)

// helper: parse empty board
func emptyBoard(t *testing.T) *board.Board {
	t.Helper()
	b, _, err := board.ParseFEN("8/8/8/8/8/8/8/8 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN empty: %v", err)
	}
	return b
}

func sq(t *testing.T, name string) board.Square {
	t.Helper()
	s, err := board.ParseSquare(name)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", name, err)
	}
	return s
}

// attackedBy reports whether any piece of color by attacks target.
func attackedBy(b *board.Board, target board.Square, by board.Color) bool {
	for _, from := range b.Occupancy(by).Squares() {
		if board.Attacks(b, from, target) {
			return true
		}
	}
	return false
}

func TestAttacks_RookFiles(t *testing.T) {
	b := emptyBoard(t)
	e1, e8 := sq(t, "e1"), sq(t, "e8")
	b.SetPiece(e1, board.WhiteKing)
	b.SetPiece(e8, board.BlackRook)
	if !board.Attacks(b, e8, e1) {
		t.Fatalf("expected e1 attacked by the e8 rook")
	}
	// Add a blocker at e3 (white pawn)
	b.SetPiece(sq(t, "e3"), board.WhitePawn)
	if board.Attacks(b, e8, e1) {
		t.Fatalf("did not expect e1 attacked after blocker added")
	}
	// The blocker itself is still attacked.
	if !board.Attacks(b, e8, sq(t, "e3")) {
		t.Fatalf("expected rook to attack its blocker")
	}
}

func TestAttacks_BishopDiagonalBlockedByOwnPiece(t *testing.T) {
	b := emptyBoard(t)
	// e1 white king, b4 black bishop (b4 -> c3 -> d2 -> e1)
	e1, b4, c3 := sq(t, "e1"), sq(t, "b4"), sq(t, "c3")
	b.SetPiece(e1, board.WhiteKing)
	b.SetPiece(b4, board.BlackBishop)
	if !attackedBy(b, e1, board.Black) {
		t.Fatalf("expected e1 attacked by bishop along diagonal")
	}
	// a black knight on c3 blocks the ray and does not reach e1 itself
	b.SetPiece(c3, board.BlackKnight)
	if board.Attacks(b, b4, e1) || attackedBy(b, e1, board.Black) {
		t.Fatalf("a blocker of the bishop's own colour must stop the ray")
	}
	if !board.Attacked(b, b4).Has(c3) {
		t.Fatalf("the bishop still attacks its own blocker's square")
	}
	if board.Moves(b, b4).Has(c3) {
		t.Fatalf("moves must exclude squares held by the mover's side")
	}
}

func TestAttacks_PawnsKnightsKings(t *testing.T) {
	b := emptyBoard(t)
	e1, e4, d5 := sq(t, "e1"), sq(t, "e4"), sq(t, "d5")
	b.SetPiece(e1, board.WhiteKing)
	b.SetPiece(e4, board.WhitePawn)
	b.SetPiece(d5, board.BlackPawn)
	if !board.Attacks(b, d5, e4) {
		t.Fatalf("expected e4 attacked by black pawn from d5")
	}
	if !board.Attacks(b, e4, d5) {
		t.Fatalf("expected d5 attacked by white pawn from e4")
	}
	if attackedBy(b, sq(t, "e5"), board.White) {
		t.Fatalf("pawns do not attack straight ahead")
	}
	b.SetPiece(sq(t, "f3"), board.BlackKnight)
	if !attackedBy(b, e1, board.Black) {
		t.Fatalf("expected e1 attacked by black knight from f3")
	}
	b.SetPiece(sq(t, "f3"), board.NoPiece)
	b.SetPiece(sq(t, "d2"), board.BlackKing)
	if !board.Attacks(b, sq(t, "d2"), e1) {
		t.Fatalf("expected e1 attacked by adjacent black king")
	}
}

func TestNoWraparoundAcrossFiles(t *testing.T) {
	b := emptyBoard(t)
	a4, h4 := sq(t, "a4"), sq(t, "h4")
	b.SetPiece(a4, board.WhiteKnight)
	for _, name := range []string{"g3", "g5", "h2", "h6", "h3", "h5"} {
		if board.Attacks(b, a4, sq(t, name)) {
			t.Fatalf("knight on a4 must not wrap to %s", name)
		}
	}
	b.SetPiece(h4, board.WhiteKing)
	for _, name := range []string{"a5", "a4", "a3"} {
		if board.Attacks(b, h4, sq(t, name)) {
			t.Fatalf("king on h4 must not wrap to %s", name)
		}
	}
	b.Reset()
	b.SetPiece(sq(t, "h1"), board.WhiteBishop)
	if board.Attacks(b, sq(t, "h1"), sq(t, "a3")) {
		t.Fatalf("bishop on h1 must not wrap onto a3")
	}
	b.SetPiece(sq(t, "h2"), board.WhitePawn)
	if board.Attacks(b, sq(t, "h2"), sq(t, "a4")) {
		t.Fatalf("pawn on h2 must not wrap onto a4")
	}
}

func TestAttacksNeverOwnSquare(t *testing.T) {
	b := emptyBoard(t)
	for s := board.Square(0); s < board.NumSquares; s++ {
		for _, p := range []board.Piece{board.WhiteQueen, board.BlackKnight, board.WhiteKing, board.BlackPawn} {
			b.SetPiece(s, p)
			if board.Attacks(b, s, s) {
				t.Fatalf("%v on %v attacks its own square", p, s)
			}
		}
		b.SetPiece(s, board.NoPiece)
	}
	if board.Attacks(b, 0, 1) {
		t.Fatalf("an empty square attacks nothing")
	}
}

func TestPawnDiagonalOnlyReachesEnemy(t *testing.T) {
	b := emptyBoard(t)
	e4 := sq(t, "e4")
	b.SetPiece(e4, board.WhitePawn)
	d5, f5 := sq(t, "d5"), sq(t, "f5")
	if !board.Attacks(b, e4, d5) || board.Reaches(b, e4, d5) {
		t.Fatalf("empty diagonal is attacked but not reached")
	}
	b.SetPiece(d5, board.BlackRook)
	b.SetPiece(f5, board.WhiteRook)
	if !board.Reaches(b, e4, d5) {
		t.Fatalf("pawn should reach enemy on d5")
	}
	if board.Reaches(b, e4, f5) {
		t.Fatalf("pawn must not reach own piece on f5")
	}
	if got, want := board.Moves(b, e4), board.SetOf(d5); got != want {
		t.Fatalf("Moves: got %v want %v", got, want)
	}
	b.Reset()
	b.SetPiece(e4, board.BlackPawn)
	b.SetPiece(sq(t, "d3"), board.WhiteQueen)
	if got, want := board.Moves(b, e4), board.SetOf(sq(t, "d3")); got != want {
		t.Fatalf("black pawn Moves: got %v want %v", got, want)
	}
}

// Attacked and Moves must agree with the pairwise predicates on every square.
func TestSetFunctionsMatchPredicates(t *testing.T) {
	for _, fen := range []string{board.FENStartPos, board.FENKiwipete, "4k3/8/3r4/8/1B1Q2n1/8/3p4/R3K2R b - - 0 1"} {
		b, _, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN: %v", err)
		}
		for from := board.Square(0); from < board.NumSquares; from++ {
			attacked, moves := board.Attacked(b, from), board.Moves(b, from)
			for to := board.Square(0); to < board.NumSquares; to++ {
				if attacked.Has(to) != board.Attacks(b, from, to) {
					t.Fatalf("%s: Attacked(%v) disagrees with Attacks on %v", fen, from, to)
				}
				own := b.Occupied(to) && b.PieceAt(to).Color() == b.PieceAt(from).Color()
				if moves.Has(to) != (board.Reaches(b, from, to) && !own) {
					t.Fatalf("%s: Moves(%v) disagrees with Reaches on %v", fen, from, to)
				}
			}
		}
	}
}

func TestBetween(t *testing.T) {
	if got, want := board.Between(sq(t, "a1"), sq(t, "a4")), board.SetOf(sq(t, "a2"), sq(t, "a3")); got != want {
		t.Fatalf("Between a1-a4: got %v want %v", got, want)
	}
	if got, want := board.Between(sq(t, "h8"), sq(t, "e5")), board.SetOf(sq(t, "g7"), sq(t, "f6")); got != want {
		t.Fatalf("Between h8-e5: got %v want %v", got, want)
	}
	if !board.Between(sq(t, "a1"), sq(t, "b3")).Empty() {
		t.Fatalf("unaligned squares have nothing between")
	}
	if board.Ray(sq(t, "a1"), board.NorthEast).Count() != 7 {
		t.Fatalf("long diagonal from a1 should have 7 squares")
	}
}
