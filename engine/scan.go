package engine

import "chess-sweeper/board"

// ScanForDestination returns the lowest enabled square that is empty or held
// by the opponent and that some enabled piece of side reaches. It returns
// board.NoSquare when there is none. The board and mask are not modified.
func ScanForDestination(b *board.Board, enabled board.SquareSet, side board.Color) board.Square {
	var reached board.SquareSet
	for movers := b.Occupancy(side).Inter(enabled); !movers.Empty(); {
		s := movers.First()
		movers = movers.Without(s)
		reached = reached.Union(board.Moves(b, s))
	}
	return reached.Inter(enabled).Minus(b.Occupancy(side)).First()
}

// ScanForSource returns the lowest enabled square holding a piece of side
// that reaches t, or board.NoSquare. It never returns t itself.
func ScanForSource(b *board.Board, enabled board.SquareSet, side board.Color, t board.Square) board.Square {
	if !t.Valid() {
		return board.NoSquare
	}
	for movers := b.Occupancy(side).Inter(enabled).Without(t); !movers.Empty(); {
		s := movers.First()
		if board.Reaches(b, s, t) {
			return s
		}
		movers = movers.Without(s)
	}
	return board.NoSquare
}
