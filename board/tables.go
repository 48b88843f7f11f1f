package board

// Direction is one of the eight compass rays used by sliding pieces.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	NorthEast
	NorthWest
	SouthEast
	SouthWest
	numDirections
)

// directionDelta is the (rank, file) step of each direction.
var directionDelta = [numDirections][2]int{
	North:     {1, 0},
	South:     {-1, 0},
	East:      {0, 1},
	West:      {0, -1},
	NorthEast: {1, 1},
	NorthWest: {1, -1},
	SouthEast: {-1, 1},
	SouthWest: {-1, -1},
}

// ascending reports whether stepping in d increases the square index, which
// decides whether the nearest blocker on a ray is its lowest or highest bit.
func (d Direction) ascending() bool {
	return d == North || d == East || d == NorthEast || d == NorthWest
}

var (
	rookDirections   = []Direction{North, South, East, West}
	bishopDirections = []Direction{NorthEast, NorthWest, SouthEast, SouthWest}
	queenDirections  = []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}
)

var knightOffsets = [8][2]int{
	{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
	{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
}

var kingOffsets = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// pawnCaptureOffsets[color] are the two diagonal-forward steps.
var pawnCaptureOffsets = [2][2][2]int{
	White: {{1, -1}, {1, 1}},
	Black: {{-1, -1}, {-1, 1}},
}

// Precomputed per-square target sets for the fixed-offset pieces.
var knightTargets [64]SquareSet
var kingTargets [64]SquareSet
var pawnTargets [2][64]SquareSet

// rays[sq][d] holds the squares along d from sq, excluding sq itself.
var rays [64][numDirections]SquareSet

// lineDirection[from][to] is the direction leading from -> to, or -1 when the
// two squares share no rank, file or diagonal.
var lineDirection [64][64]int8

// between[from][to] holds the squares strictly between two aligned squares.
var between [64][64]SquareSet

func init() {
	initOffsetTables()
	initRays()
}

// offsetSet collects the on-board targets of sq for a list of (rank, file) steps.
func offsetSet(sq Square, offsets [][2]int) SquareSet {
	var set SquareSet
	for _, off := range offsets {
		if t := SquareAt(sq.Rank()+off[0], sq.File()+off[1]); t != NoSquare {
			set = set.With(t)
		}
	}
	return set
}

func initOffsetTables() {
	for sq := Square(0); sq < NumSquares; sq++ {
		knightTargets[sq] = offsetSet(sq, knightOffsets[:])
		kingTargets[sq] = offsetSet(sq, kingOffsets[:])
		for c := White; c <= Black; c++ {
			pawnTargets[c][sq] = offsetSet(sq, pawnCaptureOffsets[c][:])
		}
	}
}

func initRays() {
	for from := Square(0); from < NumSquares; from++ {
		for to := range lineDirection[from] {
			lineDirection[from][to] = -1
		}
		for d := Direction(0); d < numDirections; d++ {
			var ray SquareSet
			r, f := from.Rank(), from.File()
			for {
				r += directionDelta[d][0]
				f += directionDelta[d][1]
				to := SquareAt(r, f)
				if to == NoSquare {
					break
				}
				between[from][to] = ray
				lineDirection[from][to] = int8(d)
				ray = ray.With(to)
			}
			rays[from][d] = ray
		}
	}
}

// directions returns the rays a sliding kind moves along, or nil.
func directions(k Kind) []Direction {
	switch k {
	case Rook:
		return rookDirections
	case Bishop:
		return bishopDirections
	case Queen:
		return queenDirections
	}
	return nil
}

// slidesAlong reports whether kind k moves along direction d.
func slidesAlong(k Kind, d Direction) bool {
	switch k {
	case Rook:
		return d < NorthEast
	case Bishop:
		return d >= NorthEast && d < numDirections
	case Queen:
		return d >= North && d < numDirections
	}
	return false
}

// Ray returns the squares along d from sq, excluding sq.
func Ray(sq Square, d Direction) SquareSet { return rays[sq][d] }

// Between returns the squares strictly between two aligned squares, or the
// empty set when they are not aligned.
func Between(from, to Square) SquareSet { return between[from][to] }
