package board

// Attacks reports whether the piece standing on from attacks to. Sliders need
// every square strictly between to be empty; whatever stands on to itself does
// not matter. A piece never attacks its own square.
func Attacks(b *Board, from, to Square) bool {
	if from == to || !from.Valid() || !to.Valid() {
		return false
	}
	p := b.pieces[from]
	switch p.Kind() {
	case Knight:
		return knightTargets[from].Has(to)
	case King:
		return kingTargets[from].Has(to)
	case Pawn:
		return pawnTargets[p.Color()][from].Has(to)
	case Bishop, Rook, Queen:
		d := lineDirection[from][to]
		if d < 0 || !slidesAlong(p.Kind(), Direction(d)) {
			return false
		}
		return between[from][to].Inter(b.AllOccupancy()).Empty()
	}
	return false
}

// Reaches is the move predicate: Attacks, except that a pawn diagonal only
// counts when to holds a piece of the opposite color.
func Reaches(b *Board, from, to Square) bool {
	if !Attacks(b, from, to) {
		return false
	}
	p := b.pieces[from]
	if p.Kind() == Pawn {
		victim := b.pieces[to]
		return victim != NoPiece && victim.Color() != p.Color()
	}
	return true
}

// Attacked returns every square attacked by the piece on from, own pieces
// included. It is empty for an empty square.
func Attacked(b *Board, from Square) SquareSet {
	p := b.pieces[from]
	switch p.Kind() {
	case Knight:
		return knightTargets[from]
	case King:
		return kingTargets[from]
	case Pawn:
		return pawnTargets[p.Color()][from]
	case Bishop, Rook, Queen:
		occ := b.AllOccupancy()
		var set SquareSet
		for _, d := range directions(p.Kind()) {
			ray := rays[from][d]
			if blockers := ray.Inter(occ); !blockers.Empty() {
				first := blockers.Last()
				if d.ascending() {
					first = blockers.First()
				}
				ray = ray.Minus(rays[first][d])
			}
			set = set.Union(ray)
		}
		return set
	}
	return 0
}

// Moves returns the destinations the piece on from reaches: its attacked
// squares minus its own side's pieces, with pawn diagonals limited to captures.
func Moves(b *Board, from Square) SquareSet {
	p := b.pieces[from]
	if p == NoPiece {
		return 0
	}
	set := Attacked(b, from).Minus(b.Occupancy(p.Color()))
	if p.Kind() == Pawn {
		set = set.Inter(b.Occupancy(p.Color().Other()))
	}
	return set
}
