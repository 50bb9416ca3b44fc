package engine

import (
	"math/rand/v2"
)

// GenerateHexagon builds the game board: every cube cell with |x|, |y| and
// |z| below size, plus two starting pieces per color on opposite corners.
// first moves first.
func GenerateHexagon(size int, first, second Color) *Board {
	var cells []Axial
	for x := -size + 1; x < size; x++ {
		for y := -size + 1; y < size; y++ {
			z := -x - y
			if z <= -size || z >= size {
				continue
			}
			cells = append(cells, Cube{X: x, Y: y, Z: z}.Axial())
		}
	}
	b := NewBoard(size, first, cells...)
	if size < 2 {
		return b
	}

	n := size - 1
	for k := 0; k < 2; k++ {
		b.Place(corner(k, n), first)
		b.Place(corner(k, -n), second)
	}
	return b
}

// corner sets axis k to n and the next axis (mod 3) to -n.
func corner(k, n int) Axial {
	var v [3]int
	v[k] = n
	v[(k+1)%3] = -n
	return Cube{X: v[0], Y: v[1], Z: v[2]}.Axial()
}

// GenerateHoneycomb builds a decorative rectangular board from an offset
// sweep and scatters perColor pieces of each color on free cells. It never
// backs a real game.
func GenerateHoneycomb(width, height, perColor int, first, second Color, rng *rand.Rand) *Board {
	var cells []Axial
	for col := -width + 1; col < width; col++ {
		for row := -height + 1; row < height; row++ {
			cells = append(cells, Offset{Col: col, Row: row}.Axial())
		}
	}
	b := NewBoard(max(width, height), first, cells...)

	for _, c := range []Color{first, second} {
		for i := 0; i < perColor; i++ {
			free := freeCells(b)
			if len(free) == 0 {
				return b
			}
			b.Place(free[rng.IntN(len(free))], c)
		}
	}
	return b
}

func freeCells(b *Board) []Axial {
	var out []Axial
	for _, a := range b.Cells() {
		if _, taken := b.pieces[a]; !taken {
			out = append(out, a)
		}
	}
	return out
}

// SelfPlayStep makes one random move for the side to move and hands the turn
// to the other color on the board. It reports false when the side to move
// has no piece or the chosen piece has no legal move.
func SelfPlayStep(b *Board, rng *rand.Rand) bool {
	var own []Axial
	for _, a := range b.Cells() {
		if c, ok := b.pieces[a]; ok && c == b.turn {
			own = append(own, a)
		}
	}
	if len(own) == 0 {
		return false
	}
	from := own[rng.IntN(len(own))]
	moves := b.LegalMoves(from)
	if len(moves) == 0 {
		return false
	}
	mover := b.turn
	if err := b.ApplyMove(Move{From: from, To: moves[rng.IntN(len(moves))]}); err != nil {
		return false
	}
	for _, c := range b.pieces {
		if c != mover {
			b.ChangeTurn(c)
			break
		}
	}
	return true
}
