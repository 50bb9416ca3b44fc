package engine

import (
	"encoding/json"
	"errors"
	"slices"
)

var ErrNoPiece = errors.New("no piece on origin")
var ErrWrongTurn = errors.New("invalid turn")
var ErrOutOfReach = errors.New("destination out of reach")
var ErrSameCell = errors.New("destination equals origin")
var ErrOccupied = errors.New("destination occupied")

type Move struct {
	From Axial `json:"from"`
	To   Axial `json:"to"`
}

// Board is the authoritative game state of one lobby. It is not safe for
// concurrent use; the hub serializes access.
type Board struct {
	cells   map[Axial]struct{}
	maxSize int
	turn    Color
	pieces  map[Axial]Color
}

func NewBoard(maxSize int, turn Color, cells ...Axial) *Board {
	b := &Board{
		cells:   make(map[Axial]struct{}, len(cells)),
		maxSize: maxSize,
		turn:    turn,
		pieces:  make(map[Axial]Color),
	}
	for _, c := range cells {
		b.cells[c] = struct{}{}
	}
	return b
}

// Clone returns a deep copy of b.
func (b *Board) Clone() *Board {
	out := NewBoard(b.maxSize, b.turn)
	for a := range b.cells {
		out.cells[a] = struct{}{}
	}
	for a, c := range b.pieces {
		out.pieces[a] = c
	}
	return out
}

func (b *Board) Has(a Axial) bool {
	_, ok := b.cells[a]
	return ok
}

func (b *Board) Piece(a Axial) (Color, bool) {
	c, ok := b.pieces[a]
	return c, ok
}

// Place puts a piece of color c on a. Cells outside the board are ignored.
func (b *Board) Place(a Axial, c Color) bool {
	if !b.Has(a) {
		return false
	}
	b.pieces[a] = c
	return true
}

func (b *Board) Turn() Color { return b.turn }


// ChangeTurn is unconditional; choosing the next color is the caller's job.
func (b *Board) ChangeTurn(c Color) { b.turn = c }

func (b *Board) Count(c Color) int {
	n := 0
	for _, pc := range b.pieces {
		if pc == c {
			n++
		}
	}
	return n
}

func (b *Board) Cells() []Axial {
	out := make([]Axial, 0, len(b.cells))
	for c := range b.cells {
		out = append(out, c)
	}
	sortAxial(out)
	return out
}

func (b *Board) Pieces() map[Axial]Color {
	out := make(map[Axial]Color, len(b.pieces))
	for a, c := range b.pieces {
		out[a] = c
	}
	return out
}

// Neighbours returns the on-board cells adjacent to a. Empty if a is not on
// the board.
func (b *Board) Neighbours(a Axial) []Axial {
	if !b.Has(a) {
		return nil
	}
	origin := a.Cube()
	out := make([]Axial, 0, len(CubeDirections))
	for _, d := range CubeDirections {
		n := origin.Add(d).Axial()
		if b.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// SecondaryNeighbours is the union of the neighbours of every neighbour of
// a. The result may hold a itself and duplicates.
func (b *Board) SecondaryNeighbours(a Axial) []Axial {
	var out []Axial
	for _, n := range b.Neighbours(a) {
		out = append(out, b.Neighbours(n)...)
	}
	return out
}

func (b *Board) CheckMove(m Move) error {
	c, ok := b.pieces[m.From]
	if !ok {
		return ErrNoPiece
	}
	if c != b.turn {
		return ErrWrongTurn
	}
	if !slices.Contains(b.SecondaryNeighbours(m.From), m.To) {
		return ErrOutOfReach
	}
	if m.To == m.From {
		return ErrSameCell
	}
	if _, taken := b.pieces[m.To]; taken {
		return ErrOccupied
	}
	return nil
}

func (b *Board) IsMoveLegal(m Move) bool {
	return b.CheckMove(m) == nil
}

// ApplyMove plays m for the side to move. A move to an adjacent cell clones
// the piece, a two-hop move relocates it. Every occupied neighbour of the
// destination is then converted to the mover's color.
func (b *Board) ApplyMove(m Move) error {
	if err := b.CheckMove(m); err != nil {
		return err
	}
	if !slices.Contains(b.Neighbours(m.From), m.To) {
		delete(b.pieces, m.From)
	}
	b.pieces[m.To] = b.turn
	for _, n := range b.Neighbours(m.To) {
		if _, ok := b.pieces[n]; ok {
			b.pieces[n] = b.turn
		}
	}
	return nil
}

// LegalMoves lists the distinct destinations reachable from a this turn.
func (b *Board) LegalMoves(a Axial) []Axial {
	seen := make(map[Axial]struct{})
	var out []Axial
	for _, to := range b.SecondaryNeighbours(a) {
		if _, dup := seen[to]; dup {
			continue
		}
		seen[to] = struct{}{}
		if b.IsMoveLegal(Move{From: a, To: to}) {
			out = append(out, to)
		}
	}
	sortAxial(out)
	return out
}

type pieceJSON struct {
	Q     int   `json:"q"`
	R     int   `json:"r"`
	Color Color `json:"color"`
}

type boardJSON struct {
	MaxSize int         `json:"max_size"`
	Turn    Color       `json:"turn"`
	Cells   []Axial     `json:"cells"`
	Pieces  []pieceJSON `json:"pieces"`
}

func (b *Board) MarshalJSON() ([]byte, error) {
	out := boardJSON{
		MaxSize: b.maxSize,
		Turn:    b.turn,
		Cells:   b.Cells(),
		Pieces:  make([]pieceJSON, 0, len(b.pieces)),
	}
	occupied := make([]Axial, 0, len(b.pieces))
	for a := range b.pieces {
		occupied = append(occupied, a)
	}
	sortAxial(occupied)
	for _, a := range occupied {
		out.Pieces = append(out.Pieces, pieceJSON{Q: a.Q, R: a.R, Color: b.pieces[a]})
	}
	return json.Marshal(out)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var in boardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*b = *NewBoard(in.MaxSize, in.Turn, in.Cells...)
	for _, p := range in.Pieces {
		b.Place(Axial{Q: p.Q, R: p.R}, p.Color)
	}
	return nil
}

func sortAxial(s []Axial) {
	slices.SortFunc(s, func(a, b Axial) int {
		if a.Q != b.Q {
			return a.Q - b.Q
		}
		return a.R - b.R
	})
}
