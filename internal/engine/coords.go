package engine

// Axial is the canonical storage key for a cell.
type Axial struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Cube coordinates always satisfy X+Y+Z == 0.
type Cube struct {
	X int
	Y int
	Z int
}

// Offset coordinates use odd rows shifted right.
type Offset struct {
	Col int
	Row int
}

var CubeDirections = [6]Cube{
	{X: 1, Y: -1, Z: 0},
	{X: 1, Y: 0, Z: -1},
	{X: 0, Y: 1, Z: -1},
	{X: -1, Y: 1, Z: 0},
	{X: -1, Y: 0, Z: 1},
	{X: 0, Y: -1, Z: 1},
}

func (a Axial) Cube() Cube {
	return Cube{X: a.Q, Y: -a.Q - a.R, Z: a.R}
}

func (a Axial) Offset() Offset {
	return a.Cube().Offset()
}

func (c Cube) Axial() Axial {
	return Axial{Q: c.X, R: c.Z}
}

// row&1 instead of row%2 keeps negative rows exact.
func (c Cube) Offset() Offset {
	return Offset{
		Col: c.X + (c.Z-(c.Z&1))/2,
		Row: c.Z,
	}
}

func (c Cube) Add(d Cube) Cube {
	return Cube{X: c.X + d.X, Y: c.Y + d.Y, Z: c.Z + d.Z}
}

func (c Cube) valid() bool {
	return c.X+c.Y+c.Z == 0
}

func (o Offset) Cube() Cube {
	x := o.Col - (o.Row-(o.Row&1))/2
	z := o.Row
	return Cube{X: x, Y: -x - z, Z: z}
}

func (o Offset) Axial() Axial {
	return o.Cube().Axial()
}
