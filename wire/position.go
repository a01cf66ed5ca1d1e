package wire

import "fmt"

// Position bounds. X and Z occupy 26 bits and Y occupies 12 bits of the
// packed value.
const (
	MinHorizontal = -1 << 25
	MaxHorizontal = 1<<25 - 1
	MinVertical   = -1 << 11
	MaxVertical   = 1<<11 - 1
)

// Position is an integer block coordinate, packed on the wire into one int64.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// Pack returns the wire form: x in the top 26 bits, z in the next 26, y in
// the low 12.
func (p Position) Pack() int64 {
	return (int64(p.X)&0x3FFFFFF)<<38 | (int64(p.Z)&0x3FFFFFF)<<12 | int64(p.Y)&0xFFF
}

// UnpackPosition reverses Pack, sign-extending each component.
func UnpackPosition(v int64) Position {
	return Position{
		X: int32(v >> 38),
		Y: int32(v << 52 >> 52),
		Z: int32(v << 26 >> 38),
	}
}

// InRange reports whether every component fits its packed width, i.e.
// whether Pack followed by UnpackPosition returns p.
func (p Position) InRange() bool {
	return p.X >= MinHorizontal && p.X <= MaxHorizontal &&
		p.Z >= MinHorizontal && p.Z <= MaxHorizontal &&
		p.Y >= MinVertical && p.Y <= MaxVertical
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}
