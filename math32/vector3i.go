package math32

// Vector3i is an integer cell coordinate.
type Vector3i struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// FloorToInt floors every component of v.
func FloorToInt(v Vector3) Vector3i {
	return Vector3i{int32(Floor(v.X)), int32(Floor(v.Y)), int32(Floor(v.Z))}
}

func (v Vector3i) Add(other Vector3i) Vector3i {
	return Vector3i{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vector3i) Sub(other Vector3i) Vector3i {
	return Vector3i{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

func (v Vector3i) Max(other Vector3i) Vector3i {
	return Vector3i{Max(v.X, other.X), Max(v.Y, other.Y), Max(v.Z, other.Z)}
}

func (v Vector3i) Min(other Vector3i) Vector3i {
	return Vector3i{Min(v.X, other.X), Min(v.Y, other.Y), Min(v.Z, other.Z)}
}

// Parity packs the lowest bit of each |component| as x | y<<1 | z<<2.
func (v Vector3i) Parity() int {
	return int(abs32(v.X)&1) | int(abs32(v.Y)&1)<<1 | int(abs32(v.Z)&1)<<2
}

// InRange reports whether every component lies in [0, n).
func (v Vector3i) InRange(n int32) bool {
	return v.X >= 0 && v.Y >= 0 && v.Z >= 0 && v.X < n && v.Y < n && v.Z < n
}

func abs32(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}
