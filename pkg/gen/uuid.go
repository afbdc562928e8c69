package gen

import (
	"github.com/google/uuid"
)

// UUIDGenerator yields identifiers for staged files. Tests swap in a
// deterministic sequence.
type UUIDGenerator func() uuid.UUID

func UUID() UUIDGenerator {
	return uuid.New
}

// Sequence returns ids in order and then falls back to random ones. It is
// not safe for concurrent use.
func Sequence(ids ...uuid.UUID) UUIDGenerator {
	next := 0
	return func() uuid.UUID {
		if next < len(ids) {
			id := ids[next]
			next++
			return id
		}
		return uuid.New()
	}
}

func (g UUIDGenerator) Next() uuid.UUID {
	if g == nil {
		return uuid.New()
	}

	return g()
}

// FileName joins a fresh id with ext, which is given without the dot.
func (g UUIDGenerator) FileName(ext string) string {
	if ext == "" {
		return g.Next().String()
	}
	return g.Next().String() + "." + ext
}
