package idxmap

import (
	"fmt"
	"strings"
)

// MapStats is VecMap and SparseMap statistics.
//
// Warning: map statistics are intended to be used for diagnostic
// purposes, not for production code. This means that breaking changes
// may be introduced into this struct even between minor releases.
type MapStats struct {
	// Size is the exact number of entries stored in the map.
	Size int
	// Slots is the length of the key-addressed array, i.e. one more than
	// the highest key it can address without growing.
	Slots int
	// SlotCapacity is the capacity of the key-addressed array.
	SlotCapacity int
	// Holes is the number of vacant slots below Slots.
	Holes int
	// TrailingHoles is the number of vacant slots past the highest live
	// key; Shrink releases them.
	TrailingHoles int
	// RowCapacity is the capacity of the dense row array. Zero for a
	// SparseMap.
	RowCapacity int
	// MaxKey is the highest live key as a slot index, or -1 when empty.
	MaxKey int
}

// LoadFactor returns the fraction of slots holding a live entry.
func (s *MapStats) LoadFactor() float64 {
	if s.Slots == 0 {
		return 0
	}
	return float64(s.Size) / float64(s.Slots)
}

// ToString returns string representation of map stats.
func (s *MapStats) ToString() string {
	var sb strings.Builder
	sb.WriteString("MapStats{\n")
	sb.WriteString(fmt.Sprintf("Size:          %d\n", s.Size))
	sb.WriteString(fmt.Sprintf("Slots:         %d\n", s.Slots))
	sb.WriteString(fmt.Sprintf("SlotCapacity:  %d\n", s.SlotCapacity))
	sb.WriteString(fmt.Sprintf("Holes:         %d\n", s.Holes))
	sb.WriteString(fmt.Sprintf("TrailingHoles: %d\n", s.TrailingHoles))
	sb.WriteString(fmt.Sprintf("RowCapacity:   %d\n", s.RowCapacity))
	sb.WriteString(fmt.Sprintf("MaxKey:        %d\n", s.MaxKey))
	sb.WriteString(fmt.Sprintf("LoadFactor:    %.3f\n", s.LoadFactor()))
	sb.WriteString("}\n")
	return sb.String()
}

// Stats returns statistics for the VecMap. It is an O(slots) operation,
// so it should be used only for diagnostics or debugging purposes.
func (m *VecMap[K, V]) Stats() *MapStats {
	stats := &MapStats{
		Size:         len(m.rows),
		Slots:        len(m.slots),
		SlotCapacity: cap(m.slots),
		RowCapacity:  cap(m.rows),
		MaxKey:       -1,
	}
	for i := len(m.slots) - 1; i >= 0; i-- {
		if m.slots[i] != 0 {
			stats.MaxKey = i
			break
		}
	}
	stats.Holes = stats.Slots - stats.Size
	stats.TrailingHoles = stats.Slots - stats.MaxKey - 1
	return stats
}

// Stats returns statistics for the SparseMap. It is an O(slots) operation,
// so it should be used only for diagnostics or debugging purposes.
func (m *SparseMap[K, V]) Stats() *MapStats {
	stats := &MapStats{
		Size:         m.size,
		Slots:        len(m.values),
		SlotCapacity: cap(m.values),
		MaxKey:       m.highest(),
	}
	stats.Holes = stats.Slots - stats.Size
	stats.TrailingHoles = stats.Slots - stats.MaxKey - 1
	return stats
}
