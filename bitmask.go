package mado

import "math/bits"

// bitmask256 represents a set of up to 256 component IDs. Each archetype is
// keyed by the bitmask of the components its entities carry, and queries
// match archetypes by comparing their include/exclude masks against it.
type bitmask256 [4]uint64

// set enables the bit corresponding to the given component ID.
func (m *bitmask256) set(bit ComponentID) {
	m[bit>>6] |= uint64(1) << (bit & 63)
}

// unset disables the bit corresponding to the given component ID.
func (m *bitmask256) unset(bit ComponentID) {
	m[bit>>6] &= ^(uint64(1) << (bit & 63))
}

// has reports whether a specific bit is set in the mask.
func (m bitmask256) has(bit ComponentID) bool {
	return m[bit>>6]&(uint64(1)<<(bit&63)) != 0
}

// contains checks if all the bits set in sub are also set in m. This is used
// to determine if an archetype's component set is a superset of a query's
// required components.
func (m bitmask256) contains(sub bitmask256) bool {
	return (m[0]&sub[0]) == sub[0] &&
		(m[1]&sub[1]) == sub[1] &&
		(m[2]&sub[2]) == sub[2] &&
		(m[3]&sub[3]) == sub[3]
}

// intersects checks if m has any bits in common with other.
func (m bitmask256) intersects(other bitmask256) bool {
	return (m[0]&other[0] != 0) ||
		(m[1]&other[1] != 0) ||
		(m[2]&other[2] != 0) ||
		(m[3]&other[3] != 0)
}

func (m bitmask256) or(other bitmask256) bitmask256 {
	return bitmask256{m[0] | other[0], m[1] | other[1], m[2] | other[2], m[3] | other[3]}
}

func (m bitmask256) isZero() bool {
	return m[0]|m[1]|m[2]|m[3] == 0
}

// ids returns the component IDs set in the mask in ascending order.
func (m bitmask256) ids() []ComponentID {
	out := make([]ComponentID, 0, m.count())
	for word := range m {
		w := m[word]
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			out = append(out, ComponentID(word*64+bit))
			w &= w - 1
		}
	}
	return out
}

func (m bitmask256) count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) + bits.OnesCount64(m[3])
}
