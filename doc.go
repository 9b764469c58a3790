// Package idxmap provides maps for keys that are small, dense,
// non-negative integers: newtype indices, enum values, slot or arena
// identifiers.
//
// Instead of hashing, a key's integer value addresses an array directly,
// so every access is O(1) pointer arithmetic with a predictable memory
// layout. The price is memory proportional to the largest key seen.
//
// Two layouts share the same method set:
//
//   - VecMap keeps the entries densely packed in rows and a key-addressed
//     slot array pointing into them. Iteration touches only live entries,
//     in insertion order; Delete moves the last row into the hole.
//   - SparseMap stores each value at its key's index with an occupancy
//     bitset. Nothing ever moves; iteration is in ascending key order and
//     skips holes.
//
// Pick VecMap when keys are deleted often or iterated over much more than
// they are looked up; pick SparseMap when keys are dense and ordered
// iteration matters. The two are not order compatible.
//
// Neither map is safe for concurrent mutation. The Par* methods fan reads,
// disjoint writes and reductions out over a bounded set of goroutines
// (see WithWorkers and WithPool).
package idxmap
