// SPDX-License-Identifier: MIT

package lsystem

// Stream identifiers mixed into a state's seed.
const (
	streamStep uint64 = iota + 1
	streamNextState
)

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with the SplitMix64 finalizer. Small input changes flip about half of
// the output bits, so neighbouring item indexes give unrelated samples.
//
// Complexity: O(1).
func deriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return x
}

// itemSample returns the uniform sample in [0, 1) owned by the symbol at
// index during the step seeded with stepSeed.
func itemSample(stepSeed uint64, index int) float64 {
	return float64(deriveSeed(stepSeed, uint64(index))>>11) / (1 << 53)
}
