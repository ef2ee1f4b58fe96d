// Package license derives the deterministic license code handed to an
// employee ahead of registration. The derivation is a plain 32-bit rolling
// hash, not a cryptographic scheme: knowing the algorithm and an employee ID
// is enough to compute the code. Single-use enforcement lives in the license
// repository, not here.
package license

import "fmt"

// Pattern is the accepted wire format for a license code. The generator only
// ever emits digits for the two groups; the broader alphabet is kept so
// previously documented codes keep validating.
const Pattern = `^BP-[A-Z0-9]{4}-[A-Z0-9]{4}$`

// Generate derives the license code for an employee ID. The same ID always
// yields the same code. Collisions between different IDs are possible and are
// left to the ledger's uniqueness constraints.
//
// The accumulator must wrap exactly like 32-bit two's-complement arithmetic,
// sign included, so codes match the ones already issued.
func Generate(employeeID string) string {
	var hash int32
	for _, ch := range employeeID {
		hash = (hash << 5) - hash + int32(ch)
	}

	part1 := abs32(hash % 10000)
	part2 := abs32((hash >> 4) % 10000)

	return fmt.Sprintf("BP-%04d-%04d", part1, part2)
}

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}
