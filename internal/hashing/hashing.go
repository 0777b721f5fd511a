// Package hashing provides position hashing and duplicate detection for
// batches of positions.
package hashing

import "github.com/lgbarn/gambit/internal/chess"

// DuplicateDetector tracks seen positions.
type DuplicateDetector struct {
	// hashTable stores seen signatures by Zobrist hash
	hashTable map[uint64][]PositionSignature
	// matchClocks treats positions with different clocks as distinct
	matchClocks bool
	// duplicateCount tracks number of duplicates found
	duplicateCount int
	// uniqueCount tracks number of stored signatures
	uniqueCount int
	// maxCapacity limits stored signatures (0 = unlimited)
	maxCapacity int
}

// PositionSignature stores identifying information about a position.
type PositionSignature struct {
	// Hash is the Zobrist hash of the position
	Hash uint64
	// WeakHash is a fast checksum for confirming a hash match
	WeakHash uint32
	// HalfmoveClock and FullmoveNumber are compared when matching clocks
	HalfmoveClock  int
	FullmoveNumber int
}

// NewDuplicateDetector creates a new duplicate detector.
// maxCapacity of 0 means unlimited capacity.
func NewDuplicateDetector(matchClocks bool, maxCapacity int) *DuplicateDetector {
	return &DuplicateDetector{
		hashTable:   make(map[uint64][]PositionSignature),
		matchClocks: matchClocks,
		maxCapacity: maxCapacity,
	}
}

// Signature returns the signature of pos.
func Signature(pos chess.Position) PositionSignature {
	return PositionSignature{
		Hash:           Zobrist(pos),
		WeakHash:       WeakHash(pos),
		HalfmoveClock:  pos.HalfmoveClock,
		FullmoveNumber: pos.FullmoveNumber,
	}
}

// CheckAndAdd checks if a position was seen before and records it.
// Returns true if the position is a duplicate. Once the detector is full,
// new positions are reported as unique but no longer recorded.
func (d *DuplicateDetector) CheckAndAdd(pos chess.Position) bool {
	sig := Signature(pos)

	for _, existing := range d.hashTable[sig.Hash] {
		if d.signaturesMatch(sig, existing) {
			d.duplicateCount++
			return true
		}
	}

	if d.IsFull() {
		return false
	}
	d.hashTable[sig.Hash] = append(d.hashTable[sig.Hash], sig)
	d.uniqueCount++
	return false
}

// signaturesMatch checks if two position signatures match.
func (d *DuplicateDetector) signaturesMatch(a, b PositionSignature) bool {
	if a.Hash != b.Hash || a.WeakHash != b.WeakHash {
		return false
	}
	if d.matchClocks {
		return a.HalfmoveClock == b.HalfmoveClock && a.FullmoveNumber == b.FullmoveNumber
	}
	return true
}

// DuplicateCount returns the number of duplicates detected.
func (d *DuplicateDetector) DuplicateCount() int {
	return d.duplicateCount
}

// UniqueCount returns the number of recorded positions.
func (d *DuplicateDetector) UniqueCount() int {
	return d.uniqueCount
}

// IsFull returns true if the detector has reached its capacity limit.
func (d *DuplicateDetector) IsFull() bool {
	return d.maxCapacity > 0 && d.uniqueCount >= d.maxCapacity
}

// Reset clears the hash table.
func (d *DuplicateDetector) Reset() {
	d.hashTable = make(map[uint64][]PositionSignature)
	d.duplicateCount = 0
	d.uniqueCount = 0
}
