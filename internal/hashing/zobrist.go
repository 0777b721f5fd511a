package hashing

import "github.com/lgbarn/gambit/internal/chess"

// zobristKeys holds the random keys XORed into a position hash.
type zobristKeys struct {
	pieces    [2][7][chess.NumSquares]uint64
	blackMove uint64
	castling  [4]uint64
	enPassant [chess.BoardSize]uint64
}

var keys = newZobristKeys(0x9E3779B97F4A7C15)

// newZobristKeys fills the key tables from a splitmix64 stream so hashes
// are stable across runs.
func newZobristKeys(seed uint64) *zobristKeys {
	state := seed
	next := func() uint64 {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		return z ^ (z >> 31)
	}

	k := &zobristKeys{}
	for c := range k.pieces {
		for p := range k.pieces[c] {
			for sq := range k.pieces[c][p] {
				k.pieces[c][p][sq] = next()
			}
		}
	}
	k.blackMove = next()
	for i := range k.castling {
		k.castling[i] = next()
	}
	for i := range k.enPassant {
		k.enPassant[i] = next()
	}
	return k
}

// Zobrist returns the Zobrist hash of pos. Clocks are not part of the hash.
func Zobrist(pos chess.Position) uint64 {
	var h uint64
	for sq, piece := range pos.Squares {
		if piece.IsEmpty() {
			continue
		}
		h ^= keys.pieces[piece.Colour][piece.Type][sq]
	}
	if pos.SideToMove == chess.Black {
		h ^= keys.blackMove
	}
	rights := [4]bool{
		pos.Castling.WhiteKingside,
		pos.Castling.WhiteQueenside,
		pos.Castling.BlackKingside,
		pos.Castling.BlackQueenside,
	}
	for i, ok := range rights {
		if ok {
			h ^= keys.castling[i]
		}
	}
	if pos.EnPassant.Valid() {
		h ^= keys.enPassant[pos.EnPassant.File()]
	}
	return h
}

// WeakHash is a cheap occupancy checksum used to confirm a Zobrist match.
func WeakHash(pos chess.Position) uint32 {
	var h uint32
	for sq, piece := range pos.Squares {
		if piece.IsEmpty() {
			continue
		}
		h = h*31 + uint32(sq)*16 + uint32(piece.Type)*2 + uint32(piece.Colour)
	}
	return h
}
