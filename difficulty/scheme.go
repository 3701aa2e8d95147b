// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficulty

import (
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// Scheme is the set of operations shared by the encodings of the difficulty
// field of a block header.  Difficulties are passed around as the raw 32-bit
// header field so callers do not need to know which encoding is in effect.
//
// Implementations are stateless apart from immutable network parameters and
// are safe for concurrent access.
type Scheme interface {
	// Name returns a short human-readable name of the encoding.
	Name() string

	// IsTargetReached returns whether or not the passed proof-of-work hash
	// satisfies the difficulty.  Invalid difficulties are never reached.
	IsTargetReached(bits uint32, powHash *chainhash.Hash) bool

	// Target returns the largest hash value, in the numeric interpretation
	// of the encoding, that satisfies the difficulty.
	Target(bits uint32) (uint256.Uint256, error)

	// Work returns the work represented by the difficulty as a Raw value
	// suitable for accumulating the chain work.
	Work(bits uint32) (Raw, error)

	// Calculate returns the difficulty that yields an average of dtTrg
	// seconds per block given the work ref performed over the last dh blocks
	// which took dtSrc seconds.
	Calculate(ref *Raw, dh, dtTrg, dtSrc uint32) uint32

	// Float64 returns an approximation of the difficulty for display.
	Float64(bits uint32) float64

	// Format returns the diagnostic text form of the difficulty.
	Format(bits uint32) string
}

// PackedScheme implements Scheme for the packed encoding.  Hashes are
// interpreted as big-endian unsigned integers.
type PackedScheme struct{}

// Ensure PackedScheme implements the Scheme interface.
var _ Scheme = PackedScheme{}

// Name returns the name of the packed encoding.
func (PackedScheme) Name() string {
	return "packed"
}

// IsTargetReached returns whether or not the hash satisfies the packed bits.
func (PackedScheme) IsTargetReached(bits uint32, powHash *chainhash.Hash) bool {
	return Packed(bits).IsTargetReached((*Raw)(powHash))
}

// Target returns the target of the packed bits.
func (PackedScheme) Target(bits uint32) (uint256.Uint256, error) {
	return Packed(bits).Target()
}

// Work returns the work of the packed bits.  Unlike the raw conversion, it
// rejects values beyond Inf since those can only come from malformed headers.
func (PackedScheme) Work(bits uint32) (Raw, error) {
	p := Packed(bits)
	if !p.IsValid() {
		_, err := p.Target()
		return Raw{}, err
	}
	return p.Raw(), nil
}

// Calculate returns the retargeted packed bits.
func (PackedScheme) Calculate(ref *Raw, dh, dtTrg, dtSrc uint32) uint32 {
	return uint32(CalcPacked(ref, dh, dtTrg, dtSrc))
}

// Float64 returns the approximate value of the packed bits.
func (PackedScheme) Float64(bits uint32) float64 {
	return Packed(bits).Float64()
}

// Format returns the diagnostic text form of the packed bits.
func (PackedScheme) Format(bits uint32) string {
	return Packed(bits).String()
}

// CompactScheme implements Scheme for the compact encoding.  Hashes are
// interpreted as little-endian unsigned integers and targets are bounded by the
// proof-of-work limit of the network.
type CompactScheme struct {
	// PowLimit is the highest target a block may have.
	PowLimit *uint256.Uint256

	// PowLimitBits is PowLimit in its compact form.  Retargets that would
	// exceed PowLimit produce it instead.
	PowLimitBits uint32
}

// Ensure CompactScheme implements the Scheme interface.
var _ Scheme = CompactScheme{}

// Name returns the name of the compact encoding.
func (CompactScheme) Name() string {
	return "compact"
}

// IsTargetReached returns whether or not the hash satisfies the compact bits.
func (s CompactScheme) IsTargetReached(bits uint32, powHash *chainhash.Hash) bool {
	return Compact(bits).IsTargetReached(powHash, s.PowLimit)
}

// Target returns the target of the compact bits after ensuring it is in the
// range [1, PowLimit].
func (s CompactScheme) Target(bits uint32) (uint256.Uint256, error) {
	return Compact(bits).Target(s.PowLimit)
}

// Work returns the work of the compact bits.
func (s CompactScheme) Work(bits uint32) (Raw, error) {
	c := Compact(bits)
	if _, err := c.Target(s.PowLimit); err != nil {
		return Raw{}, err
	}
	return c.Work()
}

// Calculate returns the retargeted compact bits clamped to the proof-of-work
// limit.
func (s CompactScheme) Calculate(ref *Raw, dh, dtTrg, dtSrc uint32) uint32 {
	c := CalcCompact(ref, dh, dtTrg, dtSrc)
	target, isNegative, overflows := decodeCompact(uint32(c))
	if isNegative || overflows || target.Gt(s.PowLimit) {
		return s.PowLimitBits
	}
	return uint32(c)
}

// Float64 returns the approximate value of the compact bits.
func (CompactScheme) Float64(bits uint32) float64 {
	return Compact(bits).Float64()
}

// Format returns the diagnostic text form of the compact bits.
func (CompactScheme) Format(bits uint32) string {
	return Compact(bits).String()
}
