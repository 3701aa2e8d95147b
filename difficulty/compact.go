// Copyright (c) 2021-2023 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficulty

import (
	"fmt"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

const (
	// compactSignBit is the bit of compact difficulty bits reserved for the
	// sign of the encoded value.
	compactSignBit = 0x00800000

	// compactMantissaMask selects the mantissa of compact difficulty bits
	// without the sign bit.
	compactMantissaMask = 0x007fffff

	// compactRefExponent is the exponent the approximate display value of a
	// compact difficulty is normalized to.
	compactRefExponent = 30
)

// Compact is the compact "nBits" representation of a target difficulty used
// from the difficulty fork onwards.  The representation is similar to IEEE754
// floating point numbers.
//
// Like IEEE754 floating point, there are three basic components: the sign,
// the exponent, and the mantissa.  They are broken out as follows:
//
//  1. the most significant 8 bits represent the unsigned base 256 exponent
//  2. zero-based bit 23 (the 24th bit) represents the sign bit
//  3. the least significant 23 bits represent the mantissa
//
// Diagram:
//
//	-------------------------------------------------
//	|   Exponent     |    Sign    |    Mantissa     |
//	|-----------------------------------------------|
//	| 8 bits [31-24] | 1 bit [23] | 23 bits [22-00] |
//	-------------------------------------------------
//
// The formula to calculate N is:
//
//	N = (-1^sign) * mantissa * 256^(exponent-3)
//
// Targets are never negative, so any encoding with the sign bit set is
// rejected when decoded.
type Compact uint32

// decodeCompact converts compact difficulty bits to an unsigned 256-bit
// integer along with flags that indicate whether or not the encoding was for a
// negative value and/or overflows a uint256.
func decodeCompact(bits uint32) (n uint256.Uint256, isNegative bool, overflows bool) {
	// Extract the mantissa, sign bit, and exponent.
	mantissa := bits & compactMantissaMask
	isSignBitSet := bits&compactSignBit != 0
	exponent := bits >> 24

	// Nothing to do when the mantissa is zero as any multiple of it will
	// necessarily also be 0 and therefore it can never be negative or overflow.
	if mantissa == 0 {
		return n, false, false
	}

	// Since the base for the exponent is 256 = 2^8, the exponent is a multiple
	// of 8 and thus the full 256-bit number is computed by shifting the
	// mantissa right or left accordingly.
	if exponent <= 3 {
		n.SetUint64(uint64(mantissa >> (8 * (3 - exponent))))
		return n, isSignBitSet, false
	}

	// Any encoded exponent of 35 or greater overflows because 256/8 + 3 = 35,
	// while exponents of 34 and 33 leave room for only 8 and 16 bits of the
	// mantissa respectively.
	overflows = exponent >= 35 || (exponent >= 34 && mantissa > 0xff) ||
		(exponent >= 33 && mantissa > 0xffff)
	if overflows {
		return n, isSignBitSet, true
	}
	n.SetUint64(uint64(mantissa))
	n.Lsh(8 * (exponent - 3))
	return n, isSignBitSet, false
}

// CompactFromTarget converts an unsigned 256-bit target to its minimal
// normalized compact representation.  The compact representation only provides
// 23 bits of precision, so values larger than (2^23 - 1) only encode the most
// significant digits of the number.
func CompactFromTarget(n *uint256.Uint256) Compact {
	// No need to do any work if it's zero.
	if n.IsZero() {
		return 0
	}

	// Since the base for the exponent is 256, the exponent can be treated as
	// the number of bytes it takes to represent the value.  So, shift the
	// number right or left accordingly.  This is equivalent to:
	// mantissa = n / 256^(exponent-3)
	var mantissa uint32
	exponent := uint32((n.BitLen() + 7) / 8)
	if exponent <= 3 {
		mantissa = n.Uint32() << (8 * (3 - exponent))
	} else {
		// Use a copy to avoid modifying the caller's original value.
		mantissa = new(uint256.Uint256).RshVal(n, 8*(exponent-3)).Uint32()
	}

	// When the mantissa already has the sign bit set, the number is too large
	// to fit into the available 23-bits, so divide the number by 256 and
	// increment the exponent accordingly.
	if mantissa&compactSignBit != 0 {
		mantissa >>= 8
		exponent++
	}

	return Compact(exponent<<24 | mantissa)
}

// Unpack decodes the compact difficulty to its target.  An error is returned
// when the encoding is negative, overflows a uint256 or is zero, since those
// are reachable from headers supplied by peers.
func (c Compact) Unpack() (uint256.Uint256, error) {
	target, isNegative, overflows := decodeCompact(uint32(c))
	if isNegative {
		str := fmt.Sprintf("target difficulty bits %08x is a negative value",
			uint32(c))
		return uint256.Uint256{}, ruleError(ErrNegativeTarget, str)
	}
	if overflows {
		str := fmt.Sprintf("target difficulty bits %08x overflows a uint256",
			uint32(c))
		return uint256.Uint256{}, ruleError(ErrTargetOverflow, str)
	}
	if target.IsZero() {
		str := fmt.Sprintf("target difficulty bits %08x is zero", uint32(c))
		return uint256.Uint256{}, ruleError(ErrZeroTarget, str)
	}
	return target, nil
}

// Target decodes the compact difficulty to its target and ensures it is in the
// range [1, powLimit].
func (c Compact) Target(powLimit *uint256.Uint256) (uint256.Uint256, error) {
	target, err := c.Unpack()
	if err != nil {
		return uint256.Uint256{}, err
	}
	if target.Gt(powLimit) {
		str := fmt.Sprintf("target difficulty %064x is higher than max %064x",
			&target, powLimit)
		return uint256.Uint256{}, ruleError(ErrTargetAboveLimit, str)
	}
	return target, nil
}

// HashToUint256 converts the provided hash to an unsigned 256-bit integer that
// can be used to perform math comparisons.
func HashToUint256(hash *chainhash.Hash) uint256.Uint256 {
	// Hashes are a stream of bytes that do not have any inherent endianness to
	// them, so they are interpreted as little endian for the purposes of
	// treating them as a uint256.
	return *new(uint256.Uint256).SetBytesLE((*[32]byte)(hash))
}

// IsTargetReached returns whether or not the passed hash is less than or equal
// to the target the compact difficulty represents.  It is false whenever the
// target is not valid for the provided proof-of-work limit.
func (c Compact) IsTargetReached(hash *chainhash.Hash, powLimit *uint256.Uint256) bool {
	target, err := c.Target(powLimit)
	if err != nil {
		return false
	}
	hashNum := HashToUint256(hash)
	return !hashNum.Gt(&target)
}

// targetToWork converts a non-zero target to the expected number of hashes
// needed to reach it.
//
// The goal is to calculate 2^256 / (target+1) using a fixed-precision uint256.
// Since 2^256 can't be represented by a uint256, the calc is performed as
// follows:
//
//	   work = (2^256 / (target+1))
//	=> work = ((2^256-target-1) / (target+1))+1
//
// where 2^256-target-1 is the one's complement of the target.
func targetToWork(target *uint256.Uint256) uint256.Uint256 {
	divisor := new(uint256.Uint256).SetUint64(1).Add(target)
	work := *target
	return *work.Not().Div(divisor).AddUint64(1)
}

// workToTarget is the inverse of targetToWork and calculates (2^256 - work) /
// work.  The work must not be zero.
func workToTarget(work *uint256.Uint256) uint256.Uint256 {
	target := *work
	return *target.Negate().Div(work)
}

// Work returns the work represented by the compact difficulty in the same Raw
// domain as packed difficulties so cumulative work can be compared across the
// difficulty fork.
//
// The compact domain is little endian while the Raw domain is big endian, so
// the bytes are explicitly reversed on the way in.
func (c Compact) Work() (Raw, error) {
	target, err := c.Unpack()
	if err != nil {
		return Raw{}, err
	}

	work := targetToWork(&target)
	le := work.BytesLE()
	var r Raw
	for i := range r {
		r[i] = le[RawSize-1-i]
	}
	return r, nil
}

// CompactFromWork is the inverse of Compact.Work.  It reverses the bytes of the
// passed Raw work back to the compact domain, converts the work to a target and
// encodes it.  The work is produced internally from validated difficulties, so
// a zero work is a bug in the caller and causes a panic.
func CompactFromWork(r *Raw) Compact {
	var le [RawSize]byte
	for i := range le {
		le[i] = r[RawSize-1-i]
	}
	var work uint256.Uint256
	work.SetBytesLE(&le)
	if work.IsZero() {
		panicf("cannot convert zero work to a compact difficulty")
	}

	target := workToTarget(&work)
	return CompactFromTarget(&target)
}

// CalcCompact calculates the compact difficulty that yields an average of dtTrg
// seconds per block given the work ref that was performed over the last dh
// blocks which took dtSrc seconds.  The work per block is calculated exactly
// as:
//
//	ref * dtTrg / (dtSrc * dh)
//
// using truncating integer arithmetic, which is acceptable since the compact
// encoding only has byte granularity.  A work below one is raised to one, which
// yields a target that callers are expected to clamp to the proof-of-work
// limit.  The product dtSrc*dh must not be zero or the function will panic.
func CalcCompact(ref *Raw, dh, dtTrg, dtSrc uint32) Compact {
	div := uint64(dtSrc) * uint64(dh)
	if div == 0 {
		panicf("compact difficulty retarget over an empty span (dh %d, "+
			"dtSrc %d)", dh, dtSrc)
	}

	work := ref.Uint256()
	work.Mul(new(uint256.Uint256).SetUint64(uint64(dtTrg)))
	work.Div(new(uint256.Uint256).SetUint64(div))
	if work.IsZero() {
		work.SetUint64(1)
	}

	target := workToTarget(&work)
	return CompactFromTarget(&target)
}

// Float64 returns the compact difficulty as a human-scale approximation which
// grows as the target shrinks.  It is only suitable for display purposes.
func (c Compact) Float64() float64 {
	shift := int(uint32(c) >> 24)
	diff := float64(0x0000ffff) / float64(uint32(c)&0x00ffffff)
	for ; shift < compactRefExponent; shift++ {
		diff *= 256.0
	}
	for ; shift > compactRefExponent; shift-- {
		diff /= 256.0
	}
	return diff
}

// String returns the compact difficulty bits as a hex string.
func (c Compact) String() string {
	return fmt.Sprintf("%x", uint32(c))
}
