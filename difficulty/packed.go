// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficulty

import (
	"fmt"
	"math"
	"math/big"

	"github.com/decred/dcrd/math/uint256"
)

const (
	// MantissaBits is the number of explicitly stored mantissa bits of a
	// packed difficulty.  It must be a multiple of 8 since the target checks
	// operate on whole bytes.
	MantissaBits = 24

	// MaxOrder is the largest order a packed difficulty can encode.
	MaxOrder = (1 << (32 - MantissaBits)) - 2

	// Inf is the packed difficulty sentinel that represents an infinite
	// difficulty, meaning there is no hash that satisfies it.  Any packed
	// value above it is invalid.
	Inf = Packed((MaxOrder + 1) << MantissaBits)

	// mantissaMask selects the explicitly stored mantissa bits.
	mantissaMask = (1 << MantissaBits) - 1

	// leadingBit is the implicit leading bit of the mantissa.
	leadingBit = 1 << MantissaBits

	// targetCheckBytes is the number of most significant bytes of the
	// double-width hash by difficulty product that must be zero for the
	// target to be reached.
	targetCheckBytes = RawSize - MantissaBits/8
)

// maxTargetDividend is the dividend used to convert a packed difficulty to a
// target.  It is all ones over the width of a Raw widened by the mantissa
// bytes, which is 2^280 - 1, so precision is not lost to the truncation of the
// division.
var maxTargetDividend = func() *big.Int {
	width := uint((RawSize + MantissaBits/8) * 8)
	one := big.NewInt(1)
	return new(big.Int).Sub(new(big.Int).Lsh(one, width), one)
}()

// Packed is the custom 32-bit floating point like encoding of a difficulty
// used prior to the difficulty fork.
//
// The most significant 8 bits hold the order and the least significant 24
// bits hold the mantissa minus its implicit leading bit:
//
//	------------------------------------
//	|     Order      |    Mantissa     |
//	|----------------------------------|
//	| 8 bits [31-24] | 24 bits [23-00] |
//	------------------------------------
//
// The work it represents is (2^24 + mantissa) * 2^order.  Unlike a target,
// larger values are harder.
type Packed uint32

// Pack returns the packed difficulty for the given order and mantissa.  The
// mantissa must include its leading bit, meaning bit MantissaBits must be the
// highest set bit, or the function will panic.  Orders greater than MaxOrder
// produce Inf.
func Pack(order, mantissa uint32) Packed {
	if order > MaxOrder {
		return Inf
	}
	if mantissa>>MantissaBits != 1 {
		panicf("mantissa %x is not normalized to %d bits", mantissa,
			MantissaBits+1)
	}
	return Packed((mantissa & mantissaMask) | order<<MantissaBits)
}

// Unpack returns the order and the mantissa of the packed difficulty with its
// implicit leading bit restored.
func (p Packed) Unpack() (order, mantissa uint32) {
	order = uint32(p) >> MantissaBits
	mantissa = leadingBit | (uint32(p) & mantissaMask)
	return order, mantissa
}

// IsValid returns whether or not the packed value is in the valid range, which
// includes the Inf sentinel.
func (p Packed) IsValid() bool {
	return p <= Inf
}

// Raw returns the work represented by the packed difficulty.  The maximum
// representable value is returned for Inf and invalid values.
func (p Packed) Raw() Raw {
	var r Raw
	if p >= Inf {
		return *r.Inv()
	}
	order, mantissa := p.Unpack()
	r.SetShifted(mantissa, order)
	return r
}

// IsTargetReached returns whether or not the passed hash, interpreted as a
// big-endian unsigned integer, satisfies the packed difficulty.  It is always
// false for Inf and invalid values.
//
// The hash is multiplied by the work value into a double-width product and the
// target is reached when the product has all of its most significant
// RawSize-MantissaBits/8 bytes zero.  This is equivalent to comparing the hash
// against the target returned by Target without any division.
func (p Packed) IsTargetReached(hash *Raw) bool {
	if p >= Inf {
		return false
	}

	work := p.Raw()
	prod := mulWide(hash, &work)
	for _, b := range prod[:targetCheckBytes] {
		if b != 0 {
			return false
		}
	}
	return true
}

// Target returns the largest hash value that satisfies the packed difficulty.
// An error is returned for Inf, which no hash satisfies, and for invalid
// values.
func (p Packed) Target() (uint256.Uint256, error) {
	if p > Inf {
		str := fmt.Sprintf("packed difficulty %08x is beyond the infinite "+
			"difficulty %08x", uint32(p), uint32(Inf))
		return uint256.Uint256{}, ruleError(ErrInvalidDifficulty, str)
	}
	if p == Inf {
		str := "packed difficulty is infinite"
		return uint256.Uint256{}, ruleError(ErrUnreachableTarget, str)
	}

	// The work is at least 2^MantissaBits for every finite value, so the
	// quotient always fits in 256 bits.
	work := p.Raw()
	divisor := new(big.Int).SetBytes(work[:])
	quo := new(big.Int).Quo(maxTargetDividend, divisor)

	var buf [RawSize]byte
	quo.FillBytes(buf[:])
	var target uint256.Uint256
	target.SetBytes(&buf)
	return target, nil
}

// CalcPacked calculates the packed difficulty that yields an average of dtTrg
// seconds per block given the work ref that was performed over the last dh
// blocks which took dtSrc seconds.  In other words it approximates:
//
//	ref * dtTrg / (dtSrc * dh)
//
// The calculation is carried out with a bounded precision binary floating
// point value backed by integers, so the result is truncated to the precision
// of the mantissa, but it is deterministic across platforms.
//
// The minimum difficulty, Packed(0), is returned when the result underflows
// and Inf is returned when it exceeds MaxOrder.  The product dtSrc*dh must not
// be zero or the function will panic.
func CalcPacked(ref *Raw, dh, dtTrg, dtSrc uint32) Packed {
	div := uint64(dtSrc) * uint64(dh)
	x := newBigFloatFromRaw(ref).mul(newBigFloat(uint64(dtTrg))).
		div(newBigFloat(div))
	if x.isZero() {
		return 0
	}

	// The mantissa is normalized to 32 bits, so move the binary point to
	// leave exactly MantissaBits+1 bits.
	const shift = bigFloatBits - 1 - MantissaBits
	x.order += shift
	if x.order < 0 {
		return 0
	}
	return Pack(uint32(x.order), x.value>>shift)
}

// Float64 returns an approximation of the packed difficulty scaled down by
// 2^MantissaBits.  It is only suitable for display purposes.
func (p Packed) Float64() float64 {
	order, mantissa := p.Unpack()
	return math.Ldexp(float64(mantissa), int(order)-MantissaBits)
}

// RawToFloat64 returns an approximation of the passed raw work value scaled
// down by 2^MantissaBits, consistent with Packed.Float64.  It is only suitable
// for display purposes.
func RawToFloat64(r *Raw) float64 {
	var res float64
	exp := RawSize*8 - 8 - MantissaBits
	for _, b := range r {
		if b != 0 {
			res += math.Ldexp(float64(b), exp)
		}
		exp -= 8
	}
	return res
}

// String returns the packed difficulty as the hex order and stored mantissa
// followed by its approximate value.
func (p Packed) String() string {
	return fmt.Sprintf("%02x-%06x(%g)", uint32(p)>>MantissaBits,
		uint32(p)&mantissaMask, p.Float64())
}
