// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficulty

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math/bits"

	"github.com/decred/dcrd/math/uint256"
)

// RawSize is the number of bytes in a Raw value.  It matches the width of the
// proof-of-work hash.
const RawSize = 32

// Raw is a fixed-width unsigned 256-bit integer stored in big-endian order,
// meaning the first byte is the most significant one.  It is used both for
// work values (the unpacked form of a packed difficulty and the cumulative
// chain work) and for hashes being tested against a packed difficulty.
//
// All arithmetic is performed modulo 2^256.
type Raw [RawSize]byte

// Uint256 returns the value as an unsigned 256-bit integer.
func (r *Raw) Uint256() uint256.Uint256 {
	var n uint256.Uint256
	n.SetBytes((*[RawSize]byte)(r))
	return n
}

// SetUint256 sets the raw value to the passed unsigned 256-bit integer.
//
// The raw value is returned to support chaining.  This enables syntax like:
// r := new(Raw).SetUint256(n).AddDifficulty(d)
func (r *Raw) SetUint256(n *uint256.Uint256) *Raw {
	*r = n.Bytes()
	return r
}

// SetZero sets the raw value to zero.
func (r *Raw) SetZero() *Raw {
	*r = Raw{}
	return r
}

// IsZero returns whether or not the raw value is zero.
func (r *Raw) IsZero() bool {
	return *r == Raw{}
}

// Inv inverts every bit of the raw value.  Inverting zero produces the maximum
// representable value.
func (r *Raw) Inv() *Raw {
	for i := range r {
		r[i] = ^r[i]
	}
	return r
}

// Negate sets the raw value to its two's complement.
func (r *Raw) Negate() *Raw {
	n := r.Uint256()
	return r.SetUint256(n.Negate())
}

// Add adds the passed raw value to the existing one modulo 2^256.
func (r *Raw) Add(r2 *Raw) *Raw {
	n, n2 := r.Uint256(), r2.Uint256()
	return r.SetUint256(n.Add(&n2))
}

// Sub subtracts the passed raw value from the existing one modulo 2^256.  It is
// carried out by negating the subtrahend and adding it.
func (r *Raw) Sub(r2 *Raw) *Raw {
	neg := *r2
	neg.Negate()
	return r.Add(&neg)
}

// Cmp compares the two raw values and returns -1, 0, or 1 depending on whether
// the receiver is less than, equal to, or greater than the passed value.
func (r *Raw) Cmp(r2 *Raw) int {
	return bytes.Compare(r[:], r2[:])
}

// Order returns the index of the highest set bit plus one, which is the number
// of bits needed to represent the value.  Zero has an order of zero.
func (r *Raw) Order() uint16 {
	n := r.Uint256()
	return n.BitLen()
}

// SetShifted sets the raw value to mantissa * 2^order.  Values which do not fit
// in 256 bits saturate to the maximum representable value so that the ordering
// of work values is preserved.
func (r *Raw) SetShifted(mantissa uint32, order uint32) *Raw {
	if mantissa == 0 {
		return r.SetZero()
	}
	if uint32(bits.Len32(mantissa))+order > RawSize*8 {
		return r.SetZero().Inv()
	}
	var n uint256.Uint256
	n.SetUint64(uint64(mantissa))
	n.Lsh(order)
	return r.SetUint256(&n)
}

// String returns the raw value as a zero-padded hex string.
func (r Raw) String() string {
	return hex.EncodeToString(r[:])
}

// words returns the raw value as little-endian ordered 64-bit words.
func (r *Raw) words() [4]uint64 {
	var w [4]uint64
	for i := range w {
		off := RawSize - 8*(i+1)
		w[i] = binary.BigEndian.Uint64(r[off : off+8])
	}
	return w
}

// mulWide returns the full 512-bit product of the two raw values in big-endian
// order.
func mulWide(a, b *Raw) [2 * RawSize]byte {
	x, y := a.words(), b.words()
	var prod [8]uint64
	for i := 0; i < len(x); i++ {
		var carry uint64
		for j := 0; j < len(y); j++ {
			hi, lo := bits.Mul64(x[i], y[j])
			var c uint64
			lo, c = bits.Add64(lo, prod[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			prod[i+j] = lo
			carry = hi
		}
		prod[i+len(y)] = carry
	}

	var out [2 * RawSize]byte
	for i, w := range prod {
		off := len(out) - 8*(i+1)
		binary.BigEndian.PutUint64(out[off:off+8], w)
	}
	return out
}

// AddDifficulty adds the work represented by the passed packed difficulty to
// the raw value.  It is primarily used to maintain a running total of the
// cumulative work of a chain.
func (r *Raw) AddDifficulty(d Packed) *Raw {
	work := d.Raw()
	return r.Add(&work)
}

// AddDifficulty2 sets the raw value to the sum of the passed base and the work
// represented by the packed difficulty.
func (r *Raw) AddDifficulty2(base *Raw, d Packed) *Raw {
	*r = d.Raw()
	return r.Add(base)
}

// SubDifficulty subtracts the work represented by the passed packed difficulty
// from the raw value.
func (r *Raw) SubDifficulty(d Packed) *Raw {
	work := d.Raw()
	return r.Add(work.Negate())
}

// SubDifficulty2 sets the raw value to the passed base less the work
// represented by the packed difficulty.
func (r *Raw) SubDifficulty2(base *Raw, d Packed) *Raw {
	*r = d.Raw()
	r.Negate()
	return r.Add(base)
}

// AddCompact adds the work represented by the passed compact difficulty to the
// raw value.  The raw value is left unmodified when the compact difficulty does
// not encode a valid target.
func (r *Raw) AddCompact(c Compact) error {
	work, err := c.Work()
	if err != nil {
		return err
	}
	r.Add(&work)
	return nil
}

// SubCompact subtracts the work represented by the passed compact difficulty
// from the raw value.  The raw value is left unmodified when the compact
// difficulty does not encode a valid target.
func (r *Raw) SubCompact(c Compact) error {
	work, err := c.Work()
	if err != nil {
		return err
	}
	r.Add(work.Negate())
	return nil
}
