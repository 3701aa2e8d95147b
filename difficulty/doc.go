// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package difficulty implements the proof-of-work difficulty encodings carried in
block headers along with the operations required to validate and retarget them.

Every function in this package is a pure function over value types, so all of
them are safe for concurrent access without any additional synchronization.

# Encodings

Two mutually incompatible 32-bit encodings are supported:

  - Packed: a normalized floating point like value made of an 8-bit order and a
    24-bit mantissa with an implicit leading bit.  It encodes a work value
    directly and is used by the chain prior to the difficulty fork.
  - Compact: the widely used byte-granular "nBits" target encoding made of an
    8-bit base 256 exponent and a 24-bit mantissa whose top bit is reserved as a
    sign flag.  It encodes a target and is used by the chain from the difficulty
    fork onwards.

Both encodings satisfy the Scheme interface.  The decision of which scheme
applies at a given height belongs to the consensus rules and is never made by
this package.

# Raw values

Work values are represented by the fixed-width 256-bit big-endian Raw type.
Cumulative chain work is maintained by adding (or subtracting) the Raw form of
each block difficulty to an accumulator via the AddDifficulty, SubDifficulty,
AddCompact and SubCompact methods.

# Errors

Values taken from headers supplied by peers are untrusted, so every decoding
path that can observe them reports failures with a RuleError whose underlying
ErrorKind can be tested with errors.Is.  Violations of internal invariants,
such as packing a mantissa without its leading bit or retargeting with a zero
time span, indicate a bug in the caller and panic.
*/
package difficulty
