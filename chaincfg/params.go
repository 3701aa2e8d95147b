// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/decred/dcrd/wire"
)

// bigOne is 1 represented as a big.Int.  It is defined here to avoid the
// overhead of creating it multiple times.
var bigOne = big.NewInt(1)

// Params defines the proof-of-work difficulty parameters of a network.
//
// Blocks below DifficultyForkHeight encode their difficulty with the packed
// encoding while blocks at and above it use the compact encoding.  The work
// measured by the two encodings differs by a constant factor, so a retarget
// window never spans the fork and the first WorkWindow blocks on each side of
// it use a fixed initial difficulty instead.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.CurrencyNet

	// PowLimit defines the highest allowed proof of work value for a block
	// using the compact encoding.
	PowLimit *big.Int

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// InitialPackedBits is the packed difficulty of the genesis block and
	// of every block until a full retarget window is available.
	InitialPackedBits uint32

	// DifficultyForkHeight is the height of the first block that encodes its
	// difficulty with the compact encoding.
	DifficultyForkHeight uint32

	// ForkInitialBits is the compact difficulty of the first WorkWindow
	// blocks at and after the difficulty fork.
	ForkInitialBits uint32

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// WorkWindow is the number of blocks whose cumulative work and timespan
	// are used to calculate the next difficulty.
	WorkWindow uint32

	// RetargetMedianWindow is the number of blocks whose median timestamp
	// is used for each end of the retarget window.
	RetargetMedianWindow uint32

	// TimestampMedianWindow is the number of previous blocks whose median
	// timestamp the timestamp of a new block must be after.
	TimestampMedianWindow uint32

	// DampM and DampN define the damping applied to the observed timespan
	// of a retarget window.  Only DampM/DampN of the observed timespan is
	// used while the remainder is taken from the target timespan.
	DampM uint32
	DampN uint32
}

// TargetSecondsPerBlock returns the desired number of seconds between blocks.
func (p *Params) TargetSecondsPerBlock() uint32 {
	return uint32(p.TargetTimePerBlock / time.Second)
}

// IsCompactHeight returns whether or not blocks at the passed height encode
// their difficulty with the compact encoding.
func (p *Params) IsCompactHeight(height uint32) bool {
	return height >= p.DifficultyForkHeight
}
