// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math"

	"github.com/decred/powdiff/chaincfg"
)

// CalcNextRequiredDifficulty calculates the required difficulty for the block
// at the passed height given the previous blocks provided by the source.
//
// The difficulty is calculated from the work performed over the last
// WorkWindow blocks and the time it took to produce them, measured as the
// difference of the median timestamps at either end of the window and damped
// towards the target timespan.  The initial difficulties of the network are
// used until a full window of blocks in the same encoding is available, which
// means no window ever includes blocks from both sides of the difficulty fork.
//
// This function is safe for concurrent access provided the source is.
func CalcNextRequiredDifficulty(params *chaincfg.Params, src NodeSource, nextHeight uint32) (uint32, error) {
	isCompact := params.IsCompactHeight(nextHeight)
	if nextHeight <= params.WorkWindow || (isCompact &&
		nextHeight-params.DifficultyForkHeight < params.WorkWindow) {

		if isCompact {
			return params.ForkInitialBits, nil
		}
		return params.InitialPackedBits, nil
	}

	// The window consists of the blocks after the base up to and including
	// the tip.
	tipHeight := nextHeight - 1
	baseHeight := tipHeight - params.WorkWindow
	tip, err := src.NodeByHeight(tipHeight)
	if err != nil {
		return 0, err
	}
	base, err := src.NodeByHeight(baseHeight)
	if err != nil {
		return 0, err
	}
	ref := tip.ChainWork
	ref.Sub(&base.ChainWork)

	tipMedian, err := medianTimestamp(src, tipHeight, params.RetargetMedianWindow)
	if err != nil {
		return 0, err
	}
	baseMedian, err := medianTimestamp(src, baseHeight,
		params.RetargetMedianWindow)
	if err != nil {
		return 0, err
	}

	// Timestamps are not required to be increasing, so limit the observed
	// timespan to one second, then damp it towards the target timespan.
	dh := params.WorkWindow
	dtTrg := uint64(params.TargetSecondsPerBlock()) * uint64(dh)
	dtSrc := uint64(1)
	if tipMedian > baseMedian {
		dtSrc = uint64(tipMedian - baseMedian)
	}
	dtSrc = (dtSrc*uint64(params.DampM) +
		dtTrg*uint64(params.DampN-params.DampM)) / uint64(params.DampN)
	dtSrc = clampUint32(dtSrc)
	dtTrg = clampUint32(dtTrg)

	scheme := SchemeForHeight(params, nextHeight)
	bits := scheme.Calculate(&ref, dh, uint32(dtTrg), uint32(dtSrc))
	log.Tracef("%s difficulty for height %d: window work %v, timespan %ds "+
		"(target %ds) -> %s", scheme.Name(), nextHeight, ref, dtSrc, dtTrg,
		scheme.Format(bits))
	return bits, nil
}

// clampUint32 returns the passed value limited to the range [1, MaxUint32].
func clampUint32(v uint64) uint64 {
	if v < 1 {
		return 1
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return v
}
