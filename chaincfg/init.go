// Copyright (c) 2017-2019 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/decred/dcrd/math/uint256"
	"github.com/decred/powdiff/difficulty"
)

var (
	errInvalidPowLimit      = errors.New("invalid pow limit")
	errInvalidPowLimitBits  = errors.New("pow limit bits do not match pow limit")
	errInvalidInitialBits   = errors.New("invalid initial packed difficulty")
	errInvalidForkBits      = errors.New("invalid fork initial difficulty")
	errInvalidTimePerBlock  = errors.New("invalid target time per block")
	errInvalidWorkWindow    = errors.New("invalid work window")
	errInvalidMedianWindow  = errors.New("median windows must be odd")
	errInvalidDamping       = errors.New("invalid damping")
	errUnknownNetwork       = errors.New("unknown network")
	errForkInsideWorkWindow = errors.New("difficulty fork before the first " +
		"retarget")
)

// PowLimitUint256 returns the proof-of-work limit as an unsigned 256-bit
// integer.
func (p *Params) PowLimitUint256() *uint256.Uint256 {
	return new(uint256.Uint256).SetBig(p.PowLimit)
}

// Validate returns an error when the parameters are not internally consistent.
func (p *Params) Validate() error {
	if p.PowLimit == nil || p.PowLimit.Sign() <= 0 || p.PowLimit.BitLen() > 256 {
		return errInvalidPowLimit
	}
	powLimit := p.PowLimitUint256()

	// The compact form of the limit is truncated, so it is never more than
	// the limit itself and must be what the limit encodes to.
	if difficulty.CompactFromTarget(powLimit) != difficulty.Compact(p.PowLimitBits) {
		return errInvalidPowLimitBits
	}
	if _, err := difficulty.Packed(p.InitialPackedBits).Target(); err != nil {
		return fmt.Errorf("%w: %v", errInvalidInitialBits, err)
	}
	_, err := difficulty.Compact(p.ForkInitialBits).Target(powLimit)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidForkBits, err)
	}

	if p.TargetTimePerBlock < time.Second ||
		p.TargetTimePerBlock%time.Second != 0 {

		return errInvalidTimePerBlock
	}
	if p.WorkWindow == 0 {
		return errInvalidWorkWindow
	}
	if p.DifficultyForkHeight != 0 && p.DifficultyForkHeight <= p.WorkWindow {
		return errForkInsideWorkWindow
	}

	// The median is taken as the middle element, which is only a true median
	// for an odd number of timestamps.
	if p.RetargetMedianWindow%2 == 0 || p.TimestampMedianWindow%2 == 0 {
		return errInvalidMedianWindow
	}
	if p.DampN == 0 || p.DampM == 0 || p.DampM > p.DampN {
		return errInvalidDamping
	}

	return nil
}

// ParamsByName returns the parameters of the standard network with the passed
// name, case insensitively.
func ParamsByName(name string) (*Params, error) {
	for _, params := range allParams() {
		if strings.EqualFold(params.Name, name) {
			return params, nil
		}
	}
	return nil, fmt.Errorf("%w %q", errUnknownNetwork, name)
}

// allParams returns the parameters of all standard networks.
func allParams() []*Params {
	return []*Params{MainNetParams(), TestNetParams(), RegNetParams()}
}

func validateNetworks() {
	for _, params := range allParams() {
		if err := params.Validate(); err != nil {
			e := fmt.Sprintf("invalid parameters on %v: %v", params.Name,
				err)
			panic(e)
		}
	}
}

func init() {
	validateNetworks()
}
