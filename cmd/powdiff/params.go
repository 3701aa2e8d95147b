// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/decred/powdiff/chaincfg"
	"github.com/decred/powdiff/difficulty"
	"gopkg.in/yaml.v2"
)

// paramsFile describes the overrides a parameters file applies to the
// parameters of a network.  Fields that are not present in the file keep the
// values of the network.
type paramsFile struct {
	Name                  *string        `yaml:"name"`
	PowLimitBits          *uint32        `yaml:"powLimitBits"`
	InitialPackedBits     *uint32        `yaml:"initialPackedBits"`
	DifficultyForkHeight  *uint32        `yaml:"difficultyForkHeight"`
	ForkInitialBits       *uint32        `yaml:"forkInitialBits"`
	TargetTimePerBlock    *time.Duration `yaml:"targetTimePerBlock"`
	WorkWindow            *uint32        `yaml:"workWindow"`
	RetargetMedianWindow  *uint32        `yaml:"retargetMedianWindow"`
	TimestampMedianWindow *uint32        `yaml:"timestampMedianWindow"`
	DampM                 *uint32        `yaml:"dampM"`
	DampN                 *uint32        `yaml:"dampN"`
}

// apply returns a copy of the passed parameters with the overrides applied.
// The proof-of-work limit is derived from the limit bits when they are
// overridden.
func (f *paramsFile) apply(base *chaincfg.Params) (*chaincfg.Params, error) {
	params := *base
	setUint32 := func(dst *uint32, src *uint32) {
		if src != nil {
			*dst = *src
		}
	}
	if f.Name != nil {
		params.Name = *f.Name
	}
	if f.PowLimitBits != nil {
		powLimit, err := difficulty.Compact(*f.PowLimitBits).Unpack()
		if err != nil {
			return nil, fmt.Errorf("invalid proof-of-work limit bits: %w", err)
		}
		params.PowLimit = powLimit.ToBig()
		params.PowLimitBits = *f.PowLimitBits
	}
	setUint32(&params.InitialPackedBits, f.InitialPackedBits)
	setUint32(&params.DifficultyForkHeight, f.DifficultyForkHeight)
	setUint32(&params.ForkInitialBits, f.ForkInitialBits)
	if f.TargetTimePerBlock != nil {
		params.TargetTimePerBlock = *f.TargetTimePerBlock
	}
	setUint32(&params.WorkWindow, f.WorkWindow)
	setUint32(&params.RetargetMedianWindow, f.RetargetMedianWindow)
	setUint32(&params.TimestampMedianWindow, f.TimestampMedianWindow)
	setUint32(&params.DampM, f.DampM)
	setUint32(&params.DampN, f.DampN)

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &params, nil
}

// parseParams decodes the passed YAML overrides and applies them to the passed
// parameters.
func parseParams(data []byte, base *chaincfg.Params) (*chaincfg.Params, error) {
	var f paramsFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing parameters: %w", err)
	}
	return f.apply(base)
}

// loadParamsFile reads the YAML parameters file at the passed path and applies
// it to the passed parameters.
func loadParamsFile(path string, base *chaincfg.Params) (*chaincfg.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading parameters file: %w", err)
	}
	params, err := parseParams(data, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return params, nil
}
