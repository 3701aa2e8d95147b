// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/decred/powdiff/blockchain"
	"github.com/decred/powdiff/chaincfg"
	"github.com/decred/powdiff/difficulty"
)

// errTargetNotReached is returned by the check command when the hash does not
// satisfy the difficulty.
var errTargetNotReached = errors.New("hash does not reach the target")

// schemeOptions selects the difficulty encoding a command works with.
type schemeOptions struct {
	Scheme string `long:"scheme" description:"Difficulty encoding (default: the encoding in effect at --height)" choice:"packed" choice:"compact"`
	Height uint32 `long:"height" description:"Block height that selects the difficulty encoding when --scheme is not set"`
}

// scheme returns the selected encoding for the passed network.
func (o *schemeOptions) scheme(params *chaincfg.Params) (difficulty.Scheme, error) {
	if o.Scheme == "" {
		return blockchain.SchemeForHeight(params, o.Height), nil
	}
	return schemeByName(params, o.Scheme)
}

// decodeCmd describes difficulty bits.
type decodeCmd struct {
	cfg *config
	out io.Writer

	schemeOptions
	Args struct {
		Bits string `positional-arg-name:"bits"`
	} `positional-args:"yes" required:"yes"`
}

// Execute prints the encoding, value, target and work of the difficulty.
func (c *decodeCmd) Execute(args []string) error {
	bits, err := parseBits(c.Args.Bits)
	if err != nil {
		return err
	}
	scheme, err := c.scheme(c.cfg.params)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "encoding:   %s\n", scheme.Name())
	fmt.Fprintf(c.out, "difficulty: %s\n", scheme.Format(bits))
	fmt.Fprintf(c.out, "value:      %g\n", scheme.Float64(bits))
	target, err := scheme.Target(bits)
	if err != nil {
		fmt.Fprintf(c.out, "target:     %v\n", err)
	} else {
		fmt.Fprintf(c.out, "target:     %064x\n", &target)
	}
	work, err := scheme.Work(bits)
	if err != nil {
		fmt.Fprintf(c.out, "work:       %v\n", err)
	} else {
		fmt.Fprintf(c.out, "work:       %v\n", work)
	}
	return nil
}

// checkCmd checks a proof-of-work hash against difficulty bits.
type checkCmd struct {
	cfg *config
	out io.Writer

	schemeOptions
	Args struct {
		Bits string `positional-arg-name:"bits"`
		Hash string `positional-arg-name:"hash"`
	} `positional-args:"yes" required:"yes"`
}

// Execute reports whether or not the hash reaches the target of the
// difficulty and fails when it does not.
func (c *checkCmd) Execute(args []string) error {
	bits, err := parseBits(c.Args.Bits)
	if err != nil {
		return err
	}
	hash, err := parseHash(c.Args.Hash)
	if err != nil {
		return err
	}
	scheme, err := c.scheme(c.cfg.params)
	if err != nil {
		return err
	}
	if _, err := scheme.Target(bits); err != nil {
		return err
	}

	if !scheme.IsTargetReached(bits, hash) {
		return fmt.Errorf("%w of %s difficulty %s", errTargetNotReached,
			scheme.Name(), scheme.Format(bits))
	}
	fmt.Fprintf(c.out, "hash %v reaches the target of %s difficulty %s\n",
		hash, scheme.Name(), scheme.Format(bits))
	return nil
}

// calcCmd calculates a retargeted difficulty.
type calcCmd struct {
	cfg *config
	out io.Writer

	schemeOptions
	Ref    string `long:"ref" description:"Work performed over the window as big-endian hex" required:"true"`
	Blocks uint32 `long:"blocks" description:"Number of blocks in the window" required:"true"`
	Target uint32 `long:"target" description:"Desired number of seconds for the window" required:"true"`
	Actual uint32 `long:"actual" description:"Number of seconds the window took" required:"true"`
}

// Execute prints the difficulty that yields the desired time for the window.
func (c *calcCmd) Execute(args []string) error {
	ref, err := parseRaw(c.Ref)
	if err != nil {
		return err
	}
	if c.Blocks == 0 || c.Actual == 0 {
		return errors.New("the number of blocks and actual seconds must " +
			"not be zero")
	}
	scheme, err := c.scheme(c.cfg.params)
	if err != nil {
		return err
	}

	bits := scheme.Calculate(ref, c.Blocks, c.Target, c.Actual)
	fmt.Fprintf(c.out, "%s (%g)\n", scheme.Format(bits), scheme.Float64(bits))
	return nil
}

// convertCmd converts difficulty bits between the encodings.
type convertCmd struct {
	cfg *config
	out io.Writer

	schemeOptions
	To   string `long:"to" description:"Encoding to convert to" choice:"packed" choice:"compact" required:"true"`
	Args struct {
		Bits string `positional-arg-name:"bits"`
	} `positional-args:"yes" required:"yes"`
}

// convertBits converts the passed bits from one encoding to another such that
// both describe approximately the same target.  The packed encoding measures
// work in units 2^MantissaBits times smaller than the compact encoding.
func convertBits(from, to difficulty.Scheme, bits uint32) (uint32, error) {
	work, err := from.Work(bits)
	if err != nil {
		return 0, err
	}
	if from.Name() == to.Name() {
		return bits, nil
	}

	const unitRatio = 1 << difficulty.MantissaBits
	if to.Name() == schemePacked {
		return to.Calculate(&work, 1, unitRatio, 1), nil
	}
	return to.Calculate(&work, 1, 1, unitRatio), nil
}

// Execute prints the converted difficulty.
func (c *convertCmd) Execute(args []string) error {
	bits, err := parseBits(c.Args.Bits)
	if err != nil {
		return err
	}
	from, err := c.scheme(c.cfg.params)
	if err != nil {
		return err
	}
	to, err := schemeByName(c.cfg.params, c.To)
	if err != nil {
		return err
	}

	converted, err := convertBits(from, to, bits)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s -> %s %s\n", from.Name(), from.Format(bits),
		to.Name(), to.Format(converted))
	return nil
}
