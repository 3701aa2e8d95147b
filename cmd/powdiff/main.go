// Copyright (c) 2020-2025 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"io"
	"os"

	flags "github.com/jessevdk/go-flags"
)

// newParser returns a parser for the global options and commands.  Command
// output is written to the passed writer.
func newParser(cfg *config, out io.Writer) (*flags.Parser, error) {
	parser := flags.NewParser(cfg, flags.Default)
	commands := []struct {
		name, short, long string
		data              any
	}{{
		"decode",
		"Describe difficulty bits",
		"Print the encoding, approximate value, target and work of difficulty bits.",
		&decodeCmd{cfg: cfg, out: out},
	}, {
		"check",
		"Check a proof-of-work hash against difficulty bits",
		"Report whether or not a proof-of-work hash, given in display order, reaches the target of difficulty bits.",
		&checkCmd{cfg: cfg, out: out},
	}, {
		"calc",
		"Calculate a retargeted difficulty",
		"Calculate the difficulty that makes a window of blocks take the target number of seconds given the work performed over it and the seconds it actually took.",
		&calcCmd{cfg: cfg, out: out},
	}, {
		"convert",
		"Convert difficulty bits between encodings",
		"Convert difficulty bits to the other encoding while keeping approximately the same target.",
		&convertCmd{cfg: cfg, out: out},
	}, {
		"replay",
		"Replay serialized headers into a work database",
		"Connect hex-encoded serialized block headers, one per line, to a chain persisted in a work database while enforcing the difficulty rules.",
		&replayCmd{cfg: cfg, out: out},
	}}
	for _, c := range commands {
		_, err := parser.AddCommand(c.name, c.short, c.long, c.data)
		if err != nil {
			return nil, err
		}
	}

	// The global options are finalized once they are parsed and before any
	// command runs.
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}
		if err := cfg.load(); err != nil {
			return err
		}
		return cmd.Execute(args)
	}
	return parser, nil
}

func main() {
	parser, err := newParser(newConfig(), os.Stdout)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	_, err = parser.Parse()
	if logRotator != nil {
		logRotator.Close()
	}
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
