// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Powdiff inspects proof-of-work difficulties and replays block headers against
the difficulty rules.

Usage:

	powdiff [OPTIONS] <command> [COMMAND OPTIONS] [ARGS]

Application Options:

	    --net=[mainnet|testnet|regnet]  Network to use (default: mainnet)
	    --paramsfile=                   YAML file with overrides for the
	                                    parameters of the selected network
	    --logdir=                       Directory to log output
	                                    (default: ~/.powdiff/logs)
	    --nofilelogging                 Disable file logging
	-d, --debuglevel=                   Logging level for all subsystems
	                                    (default: info)

Commands:

	decode   Describe difficulty bits
	check    Check a proof-of-work hash against difficulty bits
	calc     Calculate a retargeted difficulty
	convert  Convert difficulty bits between encodings
	replay   Replay serialized headers into a work database

Blocks before the difficulty fork height of a network use the packed encoding
and the remaining blocks use the compact encoding.  Commands that work with
difficulty bits select the encoding with --scheme or, when it is not set, the
encoding in effect at --height.

# Replaying Headers

The replay command reads a file of hex-encoded serialized block headers, one per
line, with blank lines and lines starting with # ignored.  Files with an .lz4
extension are decompressed while they are read.  The headers are connected to a
chain stored in a work database under --datadir, so a later replay of a longer
file only connects the new headers.  The proof-of-work hash of each header is
calculated with --powhash (blake256 or blake3).

When --promlisten is set, replay progress is exported as Prometheus metrics at
/metrics on that address until the replay finishes.

# Parameters File

The parameters of the selected network may be overridden with a YAML file.
Keys that are not present keep the values of the network:

	name: devnet
	powLimitBits: 0x207fffff
	difficultyForkHeight: 200
	forkInitialBits: 0x2007ffff
	targetTimePerBlock: 15s
	workWindow: 32
*/
package main
