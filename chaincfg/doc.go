// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the proof-of-work difficulty parameters of the
// standard networks.
//
// In addition to the main network, there also exist two standard networks:
// the public test network and the regression test network.  The parameters
// define the proof-of-work limit, the difficulty of the first blocks, the
// height of the difficulty fork from the packed to the compact encoding and
// the retarget window along with its damping.
//
// For main packages, a (typically global) var may be assigned one of the
// standard Params for use as the application's "active" network:
//
//	var testnet = flag.Bool("testnet", false, "operate on the test network")
//	flag.Parse()
//
//	// By default (without -testnet), use mainnet.
//	var chainParams = chaincfg.MainNetParams()
//
//	// Modify active network parameters if operating on testnet.
//	if *testnet {
//		chainParams = chaincfg.TestNetParams()
//	}
//
// If an application does not use one of the standard networks, a new Params
// struct may be created which defines the parameters for the non-standard
// network.  Params.Validate reports whether or not such parameters are
// internally consistent.
package chaincfg
