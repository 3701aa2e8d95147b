// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/dcrd/wire"
	"github.com/decred/powdiff/blockchain"
	"github.com/decred/powdiff/chaincfg"
	"github.com/decred/powdiff/internal/progresslog"
	"github.com/decred/powdiff/workdb"
	"github.com/pierrec/lz4"
)

const (
	powHashBlake256 = "blake256"
	powHashBlake3   = "blake3"
)

// replayCmd connects serialized headers into a chain persisted in a work
// database.
type replayCmd struct {
	cfg *config
	out io.Writer

	DataDir    string `long:"datadir" description:"Directory to store the work database (default: ~/.powdiff/data/<net>)"`
	CacheSize  uint32 `long:"cachesize" description:"Number of block nodes kept in memory"`
	PowHash    string `long:"powhash" description:"Proof-of-work hash function" choice:"blake256" choice:"blake3"`
	PromListen string `long:"promlisten" description:"Address to serve Prometheus metrics on while replaying (e.g. localhost:9101)"`
	Args       struct {
		File string `positional-arg-name:"headers-file"`
	} `positional-args:"yes" required:"yes"`
}

// powHasher returns the proof-of-work hash function with the passed name.
func powHasher(name string) (blockchain.PowHasher, error) {
	switch name {
	case "", powHashBlake256:
		return (*wire.BlockHeader).PowHashV1, nil
	case powHashBlake3:
		return (*wire.BlockHeader).PowHashV2, nil
	}
	return nil, fmt.Errorf("unknown proof-of-work hash function %q", name)
}

// openHeaders opens the passed file of headers.  Files with an .lz4 extension
// are decompressed while they are read.
func openHeaders(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".lz4") {
		return lz4.NewReader(f), f, nil
	}
	return f, f, nil
}

// headerReader reads hex-encoded serialized block headers, one per line.
// Blank lines and lines starting with # are skipped.
type headerReader struct {
	scanner *bufio.Scanner
	line    int
}

// newHeaderReader returns a header reader for the passed reader.
func newHeaderReader(r io.Reader) *headerReader {
	return &headerReader{scanner: bufio.NewScanner(r)}
}

// Next returns the next header.  It returns io.EOF when there are no more
// headers.
func (r *headerReader) Next() (*wire.BlockHeader, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		serialized, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid hex: %w", r.line, err)
		}
		var header wire.BlockHeader
		if err := header.FromBytes(serialized); err != nil {
			return nil, fmt.Errorf("line %d: invalid header: %w", r.line, err)
		}
		return &header, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// replayStats summarizes a replay.
type replayStats struct {
	connected uint64
	skipped   uint64
}

// replayHeaders connects the headers of the passed reader to the chain until
// they are exhausted or the context is canceled.  Headers at or below the best
// height of the chain are assumed to have been connected by a previous replay
// and are skipped.
func replayHeaders(ctx context.Context, params *chaincfg.Params, chain *blockchain.BlockChain, r *headerReader, progress *progresslog.Logger, metrics *replayMetrics) (*replayStats, error) {
	var stats replayStats
	prevTip := chain.Tip()
	for !shutdownRequested(ctx) {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &stats, err
		}
		if prevTip != nil && header.Height <= prevTip.Height {
			stats.skipped++
			continue
		}

		node, err := chain.ConnectHeader(header)
		if err != nil {
			if metrics != nil {
				metrics.rejected.Inc()
			}
			return &stats, fmt.Errorf("line %d: %w", r.line, err)
		}
		stats.connected++

		retarget := prevTip != nil && prevTip.Bits != node.Bits
		progress.LogProgress(header, retarget, false)
		if metrics != nil {
			scheme := blockchain.SchemeForHeight(params, node.Height)
			metrics.observe(node, scheme, retarget)
		}
		prevTip = node
	}
	return &stats, nil
}

// Execute replays the headers file.
func (c *replayCmd) Execute(args []string) error {
	ctx := shutdownListener()
	params := c.cfg.params

	hasher, err := powHasher(c.PowHash)
	if err != nil {
		return err
	}

	dataDir := c.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(defaultHomeDir, "data", params.Name)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return err
	}
	db, err := workdb.Open(filepath.Join(dataDir, "workdb"), params.Net,
		c.CacheSize)
	if err != nil {
		return err
	}
	defer db.Close()

	chain, err := blockchain.New(&blockchain.Config{
		ChainParams: params,
		Store:       db,
		PowHasher:   hasher,
	})
	if err != nil {
		return err
	}

	var metrics *replayMetrics
	if c.PromListen != "" {
		listener, err := net.Listen("tcp", c.PromListen)
		if err != nil {
			return err
		}
		metrics = newReplayMetrics()
		metricsCtx, cancel := context.WithCancel(ctx)
		done := serveMetrics(metricsCtx, listener, metrics.registry)
		defer func() {
			cancel()
			if err := <-done; err != nil {
				pdifLog.Errorf("Metrics server: %v", err)
			}
		}()
	}

	reader, closer, err := openHeaders(c.Args.File)
	if err != nil {
		return err
	}
	defer closer.Close()

	progress := progresslog.New("Replayed", pdifLog)
	stats, err := replayHeaders(ctx, params, chain, newHeaderReader(reader),
		progress, metrics)
	if err != nil {
		return err
	}

	tip := chain.Tip()
	if tip == nil {
		fmt.Fprintln(c.out, "no headers connected")
		return nil
	}
	scheme := blockchain.SchemeForHeight(params, tip.Height)
	fmt.Fprintf(c.out, "connected %d headers (%d skipped)\n", stats.connected,
		stats.skipped)
	fmt.Fprintf(c.out, "height:     %d\n", tip.Height)
	fmt.Fprintf(c.out, "difficulty: %s %s\n", scheme.Name(),
		scheme.Format(tip.Bits))
	fmt.Fprintf(c.out, "chain work: %v\n", tip.ChainWork)
	bits, _, err := chain.NextRequiredDifficulty()
	if err != nil {
		return err
	}
	nextScheme := blockchain.SchemeForHeight(params, tip.Height+1)
	fmt.Fprintf(c.out, "next:       %s %s\n", nextScheme.Name(),
		nextScheme.Format(bits))
	return nil
}
