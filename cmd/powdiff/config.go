// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/powdiff/chaincfg"
	"github.com/decred/slog"
)

const (
	defaultLogLevel    = "info"
	defaultLogDirname  = "logs"
	defaultLogFilename = "powdiff.log"
	defaultNet         = "mainnet"
)

var (
	defaultHomeDir = appDataDir("powdiff")
	defaultLogDir  = filepath.Join(defaultHomeDir, defaultLogDirname)
)

// appDataDir returns the default application data directory for the passed
// application name based on the home directory of the current user.
func appDataDir(appName string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "."
	}
	return filepath.Join(homeDir, "."+strings.ToLower(appName))
}

// config defines the global configuration options.
type config struct {
	Net           string `long:"net" description:"Network to use" choice:"mainnet" choice:"testnet" choice:"regnet"`
	ParamsFile    string `long:"paramsfile" description:"YAML file with overrides for the parameters of the selected network"`
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	// params is the network parameters selected by the options.  It is set
	// by load.
	params *chaincfg.Params
}

// errShowSubsystems is returned by parseAndSetDebugLevels when the caller
// requested the list of available subsystems.
var errShowSubsystems = errors.New("show subsystems")

// newConfig returns a config with default values.
func newConfig() *config {
	return &config{
		Net:        defaultNet,
		LogDir:     defaultLogDir,
		DebugLevel: defaultLogLevel,
	}
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	_, ok := slog.LevelFromString(logLevel)
	return ok
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimiters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if debugLevel == "show" {
			return errShowSubsystems
		}

		// Validate debug log level.
		if !validLogLevel(debugLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		setLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "the specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return fmt.Errorf(str, logLevelPair)
		}

		// Extract the specified subsystem and log level.
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		// Validate subsystem.
		if _, exists := subsystemLoggers[subsysID]; !exists {
			str := "the specified subsystem [%v] is invalid -- " +
				"supported subsystems %v"
			return fmt.Errorf(str, subsysID, supportedSubsystems())
		}

		// Validate log level.
		if !validLogLevel(logLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		setLogLevel(subsysID, logLevel)
	}

	return nil
}

// load finalizes the parsed global options.  It initializes logging,
// selects the network parameters and applies the parameters file when one is
// provided.
func (cfg *config) load() error {
	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, cfg.Net, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return err
		}
	}

	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		if errors.Is(err, errShowSubsystems) {
			return fmt.Errorf("supported subsystems %v",
				supportedSubsystems())
		}
		return err
	}

	params, err := chaincfg.ParamsByName(cfg.Net)
	if err != nil {
		return err
	}
	if cfg.ParamsFile != "" {
		params, err = loadParamsFile(cfg.ParamsFile, params)
		if err != nil {
			return err
		}
		pdifLog.Infof("Loaded parameters for network %q from %s",
			params.Name, cfg.ParamsFile)
	}
	cfg.params = params
	return nil
}
