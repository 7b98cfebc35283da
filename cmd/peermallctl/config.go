// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrutil/v3"
	"github.com/decred/peermall/util"
	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultHomeDirname    = "peermallctl"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultConfigFilename = "peermallctl.conf"
	defaultLogLevel       = "info"
	defaultHost           = "https://peermall.example.com"
	defaultTimeout        = time.Minute
	defaultRedisPort      = "6379"
	defaultProxyPort      = "9050"

	// Session store types
	storeFile    = "file"
	storeLevelDB = "leveldb"
	storeRedis   = "redis"
)

var (
	defaultHomeDir = dcrutil.AppDataDir(defaultHomeDirname, false)
)

// config represents the peermallctl configuration settings.
type config struct {
	HomeDir     string `long:"appdata" description:"Path to application home directory"`
	Host        string `long:"host" description:"peermall API host"`
	RawJSON     bool   `short:"j" long:"json" description:"Print raw JSON output"`
	ShowVersion bool   `long:"version" description:"Display version information and exit"`
	SkipVerify  bool   `long:"skipverify" description:"Skip verifying the server's certificate chain and host name"`
	Verbose     bool   `short:"v" long:"verbose" description:"Print verbose output"`
	Silent      bool   `long:"silent" description:"Suppress all output"`

	Timeout time.Duration `long:"timeout" description:"HTTP request timeout"`

	SessionStore string `long:"sessionstore" description:"Session storage backend" choice:"file" choice:"leveldb" choice:"redis"`
	RedisAddr    string `long:"redisaddr" description:"Redis address for the redis session store"`
	RedisPass    string `long:"redispass" description:"Redis password"`
	RedisDB      int    `long:"redisdb" description:"Redis database number"`

	Proxy     string `long:"proxy" description:"Connect via SOCKS5 proxy (eg. 127.0.0.1:9050)"`
	ProxyUser string `long:"proxyuser" description:"Username for proxy server"`
	ProxyPass string `long:"proxypass" default-mask:"-" description:"Password for proxy server"`

	LogDir     string `long:"logdir" description:"Directory to log output"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	DataDir string // Application data dir
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace", "debug", "info", "warn", "error", "critical":
		return true
	}
	return false
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly. An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if !validLogLevel(debugLevel) {
			return errors.Errorf("the specified debug level [%v] is "+
				"invalid", debugLevel)
		}
		setLogLevels(debugLevel)
		return nil
	}

	// Split the specified string into subsystem/level pairs while
	// detecting issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return errors.Errorf("the specified debug level contains an "+
				"invalid subsystem/level pair [%v]", logLevelPair)
		}

		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		if _, exists := subsystemLoggers[subsysID]; !exists {
			return errors.Errorf("the specified subsystem [%v] is invalid "+
				"-- supported subsytems %v", subsysID, supportedSubsystems())
		}
		if !validLogLevel(logLevel) {
			return errors.Errorf("the specified debug level [%v] is "+
				"invalid", logLevel)
		}

		setLogLevel(subsysID, logLevel)
	}

	return nil
}

// loadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in peermallctl functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options. Command line options always take
// precedence.
func loadConfig() (*config, error) {
	// Default config
	cfg := config{
		HomeDir:      defaultHomeDir,
		Host:         defaultHost,
		Timeout:      defaultTimeout,
		SessionStore: storeFile,
		RedisAddr:    "localhost:" + defaultRedisPort,
		DebugLevel:   defaultLogLevel,
	}

	// Pre-parse the command line options to see if an alternative config
	// file was specified. The help message flag can be ignored since it
	// will be caught when we parse for the command to execute.
	var opts flags.Options = flags.PassDoubleDash | flags.IgnoreUnknown |
		flags.PrintErrors
	parser := flags.NewParser(&cfg, opts)
	_, err := parser.Parse()
	if err != nil {
		return nil, errors.Errorf("parsing CLI options: %v", err)
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if cfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	// Update the application home directory if specified
	if cfg.HomeDir != defaultHomeDir {
		homeDir, err := filepath.Abs(util.CleanAndExpandPath(cfg.HomeDir))
		if err != nil {
			return nil, errors.Errorf("cleaning path: %v", err)
		}
		cfg.HomeDir = homeDir
	}

	// Load options from config file. Ignore errors caused by the config
	// file not existing.
	cfgFile := filepath.Join(cfg.HomeDir, defaultConfigFilename)
	if util.FileExists(cfgFile) {
		cfgParser := flags.NewParser(&cfg, flags.Default)
		err = flags.NewIniParser(cfgParser).ParseFile(cfgFile)
		if err != nil {
			return nil, errors.Errorf("parsing config file: %v", err)
		}
	}

	// Parse command line options again to ensure they take precedence
	_, err = parser.Parse()
	if err != nil {
		return nil, errors.Errorf("parsing CLI options: %v", err)
	}

	// Setup the data and log directories
	cfg.DataDir = filepath.Join(cfg.HomeDir, defaultDataDirname)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.HomeDir, defaultLogDirname)
	}
	cfg.LogDir = util.CleanAndExpandPath(cfg.LogDir)
	for _, dir := range []string{cfg.HomeDir, cfg.DataDir, cfg.LogDir} {
		err = os.MkdirAll(dir, 0700)
		if err != nil {
			return nil, errors.Errorf("MkdirAll %v: %v", dir, err)
		}
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	if cfg.Silent {
		cfg.DebugLevel = "critical"
	}
	err = parseAndSetDebugLevels(cfg.DebugLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		setLogLevel(gatewaySubsystem, "trace")
	}

	// Validate host
	_, err = util.HostName(cfg.Host)
	if err != nil {
		return nil, err
	}
	cfg.Host = strings.TrimSuffix(cfg.Host, "/")

	// Validate the network addresses
	cfg.RedisAddr = util.NormalizeAddress(cfg.RedisAddr, defaultRedisPort)
	if cfg.Proxy != "" {
		cfg.Proxy = util.NormalizeAddress(cfg.Proxy, defaultProxyPort)
	}

	return &cfg, nil
}
