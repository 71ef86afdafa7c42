// Copyright 2026 The SnipServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the trigger detection server and CLI application.

SnipServe provides real-time text expansion trigger detection over a trie.
It can operate as a MessagePack IPC server for integration with editors and
browser-extension hosts, or as a CLI application for testing and debugging
trigger sets.

The detector classifies the text in front of the cursor on every keystroke:
no trigger, a trigger still being typed, a complete trigger ready to expand,
or a complete trigger that is also the prefix of a longer one. Hosts act on
the verdicts; the server only detects.

# Usage

Start the server with the default snippet file:

	snipserve

Use a custom snippet file and enable debug mode:

	snipserve -snippets /path/to/snippets.toml -d

Run in CLI mode for interactive testing:

	snipserve -c -show-content

The snippet file is TOML ([[snippet]] tables with trigger and content keys)
or the compact binary export. When -watch is on, the file is monitored and
the trigger set reloads automatically after each save.

# Configuration

Runtime configuration is managed through a TOML file that supports detector
parameters, snippet store settings, and CLI defaults:

	[detector]
	prefix = ";"
	max_trigger_length = 100
	case_sensitive = false

	[snippets]
	file = "snippets.toml"
	watch = true

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Detection
requests are processed synchronously with microsecond timing information
included in responses.

Send a detection request:

	{"id": "req1", "cmd": "detect", "x": "hello ;sig ", "cur": 11}

Receive the verdict:

	{"id": "req1", "st": "complete", "m": true, "tr": ";sig", "c": "Best, ...", "e": 10, "t": 120}

Snippet management requests allow runtime reloads and prefix listings:

	{"id": "snip1", "cmd": "snippets", "action": "get_info"}
	{"id": "snip2", "cmd": "snippets", "action": "list", "prefix": ";g"}

# Command Line Flags

The following flags control application behavior:

	-snippets string
	    Snippet file to load (default from config)
	-config string
	    Custom config file path
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-watch
	    Reload the snippet file automatically when it changes
	-prefix string
	    Trigger prefix character (default from config)
	-show-content
	    CLI mode: print the expansion payload with each complete verdict
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/cli"
	"github.com/snipserve/snipserve/internal/logger"
	"github.com/snipserve/snipserve/pkg/config"
	"github.com/snipserve/snipserve/pkg/detect"
	"github.com/snipserve/snipserve/pkg/server"
	"github.com/snipserve/snipserve/pkg/snippet"
)

const (
	Version = "0.3.0"
	AppName = "snipserve"
	gh      = "https://github.com/snipserve/snipserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configPathFlag := flag.String("config", "", "Custom config file path")
	snippetFile := flag.String("snippets", "", "Snippet file to load (overrides config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	watchFlag := flag.Bool("watch", true, "Reload the snippet file automatically when it changes")
	prefixFlag := flag.String("prefix", "", "Trigger prefix character (overrides config)")
	caseSensitive := flag.Bool("case-sensitive", false, "Match triggers case sensitively")
	showContent := flag.Bool("show-content", false, "CLI mode: print expansion payloads")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configPathFlag)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	detectorCfg := detect.Config{
		Prefix:           appConfig.Detector.PrefixRune(),
		MaxTriggerLength: appConfig.Detector.MaxTriggerLength,
		CaseSensitive:    appConfig.Detector.CaseSensitive,
	}
	if *prefixFlag != "" {
		runes := []rune(*prefixFlag)
		if len(runes) != 1 {
			log.Fatalf("-prefix must be a single character, got %q", *prefixFlag)
		}
		detectorCfg.Prefix = runes[0]
	}
	if *caseSensitive {
		detectorCfg.CaseSensitive = true
	}

	snippetPath := appConfig.Snippets.File
	if *snippetFile != "" {
		snippetPath = *snippetFile
	}

	library := snippet.NewLibrary()
	if snippetPath != "" {
		loaded, err := snippet.Load(snippetPath)
		if err != nil {
			log.Warnf("Failed to load snippet file %s: %v. Starting with an empty set...", snippetPath, err)
		} else {
			library = loaded
		}
	} else {
		log.Warn("No snippet file specified, running with empty trigger set...")
	}

	detector := detect.New(library.Snippets(), detectorCfg)
	if *debugMode {
		detector.SetLogger(logger.New("detect"))
	}
	log.Debugf("Detector init done: %d triggers", detector.SnippetCount())

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(detector,
			*showContent || appConfig.CLI.ShowContent, appConfig.CLI.MaxPreview)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(detector, library, appConfig, configPath)

	if *watchFlag && appConfig.Snippets.Watch && library.Path() != "" {
		watcher, err := snippet.NewWatcher()
		if err != nil {
			log.Warnf("Failed to init snippet watcher: %v", err)
		} else {
			defer watcher.Stop()
			if err := watcher.Watch(library, srv.ReloadSnippets); err != nil {
				log.Warnf("Failed to watch snippet file: %v", err)
			} else {
				log.Debugf("Watching snippet file: %s", library.Path())
			}
		}
	}

	showStartupInfo(library)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// printVersion displays version info with some flair.
func printVersion() {
	vlogger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()

	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	vlogger.SetStyles(styles)

	vlogger.Print("")
	vlogger.Print("[ SnipServe ] Serves really fast trigger detection!")
	vlogger.Print("", "version", Version)
	vlogger.Print("")
	vlogger.Print("use -h or --help to see available options")
	vlogger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(library *snippet.Library) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" SnipServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("snippets: ( %s )", library.Path())
	log.Infof("triggers loaded: %d", library.Count())
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
