// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements suggestd, the keyword suggestion service.

suggestd harvests candidate keywords from the article corpus, loads them into
a completion index, and answers type-ahead queries against that index.

# Usage

Populate the completion index from the configured document source:

	suggestd populate

It prints a single summary line on stdout and exits 1 when the bulk write
fails:

	attempted=1234 accepted=1234

Serve suggestions over HTTP:

	suggestd serve
	curl 'localhost:8080/suggest?q=caf'
	["café","cafeteria"]

Serve suggestions over msgpack on stdin/stdout for editors:

	suggestd ipc

Query from the terminal, once or interactively:

	suggestd query caf
	suggestd query -i

# Configuration

Settings live in a TOML file, created with defaults on first use at
~/.config/suggestd/config.toml unless --config points elsewhere:

	[index]
	backend = "local"          # or "elastic"
	suggest_index = "suggest"
	local_path = "~/.config/suggestd/suggest.db"

	[source]
	kind = "article"           # or "finder"
	db_path = "data/articles.db"
	translations_dir = "translations"
	locales = ["en", "fr"]
	page_size = 100

	[extract]
	locale = "fr"
	concurrency = 1

	[server]
	addr = ":8080"
	query_timeout_ms = 2000

The elastic backend stores keywords in an index whose "suggest" field is
mapped as a completion field. The finder source pages through the articles
index of the same cluster.

# Logging

Logs go to stderr so stdout stays clean for the populate summary and the IPC
stream. -d/--debug overrides the configured level.
*/
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	AppName = "suggestd"
	gh      = "https://github.com/bastiangx/suggestd"
)

// Version is overridden at build time.
var Version = "0.1.0-beta"

var (
	configPath string
	debugMode  bool
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of suggestd",
		Run: func(cmd *cobra.Command, args []string) {
			showVersion()
		},
	}
}

// newRootCmd builds the command tree. Flag state lives in the returned
// commands, so every call starts from the defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: "Keyword suggestions for the article corpus",
		Long: `suggestd extracts keywords from articles, loads them into a completion
index and serves prefix suggestions over HTTP, msgpack IPC or the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Toggle debug mode")

	rootCmd.AddCommand(newPopulateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newIPCCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// showVersion prints the styled version banner.
func showVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print(fmt.Sprintf("[ %s ] keyword suggestions", AppName))
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available commands")
	logger.Print("Github Repo", "gh", gh)
}
