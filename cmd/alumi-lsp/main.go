// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"os"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp/server"

	"alumi/internal/config"
	"alumi/internal/lsp"
)

const lsName = "alumi" // Name identifier for the language server

var version = "0.1.0" // Server version

func main() {
	cfgFile := flag.String("config", "", "Configuration file (default .alumi.yaml)")
	verbosity := flag.Int("verbosity", 1, "Log verbosity, 0 is quiet")
	flag.Parse()

	// Configure logging (nil = stderr)
	commonlog.Configure(*verbosity, nil)
	log := commonlog.GetLogger("alumi.lsp")

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Errorf("Error loading configuration: %s", err)
		os.Exit(1)
	}

	handler := lsp.NewAlumiHandler(cfg.LSP).Handler()

	// Create a new GLSP (Go Language Server Protocol) server instance
	// Parameters:
	// - handler: the protocol handler struct
	// - name: the language server name (shown to clients)
	// - debug: whether to enable internal GLSP debug logs
	s := server.NewServer(handler, lsName, false)

	log.Infof("Starting alumi LSP server %s...", version)

	// Start the server over standard input/output (used by most editors for LSP)
	if err := s.RunStdio(); err != nil {
		log.Errorf("Error starting alumi LSP server: %s", err)
		os.Exit(1)
	}
}
