// Command matlab-language-server runs the indexing core of the MATLAB
// language server over stdio. The engine connection is optional at startup;
// indexing stays dormant until the engine is reachable.
package main

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserv "github.com/tliron/glsp/server"
	"github.com/urfave/cli/v2"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/engine"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/index"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/indexing"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/lsphandler"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/resolver"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/search"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "matlab-language-server",
		Usage:   "Language server for MATLAB, backed by a MATLAB engine process",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a settings file (overrides the default lookup)",
			},
			&cli.StringFlag{
				Name:  "engine-addr",
				Usage: "address of a running engine endpoint (host:port); omit to start disconnected",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "write debug logs to a file under the temp dir",
			},
			&cli.IntFlag{
				Name:  "verbosity",
				Usage: "transport log verbosity",
				Value: 0,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		if logPath, err := debug.InitLogFile(); err == nil {
			defer debug.CloseLogFile()
			debug.Log("MAIN", "debug log: %s", logPath)
		}
	}

	// Stdio carries the protocol; the transport log must go to stderr.
	commonlog.Configure(c.Int("verbosity"), nil)

	settings, err := config.Load("")
	if err != nil {
		return err
	}
	if path := c.String("config"); path != "" {
		if err := config.LoadFile(&settings, path); err != nil {
			return err
		}
	}
	manager := config.NewManager(settings)

	client := engine.NewClient(nil)
	if addr := c.String("engine-addr"); addr != "" {
		if ch, err := engine.Dial(addr); err == nil {
			client.SetChannel(ch)
		} else {
			debug.LogEngine("engine dial %s failed, starting disconnected: %v", addr, err)
		}
	}

	files := index.NewFileIndex()
	ix := indexing.NewIndexer(client, engine.NewBulkParser(client), files, manager)
	pathResolver := resolver.NewPathResolver(client)
	searchService := search.NewService(files, pathResolver, ix)

	watcher, err := indexing.NewFileWatcher(ix, manager)
	if err != nil {
		debug.LogIndexing("file watcher unavailable: %v", err)
		watcher = nil
	}

	h := lsphandler.New(manager, ix, searchService, watcher)

	protocolHandler := protocol.Handler{
		Initialize:  h.Initialize,
		Initialized: h.Initialized,
		Shutdown:    h.Shutdown,
		SetTrace: func(*glsp.Context, *protocol.SetTraceParams) error {
			return nil
		},
		TextDocumentDidOpen:                h.TextDocumentDidOpen,
		TextDocumentDidChange:              h.TextDocumentDidChange,
		TextDocumentDidClose:               h.TextDocumentDidClose,
		TextDocumentDefinition:             h.TextDocumentDefinition,
		TextDocumentReferences:             h.TextDocumentReferences,
		TextDocumentDocumentHighlight:      h.TextDocumentDocumentHighlight,
		TextDocumentDocumentSymbol:         h.TextDocumentDocumentSymbol,
		TextDocumentRename:                 h.TextDocumentRename,
		WorkspaceSymbol:                    h.WorkspaceSymbol,
		WorkspaceDidChangeWorkspaceFolders: h.WorkspaceDidChangeWorkspaceFolders,
		WorkspaceDidChangeConfiguration:    h.WorkspaceDidChangeConfiguration,
	}

	server := glspserv.NewServer(&protocolHandler, lsphandler.ServerName, c.Bool("debug"))
	return server.RunStdio()
}
