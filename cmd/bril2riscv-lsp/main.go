// Command bril2riscv-lsp is the language-server entry point: a minimal
// diagnostics-only server for the textual assembly syntax.
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/wizardengineer/bril2riscv/internal/lsp"
)

const lsName = "bril2riscv"

var version = "0.0.1"

func main() {
	commonlog.Configure(1, nil)

	h := lsp.NewHandler()

	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidClose:  h.TextDocumentDidClose,
		TextDocumentDidChange: h.TextDocumentDidChange,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Printf("starting %s %s\n", lsName, version)
	if err := s.RunStdio(); err != nil {
		log.Println("error starting bril2riscv-lsp:", err)
		os.Exit(1)
	}
}
