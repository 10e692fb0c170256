// Package lsp implements a minimal textDocument/didOpen + didChange
// diagnostics server for the textual assembly syntax (internal/asmsyntax).
// It offers diagnostics only: no completion, hover, or semantic tokens,
// since those require a type system this compiler does not have.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/wizardengineer/bril2riscv/internal/asmsyntax"
	"github.com/wizardengineer/bril2riscv/internal/flat"
	"github.com/wizardengineer/bril2riscv/internal/validate"
)

// Handler implements the LSP server handlers for the textual assembly
// syntax.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
	progs   map[string]*flat.Program
}

// NewHandler creates a new Handler instance.
func NewHandler() *Handler {
	return &Handler{
		content: make(map[string]string),
		progs:   make(map[string]*flat.Program),
	}
}

// Initialize responds to the LSP client's initialize request and
// advertises the server's capabilities.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("bril2riscv-lsp initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

// Initialized is called after the client receives the server's
// capabilities and completes initialization.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("bril2riscv-lsp initialized")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("bril2riscv-lsp shutdown")
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.refresh(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange handles file change notifications from the
// editor; the server is configured for full-document sync, so the last
// content change carries the entire new text.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	last := params.ContentChanges[len(params.ContentChanges)-1]
	change, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("unexpected incremental content change for %s", params.TextDocument.URI)
	}
	return h.refresh(ctx, params.TextDocument.URI, change.Text)
}

// TextDocumentDidClose handles file close notifications from the editor.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	delete(h.content, path)
	delete(h.progs, path)
	h.mu.Unlock()
	return nil
}

func (h *Handler) refresh(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	diagnostics := diagnose(path, text)
	if len(diagnostics) == 0 {
		program, lowerErr := asmsyntax.ParseString(path, text)
		if lowerErr == nil {
			if prog, lowErr := asmsyntax.Lower(program); lowErr == nil {
				h.mu.Lock()
				h.content[path] = text
				h.progs[path] = prog
				h.mu.Unlock()
			}
		}
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

func diagnose(path, text string) []protocol.Diagnostic {
	program, err := asmsyntax.ParseString(path, text)
	if err != nil {
		return ConvertParseError(err)
	}
	prog, err := asmsyntax.Lower(program)
	if err != nil {
		return ConvertCompilerError(err)
	}
	if err := validate.Check(prog); err != nil {
		return ConvertCompilerError(err)
	}
	return nil
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
