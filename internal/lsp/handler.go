package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"alumi/grammar"
	"alumi/internal/config"
	"alumi/syntax"
)

// Define the set of supported semantic token types, advertised in the legend
var SemanticTokenTypes = []string{
	"type",
	"function",
	"variable",
	"parameter",
	"keyword",
	"number",
	"operator",
}

// Define the set of supported semantic token modifiers (for extra tagging like declaration, readonly, etc.)
var SemanticTokenModifiers = []string{
	"declaration",
	"definition",
	"readonly",
}

// AlumiHandler implements the LSP server handlers for alumi sources. Open
// documents are kept in memory and reparsed on every change.
type AlumiHandler struct {
	mu      sync.RWMutex
	content map[string]string
	docs    map[string]*grammar.Document

	config config.LSPConfig
	log    commonlog.Logger
}

// NewAlumiHandler creates and returns a new AlumiHandler instance
func NewAlumiHandler(cfg config.LSPConfig) *AlumiHandler {
	return &AlumiHandler{
		content: make(map[string]string),
		docs:    make(map[string]*grammar.Document),
		config:  cfg,
		log:     commonlog.GetLogger("alumi.lsp"),
	}
}

// Handler wires the implemented methods into a glsp handler.
func (h *AlumiHandler) Handler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:                     h.Initialize,
		Initialized:                    h.Initialized,
		Shutdown:                       h.Shutdown,
		SetTrace:                       h.SetTrace,
		TextDocumentDidOpen:            h.TextDocumentDidOpen,
		TextDocumentDidClose:           h.TextDocumentDidClose,
		TextDocumentDidChange:          h.TextDocumentDidChange,
		TextDocumentCompletion:         h.TextDocumentCompletion,
		TextDocumentDocumentSymbol:     h.TextDocumentDocumentSymbol,
		TextDocumentSemanticTokensFull: h.TextDocumentSemanticTokensFull,
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *AlumiHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	h.log.Info("LSP Initialize called")

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: ptrBool(true), // notify on open/close events
			Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
		},
		DocumentSymbolProvider: true,
	}
	if h.config.Completion {
		capabilities.CompletionProvider = &protocol.CompletionOptions{
			ResolveProvider: ptrBool(false),
		}
	}
	if h.config.SemanticTokens {
		capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     SemanticTokenTypes,
				TokenModifiers: SemanticTokenModifiers,
			},
			Full: ptrBool(true), // support full-document semantic token requests
		}
	}

	return &protocol.InitializeResult{Capabilities: capabilities}, nil
}

// Initialized is called after the client receives the server's capabilities and completes initialization
func (h *AlumiHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	h.log.Info("alumi LSP initialized")
	return nil
}

// Shutdown handles the LSP shutdown request
func (h *AlumiHandler) Shutdown(ctx *glsp.Context) error {
	h.log.Info("alumi LSP shutdown")
	return nil
}

func (h *AlumiHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	h.log.Debugf("trace set to %s", params.Value)
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor
func (h *AlumiHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	h.log.Infof("opened file: %s", params.TextDocument.URI)
	return h.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange handles file change notifications from the editor.
// The server asks for full sync, so the last whole-text change wins.
func (h *AlumiHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	h.log.Debugf("changed file: %s", params.TextDocument.URI)

	text, ok := "", false
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text, ok = c.Text, true
		case *protocol.TextDocumentContentChangeEventWhole:
			text, ok = c.Text, true
		case protocol.TextDocumentContentChangeEvent:
			text, ok = c.Text, c.Range == nil
		case *protocol.TextDocumentContentChangeEvent:
			text, ok = c.Text, c.Range == nil
		}
	}
	if !ok {
		return fmt.Errorf("no full-text change for %s", params.TextDocument.URI)
	}
	return h.update(ctx, params.TextDocument.URI, text)
}

// TextDocumentDidClose handles file close notifications from the editor
func (h *AlumiHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.log.Infof("closed file: %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	delete(h.content, path)
	delete(h.docs, path)
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

// TextDocumentCompletion offers the keywords and the top-level definitions
// of the document.
func (h *AlumiHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	items := []protocol.CompletionItem{}
	for _, kw := range grammar.Keywords() {
		items = append(items, protocol.CompletionItem{
			Label: kw,
			Kind:  ptrCompletionKind(protocol.CompletionItemKindKeyword),
		})
	}

	content, ok := h.source(params.TextDocument.URI)
	if ok {
		outline, err := grammar.ParseOutline(params.TextDocument.URI, content)
		if err != nil {
			h.log.Debugf("no outline for %s: %s", params.TextDocument.URI, err)
		} else {
			for _, def := range outline.Definitions() {
				kind := protocol.CompletionItemKindVariable
				if def.Function != nil {
					kind = protocol.CompletionItemKindFunction
				}
				items = append(items, protocol.CompletionItem{
					Label:  def.Name.Value,
					Kind:   ptrCompletionKind(kind),
					Detail: ptrString(def.String()),
				})
			}
		}
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// TextDocumentDocumentSymbol lists the top-level assignments.
func (h *AlumiHandler) TextDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc, err := h.document(params.TextDocument.URI)
	if err != nil || doc == nil {
		return []protocol.DocumentSymbol{}, err
	}
	return collectSymbols(doc.Tree), nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *AlumiHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc, err := h.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return &protocol.SemanticTokens{
		Data: encodeSemanticTokens(collectSemanticTokens(doc)),
	}, nil
}

// update reparses a document and publishes its diagnostics.
func (h *AlumiHandler) update(ctx *glsp.Context, rawURI protocol.DocumentUri, text string) error {
	path, err := uriToPath(rawURI)
	if err != nil {
		return err
	}

	doc, err := grammar.Parse(text)
	var diagnostics []protocol.Diagnostic
	if err != nil {
		diagnostics = ConvertParseError(err, []rune(text))
	} else {
		diagnostics = ConvertCompilerErrors(doc.Diagnostics())
	}

	h.mu.Lock()
	h.content[path] = text
	h.docs[path] = doc
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, rawURI, diagnostics)
	return nil
}

func (h *AlumiHandler) source(rawURI protocol.DocumentUri) (string, bool) {
	path, err := uriToPath(rawURI)
	if err != nil {
		return "", false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	content, ok := h.content[path]
	return content, ok
}

// document returns the last parse of an open document. A document whose
// source does not lex has none.
func (h *AlumiHandler) document(rawURI protocol.DocumentUri) (*grammar.Document, error) {
	path, err := uriToPath(rawURI)
	if err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	doc, ok := h.docs[path]
	if !ok {
		return nil, fmt.Errorf("document %s is not open", rawURI)
	}
	return doc, nil
}

func collectSymbols(t *syntax.Tree) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	syntax.Walk(t, func(w *syntax.Walker, index int, root syntax.Node) {
		w.WalkChildren(func(w *syntax.Walker, index int, stmt syntax.Node) {
			w.WalkChildren(func(w *syntax.Walker, index int, n syntax.Node) {
				if n.Kind != syntax.Assignment {
					return
				}
				direct := t.DirectTokens(index)
				if len(direct) == 0 {
					return
				}
				name := t.Tokens[direct[0]]
				kind := protocol.SymbolKindVariable
				if assignsFunction(t, index, n) {
					kind = protocol.SymbolKindFunction
				}
				symbols = append(symbols, protocol.DocumentSymbol{
					Name:           name.Text(t.Source),
					Kind:           kind,
					Range:          nodeRange(t, n),
					SelectionRange: tokenRange(name.Pos.Line, name.Pos.Column, name.Length),
				})
			})
		})
	})
	return symbols
}

func tokenRange(line, column, length int) protocol.Range {
	start := protocol.Position{Line: uint32(line - 1), Character: uint32(column - 1)}
	end := start
	end.Character += uint32(length)
	return protocol.Range{Start: start, End: end}
}

func nodeRange(t *syntax.Tree, n syntax.Node) protocol.Range {
	if n.Start >= n.End || n.Start >= len(t.Tokens) {
		return protocol.Range{}
	}
	first, last := t.Tokens[n.Start], t.Tokens[min(n.End, len(t.Tokens))-1]
	return protocol.Range{
		Start: protocol.Position{Line: uint32(first.Pos.Line - 1), Character: uint32(first.Pos.Column - 1)},
		End:   protocol.Position{Line: uint32(last.Pos.Line - 1), Character: uint32(last.Pos.Column - 1 + last.Length)},
	}
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...) → C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	// Normalize to platform-specific separators
	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

func ptrCompletionKind(k protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &k
}
