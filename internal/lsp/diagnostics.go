package lsp

import (
	stderrors "errors"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"alumi/internal/errors"
	"alumi/lexer"
)

const diagnosticSource = "alumi"

// ConvertCompilerErrors transforms diagnostics into LSP diagnostics for IDE display.
func ConvertCompilerErrors(errs []errors.CompilerError) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	for _, e := range errs {
		length := max(e.Length, 1)
		diagnostic := protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(max(e.Position.Line-1, 0)),   // Convert to 0-based indexing
					Character: uint32(max(e.Position.Column-1, 0)), // Convert to 0-based indexing
				},
				End: protocol.Position{
					Line:      uint32(max(e.Position.Line-1, 0)),
					Character: uint32(max(e.Position.Column-1, 0) + length),
				},
			},
			Severity: ptrSeverity(severity(e.Level)),
			Code:     &protocol.IntegerOrString{Value: e.Code},
			Source:   ptrString(diagnosticSource),
			Message:  e.Message,
		}
		diagnostics = append(diagnostics, diagnostic)
	}

	return diagnostics
}

// ConvertParseError turns a lexer failure into a single diagnostic. Other
// errors produce none.
func ConvertParseError(err error, source []rune) []protocol.Diagnostic {
	var failure *lexer.Failure
	if !stderrors.As(err, &failure) {
		return []protocol.Diagnostic{}
	}
	return ConvertCompilerErrors([]errors.CompilerError{errors.FromLexFailure(failure, source)})
}

func severity(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note:
		return protocol.DiagnosticSeverityInformation
	case errors.Help:
		return protocol.DiagnosticSeverityHint
	}
	return protocol.DiagnosticSeverityError
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
