package errors

// Error codes for the alumi toolchain. They appear in diagnostics, in the
// Error nodes of a syntax tree and in the LSP.
//
// Error code ranges:
// E0100-E0109: Lexer errors
// E0110-E0149: Parser errors
// E0900-E0999: Tooling errors

const (
	// E0101: No pattern matches at this position
	ErrorUnexpectedCodepoint = "E0101"

	// E0102: A line mixes tabs and spaces with the rest of the file
	ErrorMismatchedIndentChars = "E0102"

	// E0103: A dedent returns to a level that was never opened
	ErrorMismatchedIndentLevel = "E0103"

	// E0110: A token that does not fit the production
	ErrorUnexpectedToken = "E0110"

	// E0111: An opening bracket without its closing bracket
	ErrorUnbalancedPair = "E0111"

	// E0112: A ':' that is not followed by an indented block
	ErrorExpectedBlock = "E0112"

	// E0113: A statement that could not be completed
	ErrorIncompleteStatement = "E0113"

	// E0114: A line indented deeper than its block
	ErrorUnexpectedIndent = "E0114"

	// E0901: Source file could not be read
	ErrorUnreadableSource = "E0901"
)

var descriptions = map[string]string{
	ErrorUnexpectedCodepoint:   "unexpected character",
	ErrorMismatchedIndentChars: "inconsistent use of tabs and spaces in indentation",
	ErrorMismatchedIndentLevel: "dedent does not match any outer indentation level",
	ErrorUnexpectedToken:       "unexpected token",
	ErrorUnbalancedPair:        "unbalanced parentheses",
	ErrorExpectedBlock:         "expected an indented block",
	ErrorIncompleteStatement:   "incomplete statement",
	ErrorUnexpectedIndent:      "unexpected indentation",
	ErrorUnreadableSource:      "cannot read source",
}

// Describe returns the short message for code.
func Describe(code string) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "syntax error"
}
