package grammar

import (
	"fmt"
	"strings"
)

func (o *Outline) String() string {
	var b strings.Builder
	for _, d := range o.Definitions() {
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (d *Definition) String() string {
	if d.Function == nil {
		return fmt.Sprintf("%s := %s", d.Name.Value, strings.Join(d.Value, " "))
	}
	return fmt.Sprintf("%s := %s", d.Name.Value, d.Function.String())
}

func (h *Header) String() string {
	params := make([]string, len(h.Parameters))
	for i, p := range h.Parameters {
		params[i] = p.String()
	}
	s := fmt.Sprintf("fn(%s)", strings.Join(params, ", "))
	if h.Returns != "" {
		s += " -> " + h.Returns
	}
	return s
}

func (p *Parameter) String() string {
	return p.Name + " " + p.Type
}

// Kind describes a definition for tooling.
func (d *Definition) Kind() string {
	if d.Function != nil {
		return "function"
	}
	return "value"
}
