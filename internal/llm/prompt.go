package llm

import "strings"

// SystemInstruction is sent ahead of every conversation. The context hint, if
// any, names what the user is currently studying.
func SystemInstruction(contextHint string) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI Study Assistant.")
	if hint := strings.TrimSpace(contextHint); hint != "" {
		b.WriteString(" The user is currently studying a document with the following title: ")
		b.WriteString(hint)
		b.WriteString(".")
	}
	b.WriteString(" Keep your answers concise, encouraging, and educational.")
	return b.String()
}
