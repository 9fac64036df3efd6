// Package command parses the inline command syntax at the head of a message
// body: /token1/token2 residual text.
package command

import (
	"regexp"
	"strings"
)

// A body carries commands only when it starts with one or more /word groups,
// optionally followed by whitespace and the residual text. (?s) lets the
// residual span newlines.
var commandPattern = regexp.MustCompile(`(?s)^((?:/\w+)+)(?:\s+(.*))?$`)

// Parse splits a message body into its command tokens and residual text.
// Tokens keep their left-to-right order, duplicates included. A body that
// does not match the slash-prefixed syntax comes back whole as residual text
// with no commands; that includes malformed tokens such as "/a-b".
func Parse(body string) (commands []string, text string) {
	if body == "" {
		return nil, ""
	}

	m := commandPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, body
	}

	for _, tok := range strings.Split(m[1], "/") {
		if tok != "" {
			commands = append(commands, tok)
		}
	}

	return commands, strings.TrimSpace(m[2])
}
