package command

import "strings"

// Tokenize splits an input line into whitespace-delimited tokens, keeping
// quoted spans ("..." or '...') together. Quotes are stripped from the token;
// an unterminated quote runs to end of line.
func Tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	inToken := false
	var quote rune

	flush := func() {
		if inToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return tokens
}
