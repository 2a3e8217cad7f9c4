package pushoptions

import (
	"regexp"
	"strings"
)

// PushOptionFlag is the long form of git push -o.
const PushOptionFlag = "--push-option="

// shortFlagPattern matches a standalone -o followed by whitespace, either at the
// start of the string or preceded by whitespace.
var shortFlagPattern = regexp.MustCompile(`(^|\s+)-o\s+`)

// Normalize rewrites every "-o <value>" into "--push-option=<value>".
// It makes a single pass; output is not normalized again.
func Normalize(s string) string {
	return shortFlagPattern.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, "-o") {
			return PushOptionFlag
		}
		return " " + PushOptionFlag
	})
}

// Tokens normalizes s and splits it on whitespace. An empty or blank string
// yields no tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Join builds the raw argument string from picked labels, keeping their order.
func Join(labels []string) string {
	return strings.Join(labels, " ")
}
