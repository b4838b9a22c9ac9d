package asm

import (
	"regexp"
	"strings"

	"github.com/gogpu/shbin/isa"
)

var (
	labelRe = regexp.MustCompile(`^([A-Za-z_0-9]+)\s*:`)
	nameRe  = regexp.MustCompile(`^[a-z_0-9]+$`)
)

// lexLine splits one source line into its label and statement parts.
// Everything after the first ';' is a comment.
func lexLine(number int, text string) (Line, error) {
	l := Line{Number: number, Text: text}

	body := text
	if i := strings.IndexByte(body, ';'); i >= 0 {
		body = body[:i]
	}
	pos := skipSpace(body, 0)

	if m := labelRe.FindStringSubmatchIndex(body[pos:]); m != nil {
		l.Label = strings.ToLower(body[pos+m[2] : pos+m[3]])
		l.LabelCol = pos + 1
		pos = skipSpace(body, pos+m[1])
	}

	rest := strings.TrimRight(body[pos:], " \t\r\n")
	if rest == "" {
		return l, nil
	}

	end := pos
	for end < len(body) && !isSpace(body[end]) {
		end++
	}
	l.NameCol = pos + 1
	l.ArgsCol = end + 1
	l.Args = strings.TrimRight(body[end:], " \t\r\n")

	if body[pos] == '.' {
		l.Kind = StmtDirective
		l.Name = strings.ToLower(body[pos+1 : end])
		if l.Name == "" {
			return l, errorf(isa.KindGrammar, "missing directive name")
		}
		return l, nil
	}

	l.Kind = StmtInstruction
	l.Name = strings.ToLower(body[pos:end])
	if strings.ContainsRune(l.Name, ':') {
		return l, errorf(isa.KindGrammar, "malformed label %q", strings.TrimSuffix(body[pos:end], ":"))
	}
	return l, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// validName reports whether s is usable as a label name.
func validName(s string) bool {
	return nameRe.MatchString(s)
}
