package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Diagnostic renders err with a pointer into the source file:
//
//	error: dbport: expected port number, found string "abc" at line 5, column 15
//	 --> config.php:5:15
//	  |
//	5 |   'dbport' => 'abc',
//	  |               ^
//
// Errors without a position are rendered as a single line.
func Diagnostic(src []byte, filename string, err error) string {
	head := "error: " + err.Error()
	var xerr *Error
	if !errors.As(err, &xerr) || !xerr.Pos.IsValid() {
		return head
	}
	lines := bytes.Split(src, []byte("\n"))
	if xerr.Pos.Line > len(lines) {
		return head
	}
	line := strings.TrimRight(string(lines[xerr.Pos.Line-1]), "\r")
	number := fmt.Sprintf("%d", xerr.Pos.Line)
	gutter := strings.Repeat(" ", len(number))

	// keep tabs so the caret lines up under the column
	var pad strings.Builder
	for k, r := range []rune(line) {
		if k >= xerr.Pos.Column-1 {
			break
		}
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteRune(' ')
		}
	}

	var sb strings.Builder
	sb.WriteString(head + "\n")
	sb.WriteString(fmt.Sprintf("%s--> %s:%d:%d\n", gutter, filename, xerr.Pos.Line, xerr.Pos.Column))
	sb.WriteString(gutter + " |\n")
	sb.WriteString(fmt.Sprintf("%s | %s\n", number, line))
	sb.WriteString(fmt.Sprintf("%s | %s^", gutter, pad.String()))
	return sb.String()
}
