// Package csv implements the line-oriented CSV dialect used by the sales
// stream, the reference files and the result output.
//
// The grammar:
//
//   - fields are separated by commas;
//   - a field may be enclosed in double quotes, inside which commas are data
//     and a doubled quote ("") stands for one literal quote;
//   - every parsed field is trimmed of surrounding whitespace;
//   - one physical line is one record. Fields cannot hold line breaks, so
//     EscapeField turns any CR or LF in a value into a space.
package csv

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote is returned by ParseLine when a quoted field is still
// open at the end of the line.
var ErrUnterminatedQuote = errors.New("unterminated quoted field")

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// ParseLine splits one line into trimmed fields. An empty line yields a single
// empty field.
func ParseLine(line string) ([]string, error) {
	fields := make([]string, 0, 8)
	var sb strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				sb.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	if inQuotes {
		return nil, ErrUnterminatedQuote
	}
	return append(fields, strings.TrimSpace(sb.String())), nil
}

// EscapeField quotes s when it contains a comma or a double quote, doubling
// any inner quotes. Each "\r\n", "\r" or "\n" inside s becomes one space so the
// record stays on one line. Other values are returned unchanged.
func EscapeField(s string) string {
	if strings.ContainsAny(s, "\r\n") {
		s = lineBreaks.Replace(s)
	}
	if !strings.ContainsAny(s, `,"`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatLine joins fields into one line (without terminator), escaping each.
func FormatLine(fields []string) string {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(EscapeField(f))
	}
	return sb.String()
}
