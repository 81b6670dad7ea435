package process

import "strings"

// SplitArgLine splits an argument string into argv entries using the
// Windows command-line rules, so an ArgLine means the same thing on every
// platform. Arguments are separated by unquoted spaces or tabs. Double
// quotes group characters and are removed; "" inside a quoted region is a
// literal quote. Backslashes are literal unless they precede a double
// quote: 2n backslashes then a quote yield n backslashes and a grouping
// quote, 2n+1 yield n backslashes and a literal quote. Single quotes have
// no special meaning. An unterminated quote runs to the end.
func SplitArgLine(s string) []string {
	var args []string
	i := 0
	for {
		for i < len(s) && isArgSpace(s[i]) {
			i++
		}
		if i == len(s) {
			return args
		}
		var cur strings.Builder
		inQuotes := false
		for i < len(s) {
			c := s[i]
			if c == '\\' {
				n := 0
				for i < len(s) && s[i] == '\\' {
					n++
					i++
				}
				if i < len(s) && s[i] == '"' {
					cur.WriteString(strings.Repeat(`\`, n/2))
					if n%2 == 1 {
						cur.WriteByte('"')
						i++
					}
				} else {
					cur.WriteString(strings.Repeat(`\`, n))
				}
				continue
			}
			if c == '"' {
				if inQuotes && i+1 < len(s) && s[i+1] == '"' {
					cur.WriteByte('"')
					i++
				} else {
					inQuotes = !inQuotes
				}
				i++
				continue
			}
			if isArgSpace(c) && !inQuotes {
				break
			}
			cur.WriteByte(c)
			i++
		}
		args = append(args, cur.String())
	}
}

func isArgSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
