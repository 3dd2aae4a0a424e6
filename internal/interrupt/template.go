package interrupt

import "strings"

// Expansion carries the values a template's placeholders resolve to:
// {} -> identity column of the cursor's item, {1}..{N} -> per-column
// text, {+} -> multi-selection joined by the output separator,
// {q} -> current query. Expansion is literal text substitution after
// shell-escaping each substituted value into a single shell word.
type Expansion struct {
	Identity  string
	Columns   []string // 1-indexed in templates; Columns[0] is {1}
	Selection string   // already joined by the output separator
	Query     string
}

// Expand performs literal placeholder substitution over tmpl,
// shell-escaping each substituted value so it parses as a single word
// regardless of its contents. Use this for execute/become/reload
// templates, which run through a shell.
func Expand(tmpl string, e Expansion) string {
	return expand(tmpl, e, true)
}

// ExpandRaw substitutes placeholders without shell-quoting, for the
// output_template option and print templates: their result is the
// program's own stdout, not a shell command line.
func ExpandRaw(tmpl string, e Expansion) string {
	return expand(tmpl, e, false)
}

func expand(tmpl string, e Expansion, quote bool) string {
	var b strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] != '{' {
			b.WriteByte(tmpl[i])
			i++
			continue
		}
		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		placeholder := tmpl[i+1 : i+end]
		b.WriteString(resolve(placeholder, e, quote))
		i += end + 1
	}
	return b.String()
}

func resolve(placeholder string, e Expansion, quote bool) string {
	wrap := func(v string) string {
		if quote {
			return shellQuote(v)
		}
		return v
	}
	switch placeholder {
	case "":
		return wrap(e.Identity)
	case "+":
		return wrap(e.Selection)
	case "q":
		return wrap(e.Query)
	default:
		n, ok := parseColumnIndex(placeholder)
		if !ok || n < 1 || n > len(e.Columns) {
			return "{" + placeholder + "}"
		}
		return wrap(e.Columns[n-1])
	}
}

func parseColumnIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// shellQuote wraps v in single quotes, POSIX-escaping any embedded
// single quote, so substituted values are always treated as one
// argument regardless of whitespace or shell metacharacters.
func shellQuote(v string) string {
	if v == "" {
		return "''"
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range v {
		if r == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
