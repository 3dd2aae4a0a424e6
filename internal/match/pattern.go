// Package match implements Pattern parsing and the Matcher Worker: the
// background task that keeps a MatchList approximately synchronized
// with (CandidateStore, Pattern).
package match

import "strings"

// Atom is one whitespace-separated fragment of a Pattern, with
// optional sigils governing exact/anchored/negated matching.
type Atom struct {
	Text        string
	Exact       bool // leading '
	AnchorStart bool // leading ^
	AnchorEnd   bool // trailing $
	Negate      bool // leading !
}

// Pattern is the parsed form of the current query.
type Pattern struct {
	Raw   string
	Atoms []Atom
}

// ParsePattern splits query on whitespace into atoms and strips each
// atom's sigils. Sigil order is: '!' (negate) first, then leading "'"
// (exact) or leading '^' (anchor-start), then a trailing '$'
// (anchor-end); '^' and exact are mutually exclusive in practice since
// only one leading sigil is consumed, matching how fzf-family pickers
// read query sigils.
func ParsePattern(query string) Pattern {
	fields := strings.Fields(query)
	atoms := make([]Atom, 0, len(fields))
	for _, f := range fields {
		atoms = append(atoms, parseAtom(f))
	}
	return Pattern{Raw: query, Atoms: atoms}
}

func parseAtom(word string) Atom {
	var a Atom

	if strings.HasPrefix(word, "!") {
		a.Negate = true
		word = word[1:]
	}

	switch {
	case strings.HasPrefix(word, "'"):
		a.Exact = true
		word = word[1:]
	case strings.HasPrefix(word, "^"):
		a.AnchorStart = true
		word = word[1:]
	}

	if strings.HasSuffix(word, "$") && len(word) > 0 {
		a.AnchorEnd = true
		word = word[:len(word)-1]
	}

	a.Text = word
	return a
}

// Empty reports whether the pattern has no atoms (equivalent to an
// empty query string).
func (p Pattern) Empty() bool {
	return len(p.Atoms) == 0
}
