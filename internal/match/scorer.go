package match

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// exactBonus outranks any plausible fuzzy score so an exact-sigil atom
// never loses to noisy fuzzy matches elsewhere in the pattern.
const exactBonus = 1 << 20

type atomResult struct {
	ok        bool
	score     int32
	positions []uint32 // rune offsets into the column text
}

// scoreAtom evaluates a single atom against one column's text.
// Positions are reported as grapheme-offset approximations using rune
// indices, which is exact for the common BMP/ASCII case this engine
// targets; full grapheme-cluster accounting (e.g. via
// github.com/rivo/uniseg, already pulled in transitively by
// bubbles/lipgloss's width calculations) is not needed for highlighting
// fidelity here and would add cost without changing the matcher's
// decisions.
func scoreAtom(column string, a Atom) atomResult {
	if a.Exact {
		return scoreExact(column, a)
	}
	return scoreFuzzy(column, a)
}

func scoreExact(column string, a Atom) atomResult {
	if a.Text == "" {
		return atomResult{ok: true, score: exactBonus}
	}
	byteIdx := strings.Index(column, a.Text)
	if byteIdx < 0 {
		return atomResult{ok: false}
	}
	runeStart := utf8.RuneCountInString(column[:byteIdx])
	runeLen := utf8.RuneCountInString(a.Text)

	if a.AnchorStart && runeStart != 0 {
		return atomResult{ok: false}
	}
	runeTotal := utf8.RuneCountInString(column)
	if a.AnchorEnd && runeStart+runeLen != runeTotal {
		return atomResult{ok: false}
	}

	positions := make([]uint32, runeLen)
	for i := range positions {
		positions[i] = uint32(runeStart + i)
	}
	return atomResult{ok: true, score: exactBonus + int32(runeLen), positions: positions}
}

func scoreFuzzy(column string, a Atom) atomResult {
	if a.Text == "" {
		return atomResult{ok: true, score: 0}
	}
	matches := fuzzy.Find(a.Text, []string{column})
	if len(matches) == 0 {
		return atomResult{ok: false}
	}
	m := matches[0]

	if a.AnchorStart && (len(m.MatchedIndexes) == 0 || m.MatchedIndexes[0] != 0) {
		return atomResult{ok: false}
	}
	if a.AnchorEnd {
		runeTotal := utf8.RuneCountInString(column)
		if len(m.MatchedIndexes) == 0 || m.MatchedIndexes[len(m.MatchedIndexes)-1] != runeTotal-1 {
			return atomResult{ok: false}
		}
	}

	positions := make([]uint32, len(m.MatchedIndexes))
	for i, p := range m.MatchedIndexes {
		positions[i] = uint32(p)
	}
	return atomResult{ok: true, score: int32(m.Score), positions: positions}
}

// scoreItem scores all atoms of pattern against columns[matchColumn],
// per the composition rule in spec §4.2 step 3: sum of per-atom
// scores; any negated atom that matches forces exclusion; any
// anchored atom unsatisfied forces exclusion.
func scoreItem(columns []string, matchColumn int, pattern Pattern) (score int32, positions []uint32, include bool) {
	if pattern.Empty() {
		return 0, nil, true
	}
	if matchColumn < 0 || matchColumn >= len(columns) {
		return 0, nil, false
	}
	column := columns[matchColumn]

	var total int32
	var pos []uint32
	for _, atom := range pattern.Atoms {
		res := scoreAtom(column, atom)

		if atom.Negate {
			if res.ok {
				return 0, nil, false
			}
			continue
		}

		if !res.ok {
			return 0, nil, false
		}
		total += res.score
		pos = append(pos, res.positions...)
	}

	sort.Slice(pos, func(i, j int) bool { return pos[i] < pos[j] })
	pos = dedupeSorted(pos)
	return total, pos, true
}

func dedupeSorted(s []uint32) []uint32 {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
