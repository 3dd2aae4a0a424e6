package store

import "regexp"

// Injector is the sole write capability into a CandidateStore.
type Injector interface {
	Push(columns []string, meta any) (uint32, error)
}

// direct adapts *CandidateStore to Injector without exposing Get/Count.
type direct struct{ s *CandidateStore }

func NewInjector(s *CandidateStore) Injector { return direct{s} }

func (d direct) Push(columns []string, meta any) (uint32, error) {
	return d.s.Push(columns, meta)
}

// IndexedInjector attaches a caller-supplied metadata value to every
// item pushed through it — e.g. the originating file path for a
// ripgrep-style source, used later by preview/interrupt templates even
// when the match column itself has been reformatted.
type IndexedInjector struct {
	Inner    Injector
	MetaFunc func(columns []string) any
}

func (ii IndexedInjector) Push(columns []string, meta any) (uint32, error) {
	if ii.MetaFunc != nil {
		meta = ii.MetaFunc(columns)
	}
	return ii.Inner.Push(columns, meta)
}

// Splitter converts one raw input line into an ordered sequence of
// column strings.
type Splitter func(line string) []string

// FixedDelimiterSplitter splits on a single ASCII byte, the Go
// equivalent of the `columns.split` fixed-delimiter configuration.
func FixedDelimiterSplitter(sep byte) Splitter {
	return func(line string) []string {
		var cols []string
		start := 0
		for i := 0; i < len(line); i++ {
			if line[i] == sep {
				cols = append(cols, line[start:i])
				start = i + 1
			}
		}
		cols = append(cols, line[start:])
		return cols
	}
}

// RegexSplitter splits using a compiled regular expression, the Go
// equivalent of a regex `columns.split` rule.
func RegexSplitter(re *regexp.Regexp) Splitter {
	return func(line string) []string {
		return re.Split(line, -1)
	}
}

// SegmentedInjector fans a single raw input line into the fixed-arity
// column vector expected by the store, via a Splitter. Short splits
// are padded with empty columns; long splits are truncated — per the
// Candidate Store & Injector contract in the spec.
type SegmentedInjector struct {
	Inner    Injector
	Split    Splitter
	NumCols  int
	MetaFunc func(line string, columns []string) any
}

func (si SegmentedInjector) PushLine(line string) (uint32, error) {
	var cols []string
	if si.Split != nil {
		cols = si.Split(line)
	} else {
		cols = []string{line}
	}

	out := make([]string, si.NumCols)
	for i := 0; i < si.NumCols && i < len(cols); i++ {
		out[i] = cols[i]
	}
	// If the splitter found no delimiter at all (cols has exactly one
	// element) but NumCols > 1, every column past the first stays the
	// empty string — the whole line is treated as a single-column item
	// (Open Question (b), see DESIGN.md).

	var meta any
	if si.MetaFunc != nil {
		meta = si.MetaFunc(line, out)
	}
	return si.Inner.Push(out, meta)
}
