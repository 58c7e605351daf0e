package extract

import (
	"errors"

	"jobassist/internal/types"
)

// DefaultSectionTitle labels the section that carries unparsed text
const DefaultSectionTitle = "상세 내용"

// ErrNoUsableEntries means the text parsed but every entry was dropped
var ErrNoUsableEntries = errors.New("extract: no usable entries")

// Outcome describes how a pipeline run produced its result
type Outcome struct {
	Fallback bool  // the default result was substituted
	Cause    error // why the default was used; nil when Fallback is false
	Dropped  int   // entries or items discarded by the normalizer
}

// Reason names the stage that forced the fallback, or "" when the
// result was parsed.
func (o Outcome) Reason() string {
	var parseErr *ParseError
	var shapeErr *ShapeError
	switch {
	case !o.Fallback:
		return ""
	case errors.As(o.Cause, &parseErr):
		return "parse"
	case errors.As(o.Cause, &shapeErr):
		return "shape"
	case errors.Is(o.Cause, ErrNoUsableEntries):
		return "empty"
	default:
		return "other"
	}
}

// Sections runs the section pipeline and never returns an empty slice
func Sections(raw string) []types.Section {
	sections, _ := ExtractSections(raw)
	return sections
}

// Questions runs the question-list pipeline and always returns exactly n
// lists (zero when n is negative).
func Questions(raw string, n int) [][]string {
	lists, _ := ExtractQuestions(raw, n)
	return lists
}

// ExtractSections is Sections plus the Outcome of the run
func ExtractSections(raw string) ([]types.Section, Outcome) {
	sections, dropped, err := parseSections(raw)
	return withDefault(sections, dropped, err, func() []types.Section {
		return []types.Section{{Title: DefaultSectionTitle, Content: raw}}
	})
}

// ExtractQuestions is Questions plus the Outcome of the run
func ExtractQuestions(raw string, n int) ([][]string, Outcome) {
	if n < 0 {
		n = 0
	}
	lists, dropped, err := parseQuestions(raw, n)
	return withDefault(lists, dropped, err, func() [][]string {
		return emptyLists(n)
	})
}

// withDefault is the only place a stage failure turns into a result
func withDefault[T any](value T, dropped int, err error, fallback func() T) (T, Outcome) {
	if err != nil {
		return fallback(), Outcome{Fallback: true, Cause: err, Dropped: dropped}
	}
	return value, Outcome{Dropped: dropped}
}

func parseSections(raw string) ([]types.Section, int, error) {
	entries, err := ParseArray(Sanitize(raw))
	if err != nil {
		return nil, 0, err
	}
	sections, dropped := NormalizeSections(entries)
	if len(sections) == 0 {
		return nil, dropped, ErrNoUsableEntries
	}
	return sections, dropped, nil
}

func parseQuestions(raw string, n int) ([][]string, int, error) {
	entries, err := ParseArray(Sanitize(raw))
	if err != nil {
		return nil, 0, err
	}
	lists, dropped := NormalizeQuestionLists(entries)
	return align(lists, n), dropped, nil
}

// align pads with empty lists or discards surplus positions so the result
// lines up with the caller's n inputs.
func align(lists [][]string, n int) [][]string {
	out := emptyLists(n)
	copy(out, lists)
	return out
}

func emptyLists(n int) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = []string{}
	}
	return out
}
