package extract

import (
	"reflect"
	"testing"

	"jobassist/internal/types"

	"github.com/tidwall/gjson"
)

func entriesOf(t *testing.T, raw string) []gjson.Result {
	t.Helper()
	entries, err := ParseArray(raw)
	if err != nil {
		t.Fatalf("Failed to parse test input %q: %v", raw, err)
	}
	return entries
}

func TestNormalizeSections(t *testing.T) {
	entries := entriesOf(t, `[
		{"title": "A", "content": "a"},
		{"title": "B"},
		{"title": 1, "content": "x"},
		null,
		"loose string",
		{"title": "   ", "content": "x"},
		{"title": "C", "content": " c ", "extra": true}
	]`)

	sections, dropped := NormalizeSections(entries)

	expected := []types.Section{
		{Title: "A", Content: "a"},
		{Title: "C", Content: " c "},
	}
	if !reflect.DeepEqual(sections, expected) {
		t.Errorf("Expected %+v, got %+v", expected, sections)
	}
	if dropped != 5 {
		t.Errorf("Expected 5 dropped entries, got %d", dropped)
	}
}

func TestSectionFromReportsFieldError(t *testing.T) {
	entry := gjson.Parse(`{"title": "only title"}`)
	_, err := sectionFrom(3, entry)
	fieldErr, ok := err.(*FieldError)
	if !ok {
		t.Fatalf("Expected *FieldError, got %T", err)
	}
	if fieldErr.Index != 3 {
		t.Errorf("Expected index 3, got %d", fieldErr.Index)
	}
}

func TestNormalizeQuestionLists(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected [][]string
		dropped  int
	}{
		{
			name:     "array entry is trimmed filtered and capped",
			raw:      `[["a", " b ", "", 3, "c", "d"]]`,
			expected: [][]string{{"a", "b", "c"}},
			dropped:  3,
		},
		{
			name:     "questions alias",
			raw:      `[{"questions": ["q1"]}]`,
			expected: [][]string{{"q1"}},
		},
		{
			name:     "suggestions alias with a single string",
			raw:      `[{"suggestions": "single"}]`,
			expected: [][]string{{"single"}},
		},
		{
			name:     "short alias",
			raw:      `[{"q": ["x", "y"]}]`,
			expected: [][]string{{"x", "y"}},
		},
		{
			name:     "alias order decides",
			raw:      `[{"q": ["late"], "questions": ["first"]}]`,
			expected: [][]string{{"first"}},
		},
		{
			name:     "present alias wins even when empty",
			raw:      `[{"questions": [], "other": ["x"]}]`,
			expected: [][]string{{}},
		},
		{
			name:     "unknown keys flatten in source order",
			raw:      `[{"foo": ["f1"], "bar": "f2", "baz": 9}]`,
			expected: [][]string{{"f1", "f2"}},
			dropped:  1,
		},
		{
			name:     "positions are kept for unusable entries",
			raw:      `[7, {}, [], ["ok"], null]`,
			expected: [][]string{{}, {}, {}, {"ok"}, {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lists, dropped := NormalizeQuestionLists(entriesOf(t, tt.raw))
			if !reflect.DeepEqual(lists, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, lists)
			}
			if dropped != tt.dropped {
				t.Errorf("Expected %d dropped, got %d", tt.dropped, dropped)
			}
		})
	}
}
