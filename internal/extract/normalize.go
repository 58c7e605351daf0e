package extract

import (
	"strings"

	"jobassist/internal/types"

	"github.com/tidwall/gjson"
)

// MaxQuestionsPerEntry caps each question list
const MaxQuestionsPerEntry = 3

// questionAliases are tried in order on object entries.
// Renamed upstream keys fall through to the flattened object values.
var questionAliases = []string{"questions", "suggestions", "q"}

// NormalizeSections keeps entries that are objects with non-blank string
// title and content. It returns the kept sections and the number dropped.
func NormalizeSections(entries []gjson.Result) ([]types.Section, int) {
	sections := make([]types.Section, 0, len(entries))
	dropped := 0
	for i, entry := range entries {
		section, err := sectionFrom(i, entry)
		if err != nil {
			dropped++
			continue
		}
		sections = append(sections, section)
	}
	return sections, dropped
}

func sectionFrom(i int, entry gjson.Result) (types.Section, error) {
	if !entry.IsObject() {
		return types.Section{}, &FieldError{Index: i, Reason: "not an object, got " + kindOf(entry)}
	}
	title, ok := nonBlankString(entry.Get("title"))
	if !ok {
		return types.Section{}, &FieldError{Index: i, Reason: "title missing or not a string"}
	}
	content, ok := nonBlankString(entry.Get("content"))
	if !ok {
		return types.Section{}, &FieldError{Index: i, Reason: "content missing or not a string"}
	}
	return types.Section{Title: title, Content: content}, nil
}

func nonBlankString(v gjson.Result) (string, bool) {
	if v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
		return "", false
	}
	return v.Str, true
}

// NormalizeQuestionLists maps every entry to at most MaxQuestionsPerEntry
// trimmed questions. Positions are preserved: an entry with nothing usable
// becomes an empty list. The count of discarded items is returned as well.
func NormalizeQuestionLists(entries []gjson.Result) ([][]string, int) {
	lists := make([][]string, len(entries))
	dropped := 0
	for i, entry := range entries {
		var n int
		lists[i], n = cleanQuestions(questionSource(entry))
		dropped += n
	}
	return lists, dropped
}

func questionSource(entry gjson.Result) []gjson.Result {
	switch {
	case entry.IsArray():
		return entry.Array()
	case entry.IsObject():
		fields := entry.Map()
		for _, alias := range questionAliases {
			if v, ok := fields[alias]; ok {
				return listOf(v)
			}
		}
		// map iteration order is random, so walk the raw object instead
		var flat []gjson.Result
		entry.ForEach(func(_, value gjson.Result) bool {
			flat = append(flat, listOf(value)...)
			return true
		})
		return flat
	default:
		return nil
	}
}

func listOf(v gjson.Result) []gjson.Result {
	if v.IsArray() {
		return v.Array()
	}
	return []gjson.Result{v}
}

func cleanQuestions(items []gjson.Result) ([]string, int) {
	questions := make([]string, 0, MaxQuestionsPerEntry)
	dropped := 0
	for _, item := range items {
		if len(questions) == MaxQuestionsPerEntry {
			dropped++
			continue
		}
		if item.Type != gjson.String {
			dropped++
			continue
		}
		q := strings.TrimSpace(item.Str)
		if q == "" {
			dropped++
			continue
		}
		questions = append(questions, q)
	}
	return questions, dropped
}
