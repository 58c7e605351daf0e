package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"jobassist/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "JobPostingOutput", &PostingTextFormatter{})
	registry.RegisterFormatter("markdown", "JobPostingOutput", &PostingMarkdownFormatter{})
	registry.RegisterFormatter("text", "ContactQuestionsOutput", &QuestionsTextFormatter{})
	registry.RegisterFormatter("markdown", "ContactQuestionsOutput", &QuestionsMarkdownFormatter{})
	registry.RegisterFormatter("text", "LearningPlanOutput", &PlanTextFormatter{})
	registry.RegisterFormatter("markdown", "LearningPlanOutput", &PlanMarkdownFormatter{})
	registry.RegisterFormatter("text", "CanonicalProfile", &ProfileTextFormatter{})
	registry.RegisterFormatter("markdown", "CanonicalProfile", &ProfileMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.JobPostingOutput:
		return "JobPostingOutput"
	case types.ContactQuestionsOutput:
		return "ContactQuestionsOutput"
	case types.LearningPlanOutput:
		return "LearningPlanOutput"
	case types.CanonicalProfile:
		return "CanonicalProfile"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// PostingTextFormatter handles text formatting for job posting sections
type PostingTextFormatter struct{}

func (f *PostingTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.JobPostingOutput)
	if !ok {
		return "", fmt.Errorf("expected JobPostingOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== JOB POSTING ===\n\n")
	writeSectionsText(&output, result.Sections)
	writeParseNoteText(&output, result.Fallback, result.Dropped)
	return output.String(), nil
}

func (f *PostingTextFormatter) SupportedType() string {
	return "JobPostingOutput"
}

// PostingMarkdownFormatter handles markdown formatting for job posting sections
type PostingMarkdownFormatter struct{}

func (f *PostingMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.JobPostingOutput)
	if !ok {
		return "", fmt.Errorf("expected JobPostingOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Job Posting\n\n")
	writeSectionsMarkdown(&output, "##", result.Sections)
	writeParseNoteMarkdown(&output, result.Fallback, result.Dropped)
	return output.String(), nil
}

func (f *PostingMarkdownFormatter) SupportedType() string {
	return "JobPostingOutput"
}

// QuestionsTextFormatter handles text formatting for per-contact questions
type QuestionsTextFormatter struct{}

func (f *QuestionsTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ContactQuestionsOutput)
	if !ok {
		return "", fmt.Errorf("expected ContactQuestionsOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== QUESTIONS ===\n\n")
	for i, questions := range result.Questions {
		output.WriteString(fmt.Sprintf("Contact %d:\n", i+1))
		if len(questions) == 0 {
			output.WriteString("  (no questions)\n")
		}
		for _, q := range questions {
			output.WriteString(fmt.Sprintf("  - %s\n", q))
		}
		output.WriteString("\n")
	}
	writeParseNoteText(&output, result.Fallback, result.Dropped)
	return output.String(), nil
}

func (f *QuestionsTextFormatter) SupportedType() string {
	return "ContactQuestionsOutput"
}

// QuestionsMarkdownFormatter handles markdown formatting for per-contact questions
type QuestionsMarkdownFormatter struct{}

func (f *QuestionsMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ContactQuestionsOutput)
	if !ok {
		return "", fmt.Errorf("expected ContactQuestionsOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Questions\n\n")
	for i, questions := range result.Questions {
		output.WriteString(fmt.Sprintf("## Contact %d\n\n", i+1))
		if len(questions) == 0 {
			output.WriteString("_No questions._\n\n")
			continue
		}
		for _, q := range questions {
			output.WriteString(fmt.Sprintf("- %s\n", q))
		}
		output.WriteString("\n")
	}
	writeParseNoteMarkdown(&output, result.Fallback, result.Dropped)
	return output.String(), nil
}

func (f *QuestionsMarkdownFormatter) SupportedType() string {
	return "ContactQuestionsOutput"
}

// PlanTextFormatter handles text formatting for learning plans
type PlanTextFormatter struct{}

func (f *PlanTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.LearningPlanOutput)
	if !ok {
		return "", fmt.Errorf("expected LearningPlanOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== LEARNING PLAN ===\n\n")
	for i, step := range result.Steps {
		output.WriteString(fmt.Sprintf("Step %d: %s\n", i+1, step.Title))
		output.WriteString(step.Content)
		output.WriteString("\n\n")
	}
	writeParseNoteText(&output, result.Fallback, result.Dropped)
	return output.String(), nil
}

func (f *PlanTextFormatter) SupportedType() string {
	return "LearningPlanOutput"
}

// PlanMarkdownFormatter handles markdown formatting for learning plans
type PlanMarkdownFormatter struct{}

func (f *PlanMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.LearningPlanOutput)
	if !ok {
		return "", fmt.Errorf("expected LearningPlanOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Learning Plan\n\n")
	for i, step := range result.Steps {
		output.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, step.Title))
		output.WriteString(step.Content)
		output.WriteString("\n\n")
	}
	writeParseNoteMarkdown(&output, result.Fallback, result.Dropped)
	return output.String(), nil
}

func (f *PlanMarkdownFormatter) SupportedType() string {
	return "LearningPlanOutput"
}

// ProfileTextFormatter handles text formatting for canonical profiles
type ProfileTextFormatter struct{}

func (f *ProfileTextFormatter) Format(data any) (string, error) {
	p, ok := data.(types.CanonicalProfile)
	if !ok {
		return "", fmt.Errorf("expected CanonicalProfile, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== PROFILE ===\n")
	output.WriteString(fmt.Sprintf("Name: %s\n", p.Name))
	output.WriteString(fmt.Sprintf("Headline: %s\n", p.Headline))
	writeContactText(&output, p.Contact)

	if p.Summary != "" {
		output.WriteString("\n=== SUMMARY ===\n")
		output.WriteString(p.Summary)
		output.WriteString("\n")
	}

	writeListText(&output, "EXPERIENCE", p.Experience)
	writeListText(&output, "SKILLS", p.Skills)

	if len(p.Education) > 0 {
		output.WriteString("\n=== EDUCATION ===\n")
		for _, e := range p.Education {
			output.WriteString(fmt.Sprintf("- %s\n", joinNonEmpty(", ", e.School, e.Major, e.Degree, e.GraduationYear)))
		}
	}
	if len(p.Projects) > 0 {
		output.WriteString("\n=== PROJECTS ===\n")
		for _, pr := range p.Projects {
			output.WriteString(fmt.Sprintf("- %s\n", pr.Name))
			if pr.Description != "" {
				output.WriteString(fmt.Sprintf("  %s\n", pr.Description))
			}
			if len(pr.TechStack) > 0 {
				output.WriteString(fmt.Sprintf("  Stack: %s\n", strings.Join(pr.TechStack, ", ")))
			}
		}
	}
	if len(p.Certificates) > 0 {
		output.WriteString("\n=== CERTIFICATES ===\n")
		for _, c := range p.Certificates {
			output.WriteString(fmt.Sprintf("- %s\n", joinNonEmpty(", ", c.Name, c.Issuer, c.Date)))
		}
	}
	if len(p.Awards) > 0 {
		output.WriteString("\n=== AWARDS ===\n")
		for _, a := range p.Awards {
			output.WriteString(fmt.Sprintf("- %s\n", joinNonEmpty(", ", a.Title, a.Issuer, a.Date)))
		}
	}

	return output.String(), nil
}

func (f *ProfileTextFormatter) SupportedType() string {
	return "CanonicalProfile"
}

// ProfileMarkdownFormatter handles markdown formatting for canonical profiles
type ProfileMarkdownFormatter struct{}

func (f *ProfileMarkdownFormatter) Format(data any) (string, error) {
	p, ok := data.(types.CanonicalProfile)
	if !ok {
		return "", fmt.Errorf("expected CanonicalProfile, got %T", data)
	}

	var output strings.Builder
	title := p.Name
	if title == "" {
		title = "Profile"
	}
	output.WriteString(fmt.Sprintf("# %s\n\n", title))
	if p.Headline != "" {
		output.WriteString(fmt.Sprintf("_%s_\n\n", p.Headline))
	}

	contact := joinNonEmpty(" | ", p.Contact.Email, p.Contact.Phone, p.Contact.Location, p.Contact.Website, p.Contact.GitHub)
	if contact != "" {
		output.WriteString(contact + "\n\n")
	}
	if p.Summary != "" {
		output.WriteString("## Summary\n\n")
		output.WriteString(p.Summary + "\n\n")
	}

	writeListMarkdown(&output, "Experience", p.Experience)
	writeListMarkdown(&output, "Skills", p.Skills)

	if len(p.Education) > 0 {
		output.WriteString("## Education\n\n")
		for _, e := range p.Education {
			output.WriteString(fmt.Sprintf("- **%s** %s\n", e.School, joinNonEmpty(", ", e.Major, e.Degree, e.GraduationYear)))
		}
		output.WriteString("\n")
	}
	if len(p.Projects) > 0 {
		output.WriteString("## Projects\n\n")
		for _, pr := range p.Projects {
			output.WriteString(fmt.Sprintf("### %s\n\n", pr.Name))
			if pr.Description != "" {
				output.WriteString(pr.Description + "\n\n")
			}
			if len(pr.TechStack) > 0 {
				output.WriteString(fmt.Sprintf("**Stack:** %s\n\n", strings.Join(pr.TechStack, ", ")))
			}
		}
	}
	if len(p.Certificates) > 0 {
		output.WriteString("## Certificates\n\n")
		for _, c := range p.Certificates {
			output.WriteString(fmt.Sprintf("- %s\n", joinNonEmpty(", ", c.Name, c.Issuer, c.Date)))
		}
		output.WriteString("\n")
	}
	if len(p.Awards) > 0 {
		output.WriteString("## Awards\n\n")
		for _, a := range p.Awards {
			output.WriteString(fmt.Sprintf("- %s\n", joinNonEmpty(", ", a.Title, a.Issuer, a.Date)))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (f *ProfileMarkdownFormatter) SupportedType() string {
	return "CanonicalProfile"
}

func writeSectionsText(output *strings.Builder, sections []types.Section) {
	for _, s := range sections {
		output.WriteString(fmt.Sprintf("[%s]\n", s.Title))
		output.WriteString(s.Content)
		output.WriteString("\n\n")
	}
}

func writeSectionsMarkdown(output *strings.Builder, heading string, sections []types.Section) {
	for _, s := range sections {
		output.WriteString(fmt.Sprintf("%s %s\n\n", heading, s.Title))
		output.WriteString(s.Content)
		output.WriteString("\n\n")
	}
}

func writeParseNoteText(output *strings.Builder, fallback bool, dropped int) {
	if fallback {
		output.WriteString("Note: the model response could not be parsed; showing it unstructured.\n")
	}
	if dropped > 0 {
		output.WriteString(fmt.Sprintf("Note: %d malformed entries were skipped.\n", dropped))
	}
}

func writeParseNoteMarkdown(output *strings.Builder, fallback bool, dropped int) {
	if fallback {
		output.WriteString("> The model response could not be parsed; showing it unstructured.\n")
	}
	if dropped > 0 {
		output.WriteString(fmt.Sprintf("> %d malformed entries were skipped.\n", dropped))
	}
}

func writeContactText(output *strings.Builder, c types.ContactInfo) {
	for _, field := range []struct{ label, value string }{
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Location", c.Location},
		{"Website", c.Website},
		{"GitHub", c.GitHub},
	} {
		if field.value != "" {
			output.WriteString(fmt.Sprintf("%s: %s\n", field.label, field.value))
		}
	}
}

func writeListText(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("\n=== %s ===\n", title))
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
}

func writeListMarkdown(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("## %s\n\n", title))
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// GlobalRegistry is the registry shared by the CLI commands
var GlobalRegistry = NewFormatterRegistry()
