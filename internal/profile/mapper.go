package profile

import (
	"strconv"
	"strings"
	"time"

	"jobassist/internal/types"
)

// OngoingMarker is the endDate value for an education that has not ended
const OngoingMarker = "present"

const experienceConnector = " at "

// skillCategories is the flatten order for the skills object.
// Categories outside this list are ignored.
var skillCategories = []string{"languages", "frameworks", "databases", "cloud", "tools", "others"}

// Mapper converts external profiles into canonical records
type Mapper struct {
	Now func() time.Time
}

// Map converts ext using the wall clock
func Map(ext *ExternalProfile) types.CanonicalProfile {
	return Mapper{}.Map(ext)
}

// Map converts ext field by field. A nil ext yields a fully defaulted record.
func (m Mapper) Map(ext *ExternalProfile) types.CanonicalProfile {
	out := types.CanonicalProfile{
		Education:    []types.Education{},
		Skills:       []string{},
		Experience:   []string{},
		Projects:     []types.Project{},
		Certificates: []types.Certificate{},
		Awards:       []types.Award{},
	}
	if ext == nil {
		return out
	}

	if p := ext.Profile; p != nil {
		out.Name = firstNonEmpty(p.LocalizedName, p.Name)
		out.Headline = p.Headline
		out.Summary = p.Summary
	}

	if c := ext.Contact; c != nil {
		out.Contact = types.ContactInfo{
			Email:    c.Email,
			Phone:    c.Phone,
			Location: c.Location,
			Website:  c.Website,
			GitHub:   c.GitHub,
		}
	}

	if e := ext.Education; e != nil {
		out.Education = append(out.Education, types.Education{
			School:         e.School,
			Major:          e.Major,
			Degree:         e.Degree,
			GraduationYear: m.graduationYear(e.EndDate),
		})
	}

	out.Skills = flattenSkills(ext.Skills)

	for _, exp := range ext.Experience {
		out.Experience = append(out.Experience, describeExperience(exp))
	}

	for _, p := range ext.Projects {
		out.Projects = append(out.Projects, types.Project{
			Name:        p.Name,
			Description: strings.Join(p.Bullets, " "),
			TechStack:   []string{},
		})
	}

	return out
}

func (m Mapper) graduationYear(endDate string) string {
	end := strings.TrimSpace(endDate)
	if strings.EqualFold(end, OngoingMarker) {
		return strconv.Itoa(m.now().Year())
	}
	year, _, _ := strings.Cut(end, "-")
	return strings.TrimSpace(year)
}

func (m Mapper) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func flattenSkills(skills map[string][]string) []string {
	out := []string{}
	for _, category := range skillCategories {
		out = append(out, skills[category]...)
	}
	return out
}

// describeExperience renders "role at organization (start - end) highlights"
// keeping only the parts that are present.
func describeExperience(exp ExternalExperience) string {
	role := strings.TrimSpace(exp.Role)
	org := strings.TrimSpace(exp.Organization)

	var b strings.Builder
	switch {
	case role != "" && org != "":
		b.WriteString(role + experienceConnector + org)
	case role != "":
		b.WriteString(role)
	case org != "":
		b.WriteString(org)
	}

	start := strings.TrimSpace(exp.StartDate)
	end := strings.TrimSpace(exp.EndDate)
	if start != "" && end != "" {
		appendWord(&b, "("+start+" - "+end+")")
	}

	for _, h := range exp.Highlights {
		if strings.TrimSpace(h) != "" {
			appendWord(&b, h)
		}
	}
	return b.String()
}

func appendWord(b *strings.Builder, s string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
