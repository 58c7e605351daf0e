package profile

import (
	"encoding/json"
	"reflect"
	"strconv"
	"testing"
	"time"

	"jobassist/internal/types"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
	}
}

func TestMapNilProfile(t *testing.T) {
	out := Map(nil)

	expected := types.CanonicalProfile{
		Education:    []types.Education{},
		Skills:       []string{},
		Experience:   []string{},
		Projects:     []types.Project{},
		Certificates: []types.Certificate{},
		Awards:       []types.Award{},
	}
	if !reflect.DeepEqual(out, expected) {
		t.Errorf("Expected defaulted record %+v, got %+v", expected, out)
	}

	rendered, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
	if got := string(rendered); containsNull(got) {
		t.Errorf("Expected no null fields, got %s", got)
	}
}

func containsNull(s string) bool {
	for i := 0; i+4 <= len(s); i++ {
		if s[i:i+4] == "null" {
			return true
		}
	}
	return false
}

func TestGraduationYear(t *testing.T) {
	m := Mapper{Now: fixedClock(2026)}

	tests := []struct {
		name     string
		endDate  string
		expected string
	}{
		{name: "ongoing marker", endDate: "present", expected: "2026"},
		{name: "ongoing marker any case with spaces", endDate: " Present ", expected: "2026"},
		{name: "year and month", endDate: "2020-02", expected: "2020"},
		{name: "full date", endDate: "2019-08-31", expected: "2019"},
		{name: "year only", endDate: "2018", expected: "2018"},
		{name: "missing", endDate: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := m.Map(&ExternalProfile{Education: &ExternalEducation{School: "KAIST", EndDate: tt.endDate}})
			if len(out.Education) != 1 {
				t.Fatalf("Expected one education entry, got %d", len(out.Education))
			}
			if got := out.Education[0].GraduationYear; got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestGraduationYearUsesWallClock(t *testing.T) {
	out := Map(&ExternalProfile{Education: &ExternalEducation{EndDate: OngoingMarker}})
	expected := strconv.Itoa(time.Now().Year())
	if got := out.Education[0].GraduationYear; got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestMapName(t *testing.T) {
	tests := []struct {
		name     string
		identity *ExternalIdentity
		expected string
	}{
		{name: "localized preferred", identity: &ExternalIdentity{LocalizedName: "김하늘", Name: "Haneul Kim"}, expected: "김하늘"},
		{name: "secondary fallback", identity: &ExternalIdentity{Name: "Haneul Kim"}, expected: "Haneul Kim"},
		{name: "neither", identity: &ExternalIdentity{}, expected: ""},
		{name: "no profile object", identity: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Map(&ExternalProfile{Profile: tt.identity})
			if out.Name != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, out.Name)
			}
		})
	}
}

func TestMapSkills(t *testing.T) {
	t.Run("no skills object", func(t *testing.T) {
		out := Map(&ExternalProfile{})
		if out.Skills == nil || len(out.Skills) != 0 {
			t.Errorf("Expected empty non-nil skills, got %#v", out.Skills)
		}
	})

	t.Run("fixed category order", func(t *testing.T) {
		out := Map(&ExternalProfile{Skills: map[string][]string{
			"tools":     {"Git"},
			"languages": {"Go", "TypeScript"},
			"databases": {"PostgreSQL"},
			"hobbies":   {"Climbing"},
		}})
		expected := []string{"Go", "TypeScript", "PostgreSQL", "Git"}
		if !reflect.DeepEqual(out.Skills, expected) {
			t.Errorf("Expected %v, got %v", expected, out.Skills)
		}
	})
}

func TestDescribeExperience(t *testing.T) {
	tests := []struct {
		name     string
		exp      ExternalExperience
		expected string
	}{
		{
			name: "all parts",
			exp: ExternalExperience{
				Role: "Backend Engineer", Organization: "Toss", StartDate: "2021-03", EndDate: "2023-12",
				Highlights: []string{"Cut p99 latency by 40%.", "Led payments migration."},
			},
			expected: "Backend Engineer at Toss (2021-03 - 2023-12) Cut p99 latency by 40%. Led payments migration.",
		},
		{
			name:     "period needs both ends",
			exp:      ExternalExperience{Role: "Intern", Organization: "Naver", StartDate: "2020-06"},
			expected: "Intern at Naver",
		},
		{
			name:     "organization only",
			exp:      ExternalExperience{Organization: "Kakao", StartDate: "2019", EndDate: "2020"},
			expected: "Kakao (2019 - 2020)",
		},
		{
			name:     "role only with highlights",
			exp:      ExternalExperience{Role: "Freelancer", Highlights: []string{"Built shops."}},
			expected: "Freelancer Built shops.",
		},
		{
			name:     "blank highlights skipped",
			exp:      ExternalExperience{Role: "SRE", Organization: "Toss", Highlights: []string{"", "Ran on-call.", "   ", "Wrote runbooks."}},
			expected: "SRE at Toss Ran on-call. Wrote runbooks.",
		},
		{
			name:     "only blank highlights",
			exp:      ExternalExperience{Highlights: []string{" ", ""}},
			expected: "",
		},
		{
			name:     "empty entry",
			exp:      ExternalExperience{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeExperience(tt.exp); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMapProjectsAndFixedEmptyLists(t *testing.T) {
	out := Map(&ExternalProfile{Projects: []ExternalProject{
		{Name: "jobassist", Bullets: []string{"CLI and API.", "Gemini backed."}},
		{Name: "blog"},
	}})

	expected := []types.Project{
		{Name: "jobassist", Description: "CLI and API. Gemini backed.", TechStack: []string{}},
		{Name: "blog", Description: "", TechStack: []string{}},
	}
	if !reflect.DeepEqual(out.Projects, expected) {
		t.Errorf("Expected %+v, got %+v", expected, out.Projects)
	}
	if out.Certificates == nil || len(out.Certificates) != 0 {
		t.Errorf("Expected empty certificates, got %#v", out.Certificates)
	}
	if out.Awards == nil || len(out.Awards) != 0 {
		t.Errorf("Expected empty awards, got %#v", out.Awards)
	}
}
