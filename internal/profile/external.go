// Package profile maps scraped profile documents onto the canonical resume record.
package profile

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ExternalProfile mirrors the profile document published by the resume site.
// Every field is optional; Decode leaves wrongly typed fields at their zero value.
type ExternalProfile struct {
	Profile    *ExternalIdentity
	Contact    *ExternalContact
	Education  *ExternalEducation
	Experience []ExternalExperience
	Projects   []ExternalProject
	Skills     map[string][]string // nil when the document has no skills object
}

type ExternalIdentity struct {
	LocalizedName string
	Name          string
	Headline      string
	Summary       string
}

type ExternalContact struct {
	Email    string
	Phone    string
	Location string
	Website  string
	GitHub   string
}

type ExternalEducation struct {
	School    string
	Major     string
	Degree    string
	StartDate string
	EndDate   string // "YYYY-MM", "YYYY" or the ongoing marker
}

type ExternalExperience struct {
	Role         string
	Organization string
	StartDate    string
	EndDate      string
	Highlights   []string
}

type ExternalProject struct {
	Name    string
	Bullets []string
}

// DecodeError reports a document that is not a JSON object
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("profile: %s", e.Reason)
}

// Decode reads an external profile document. Each field is read on its own,
// so a malformed field never prevents the others from being decoded.
func Decode(raw []byte) (*ExternalProfile, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &DecodeError{Reason: "document is not valid JSON"}
	}
	return FromResult(gjson.ParseBytes(raw))
}

// FromResult decodes an already parsed document, such as a sub-object of a
// page's embedded data.
func FromResult(doc gjson.Result) (*ExternalProfile, error) {
	if !doc.IsObject() {
		return nil, &DecodeError{Reason: "document is not a JSON object"}
	}

	ext := &ExternalProfile{}

	if p := doc.Get("profile"); p.IsObject() {
		ext.Profile = &ExternalIdentity{
			LocalizedName: str(p, "localizedName"),
			Name:          str(p, "name"),
			Headline:      str(p, "headline"),
			Summary:       str(p, "summary"),
		}
	}

	if c := doc.Get("contact"); c.IsObject() {
		ext.Contact = &ExternalContact{
			Email:    str(c, "email"),
			Phone:    str(c, "phone"),
			Location: str(c, "location"),
			Website:  str(c, "website"),
			GitHub:   str(c, "github"),
		}
	}

	if e := doc.Get("education"); e.IsObject() {
		ext.Education = &ExternalEducation{
			School:    str(e, "school"),
			Major:     str(e, "major"),
			Degree:    str(e, "degree"),
			StartDate: str(e, "startDate"),
			EndDate:   str(e, "endDate"),
		}
	}

	doc.Get("experience").ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			ext.Experience = append(ext.Experience, ExternalExperience{
				Role:         str(item, "role"),
				Organization: str(item, "organization"),
				StartDate:    str(item, "startDate"),
				EndDate:      str(item, "endDate"),
				Highlights:   strs(item.Get("highlights")),
			})
		}
		return true
	})

	doc.Get("projects").ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			ext.Projects = append(ext.Projects, ExternalProject{
				Name:    str(item, "name"),
				Bullets: strs(item.Get("bullets")),
			})
		}
		return true
	})

	if s := doc.Get("skills"); s.IsObject() {
		ext.Skills = make(map[string][]string)
		s.ForEach(func(key, value gjson.Result) bool {
			ext.Skills[key.String()] = strs(value)
			return true
		})
	}

	return ext, nil
}

func str(obj gjson.Result, key string) string {
	v := obj.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

func strs(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if item.Type == gjson.String {
			out = append(out, item.Str)
		}
	}
	return out
}
