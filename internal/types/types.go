package types

// Section is a titled block of text extracted from a model completion
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// JobPostingInput represents the input for breaking a job posting into sections
type JobPostingInput struct {
	JobDescription string `json:"jobDescription"`
	SourceURL      string `json:"sourceUrl,omitempty"`
}

// JobPostingOutput represents a job posting split into titled sections
type JobPostingOutput struct {
	Sections []Section `json:"sections"`
	Fallback bool      `json:"fallback"`          // true when the completion could not be parsed
	Dropped  int       `json:"dropped,omitempty"` // malformed entries skipped while parsing
}

// Contact is a person the candidate wants to reach out to
type Contact struct {
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	Company string `json:"company,omitempty"`
	Note    string `json:"note,omitempty"`
}

// ContactQuestionsInput represents the input for suggesting questions per contact
type ContactQuestionsInput struct {
	Contacts  []Contact `json:"contacts"`
	TargetJob string    `json:"targetJob,omitempty"`
}

// ContactQuestionsOutput holds one question list per contact, in input order
type ContactQuestionsOutput struct {
	Questions [][]string `json:"questions"`
	Fallback  bool       `json:"fallback"`
	Dropped   int        `json:"dropped,omitempty"`
}

// LearningPlanInput represents the input for generating a learning plan
type LearningPlanInput struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"jobDescription"`
}

// LearningPlanOutput holds the ordered steps of a learning plan
type LearningPlanOutput struct {
	Steps    []Section `json:"steps"`
	Fallback bool      `json:"fallback"`
	Dropped  int       `json:"dropped,omitempty"`
}

// ExtractQuestionsInput runs the question pipeline over raw text without an AI call
type ExtractQuestionsInput struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// ExtractSectionsInput runs the section pipeline over raw text without an AI call
type ExtractSectionsInput struct {
	Text string `json:"text"`
}

// CanonicalProfile is the fixed-shape internal resume record.
// String fields are never absent and sequences are never nil.
type CanonicalProfile struct {
	Name         string        `json:"name"`
	Headline     string        `json:"headline"`
	Summary      string        `json:"summary"`
	Contact      ContactInfo   `json:"contact"`
	Education    []Education   `json:"education"`
	Skills       []string      `json:"skills"`
	Experience   []string      `json:"experience"`
	Projects     []Project     `json:"projects"`
	Certificates []Certificate `json:"certificates"`
	Awards       []Award       `json:"awards"`
}

// ContactInfo holds the candidate's contact channels
type ContactInfo struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website"`
	GitHub   string `json:"github"`
}

// Education is a single schooling entry
type Education struct {
	School         string `json:"school"`
	Major          string `json:"major"`
	Degree         string `json:"degree"`
	GraduationYear string `json:"graduationYear"`
}

// Project is a portfolio entry
type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TechStack   []string `json:"techStack"`
}

// Certificate is a certification entry
type Certificate struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// Award is an award or honor entry
type Award struct {
	Title  string `json:"title"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// ProfileImportInput asks the server to fetch and map a public profile page
type ProfileImportInput struct {
	URL  string `json:"url"`
	Path string `json:"path,omitempty"` // gjson path of the profile object inside the embedded data
}
