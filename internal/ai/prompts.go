package ai

import (
	"fmt"
	"strings"

	"jobassist/internal/config"
	"jobassist/internal/types"
)

// Prompts is a system instruction plus a user template for one operation
type Prompts struct {
	System string
	User   string
}

// DefaultPrompts holds the built-in prompts per operation. User templates
// take their arguments as %s verbs, in the order documented on each builder.
var DefaultPrompts = map[string]Prompts{
	config.OperationPosting: {
		System: `You are a recruiting analyst who restructures job postings for candidates.
Stay faithful to the posting: never invent duties, requirements or benefits that are not stated.
Answer in the language of the posting.`,
		User: `Split the job posting below into titled sections such as responsibilities,
requirements, preferred qualifications, benefits and hiring process.

Answer with a JSON array only. Each element must be an object with two string fields:
  "title"   - a short section heading
  "content" - the section text, lightly cleaned up
Do not wrap the array in any other object.

**Job Posting:**
-----
%s
-----`,
	},

	config.OperationQuestions: {
		System: `You are a career coach who helps candidates prepare for informational interviews.
Questions must be specific to the person, polite, and answerable in a short conversation.`,
		User: `Suggest up to three questions the candidate could ask each contact listed below.

Answer with a JSON array only, with exactly one element per contact, in the same order.
Each element must be an object of the form {"questions": ["...", "..."]}.
Use an empty list for a contact you cannot write questions for.

**Target Role:**
%s

**Contacts:**
%s`,
	},

	config.OperationPlan: {
		System: `You are a technical mentor who builds realistic study plans.
Base every step on a concrete gap between the resume and the job posting.`,
		User: `Compare the resume with the job posting and write an ordered learning plan that closes the gaps.

Answer with a JSON array only. Each element must be an object with two string fields:
  "title"   - the name of the step
  "content" - what to study or build, and how to show it on the resume

**Resume:**
-----
%s
-----

**Job Posting:**
-----
%s
-----`,
	},
}

// resolvePrompts layers custom prompts over the defaults for op
func resolvePrompts(store *config.PromptStore, op string) Prompts {
	p := DefaultPrompts[op]
	if store == nil {
		return p
	}
	custom := store.Get(op)
	if custom.System != "" {
		p.System = custom.System
	}
	if custom.User != "" {
		p.User = custom.User
	}
	return p
}

// postingPrompt formats the posting template with the job description
func postingPrompt(p Prompts, input types.JobPostingInput) string {
	return fmt.Sprintf(p.User, input.JobDescription)
}

// questionsPrompt formats the questions template with the target role and the contact list
func questionsPrompt(p Prompts, input types.ContactQuestionsInput) string {
	target := input.TargetJob
	if target == "" {
		target = "(not specified)"
	}
	return fmt.Sprintf(p.User, target, formatContacts(input.Contacts))
}

// planPrompt formats the plan template with the resume and the job description
func planPrompt(p Prompts, input types.LearningPlanInput) string {
	return fmt.Sprintf(p.User, input.Resume, input.JobDescription)
}

// formatContacts renders one numbered line per contact
func formatContacts(contacts []types.Contact) string {
	var b strings.Builder
	for i, c := range contacts {
		fmt.Fprintf(&b, "%d. %s", i+1, c.Name)
		if c.Role != "" {
			fmt.Fprintf(&b, ", %s", c.Role)
		}
		if c.Company != "" {
			fmt.Fprintf(&b, " at %s", c.Company)
		}
		if c.Note != "" {
			fmt.Fprintf(&b, " (%s)", c.Note)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
