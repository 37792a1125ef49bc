package types

import "sort"

// =============== contact TYPES ===============

// ContactInfo holds the first match found for each contact field. An empty
// field means nothing of that shape was found in the text.
type ContactInfo struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

type ContactField struct {
	Label string
	Value string
}

func (c ContactInfo) IsEmpty() bool {
	return c.Email == "" && c.Phone == "" && c.LinkedIn == ""
}

// Fields returns the populated fields in display order (email, phone, linkedin).
func (c ContactInfo) Fields() []ContactField {
	var fields []ContactField
	if c.Email != "" {
		fields = append(fields, ContactField{Label: "Email", Value: c.Email})
	}
	if c.Phone != "" {
		fields = append(fields, ContactField{Label: "Phone", Value: c.Phone})
	}
	if c.LinkedIn != "" {
		fields = append(fields, ContactField{Label: "Linkedin", Value: c.LinkedIn})
	}
	return fields
}

// =============== skill TYPES ===============

// SkillSet is an unordered set of skill or keyword tokens. Casing is whatever
// the producing extractor emitted.
type SkillSet map[string]struct{}

func NewSkillSet(items ...string) SkillSet {
	s := make(SkillSet, len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s SkillSet) Add(item string) {
	s[item] = struct{}{}
}

func (s SkillSet) Contains(item string) bool {
	_, ok := s[item]
	return ok
}

func (s SkillSet) Len() int {
	return len(s)
}

// Sorted returns the members in lexical order so replies are stable.
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// =============== matching TYPES ===============

type Comparison struct {
	Common     SkillSet `json:"common"`
	OnlyA      SkillSet `json:"only_a"`
	OnlyB      SkillSet `json:"only_b"`
	Percentage float64  `json:"percentage"`
}

// =============== analysis TYPES ===============

type Section string

const (
	SectionEducation  Section = "education"
	SectionExperience Section = "experience"
	SectionSkills     Section = "skills"
	SectionProjects   Section = "projects"
)

// Sections lists the canonical sections in display order.
var Sections = []Section{SectionEducation, SectionExperience, SectionSkills, SectionProjects}
