package types

// Section is one configured résumé segment and the lines attributed to it.
// Found is always equal to len(Content) > 0.
type Section struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Required    bool     `json:"required"`
	Importance  string   `json:"importance"`
	Found       bool     `json:"found"`
	Content     []string `json:"content"`
}

// SectionResult is the output of section detection
type SectionResult struct {
	Sections                []Section `json:"sections"`
	MissingRequiredSections []string  `json:"missingRequiredSections"`
	UnattributedLineCount   int       `json:"unattributedLineCount"`
}

// Get returns the section with the given key.
func (r *SectionResult) Get(key string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// FoundCount returns the number of sections that received content.
func (r *SectionResult) FoundCount() int {
	n := 0
	for _, s := range r.Sections {
		if s.Found {
			n++
		}
	}
	return n
}
