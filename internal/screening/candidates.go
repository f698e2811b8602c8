package screening

import "github.com/kruglovb/ai-interviewer/internal/headhunter"

// Candidate is one scraped resume moving through the screening pipeline.
type Candidate struct {
	Resume *headhunter.ResumeDetails

	// Filled by the AI fit step.
	MatchPercent int
	Analysis     string
}

type Candidates struct {
	Items []*Candidate
}

func FromResumes(details []*headhunter.ResumeDetails) *Candidates {
	c := &Candidates{Items: make([]*Candidate, 0, len(details))}
	for _, d := range details {
		c.Items = append(c.Items, &Candidate{Resume: d})
	}
	return c
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, candidate := range c.Items {
		ids = append(ids, candidate.Resume.ID)
	}
	return ids
}
