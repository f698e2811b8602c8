package headhunter

import (
	"fmt"
	"strings"
)

type Resumes struct {
	Items []*Resume
}

// Resume is a search result entry. The search endpoint returns a
// shortened representation; GetResumeDetails fetches the full one.
type Resume struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	MiddleName   string `json:"middle_name,omitempty"`
	Age          int    `json:"age,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
	Gender       struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"gender,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Salary struct {
		Amount   int    `json:"amount,omitempty"`
		Currency string `json:"currency,omitempty"`
	} `json:"salary,omitempty"`
	TotalExperience struct {
		Months int `json:"months,omitempty"`
	} `json:"total_experience,omitempty"`
}

func (r *Resumes) Len() int {
	return len(r.Items)
}

func (r *Resumes) IDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, resume := range r.Items {
		ids = append(ids, resume.ID)
	}
	return ids
}

func (r *Resumes) FindByID(id string) *Resume {
	for _, resume := range r.Items {
		if resume.ID == id {
			return resume
		}
	}
	return nil
}

// RemoveByIndex removes a resume from the list by index. Do not preserve order.
func (r *Resumes) RemoveByIndex(idx int) {
	r.Items[idx] = r.Items[len(r.Items)-1]
	r.Items = r.Items[:len(r.Items)-1]
}

func (r *Resume) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.LastName, r.FirstName, r.MiddleName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// ResumeDetails is the full resume representation.
type ResumeDetails struct {
	Resume
	BirthDate string   `json:"birth_date,omitempty"`
	About     string   `json:"skills,omitempty"`
	SkillSet  []string `json:"skill_set,omitempty"`
	Language  []struct {
		Name  string `json:"name,omitempty"`
		Level struct {
			Name string `json:"name,omitempty"`
		} `json:"level,omitempty"`
	} `json:"language,omitempty"`
	Experience []struct {
		Company     string `json:"company,omitempty"`
		Position    string `json:"position,omitempty"`
		Start       string `json:"start,omitempty"`
		End         string `json:"end,omitempty"`
		Description string `json:"description,omitempty"`
	} `json:"experience,omitempty"`
	Education struct {
		Primary []struct {
			Name         string `json:"name,omitempty"`
			Organization string `json:"organization,omitempty"`
			Result       string `json:"result,omitempty"`
			Year         int    `json:"year,omitempty"`
		} `json:"primary,omitempty"`
		Additional []struct {
			Name         string `json:"name,omitempty"`
			Organization string `json:"organization,omitempty"`
			Year         int    `json:"year,omitempty"`
		} `json:"additional,omitempty"`
	} `json:"education,omitempty"`
	Specialization []struct {
		Name string `json:"name,omitempty"`
	} `json:"specialization,omitempty"`
	Certificate []struct {
		Title string `json:"title,omitempty"`
	} `json:"certificate,omitempty"`
	Recommendation []struct {
		Name         string `json:"name,omitempty"`
		Organization string `json:"organization,omitempty"`
		Position     string `json:"position,omitempty"`
	} `json:"recommendation,omitempty"`
	Contact []struct {
		Type struct {
			ID   string `json:"id,omitempty"`
			Name string `json:"name,omitempty"`
		} `json:"type,omitempty"`
		Value     any  `json:"value,omitempty"`
		Preferred bool `json:"preferred,omitempty"`
	} `json:"contact,omitempty"`
}

// GetResumeDetails fetches the full resume representation by id.
func (c *Client) GetResumeDetails(id string) (*ResumeDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("resume id is required")
	}

	apiURL := fmt.Sprintf("%s/resumes/%s", c.APIURL, id)

	var details ResumeDetails
	if err := c.getJSON(apiURL, nil, &details); err != nil {
		return nil, err
	}

	return &details, nil
}

// Phone returns the preferred phone contact, falling back to the first
// phone entry. Cell phone values come back as objects with a formatted
// field.
func (d *ResumeDetails) Phone() string {
	var fallback string
	for _, contact := range d.Contact {
		if contact.Type.ID != "cell" && contact.Type.ID != "home" {
			continue
		}

		number := phoneValue(contact.Value)
		if number == "" {
			continue
		}
		if contact.Preferred {
			return number
		}
		if fallback == "" {
			fallback = number
		}
	}
	return fallback
}

// Text flattens the resume into one plain-text blob for AI scoring.
func (d *ResumeDetails) Text() string {
	var b strings.Builder

	write := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	write("Должность", d.Title)
	write("ФИО", d.FullName())
	write("Пол", d.Gender.Name)
	if d.Age > 0 {
		write("Возраст", fmt.Sprintf("%d", d.Age))
	}
	write("Город", d.Area.Name)
	write("О себе", d.About)
	if len(d.SkillSet) > 0 {
		write("Навыки", strings.Join(d.SkillSet, ", "))
	}

	for _, exp := range d.Experience {
		write("Опыт работы", fmt.Sprintf("%s, %s (%s - %s): %s",
			exp.Company, exp.Position, exp.Start, exp.End, exp.Description))
	}
	for _, lang := range d.Language {
		write("Язык", fmt.Sprintf("%s (%s)", lang.Name, lang.Level.Name))
	}
	for _, edu := range d.Education.Primary {
		write("Образование", fmt.Sprintf("%s, %s (%d)", edu.Name, edu.Organization, edu.Year))
	}
	for _, course := range d.Education.Additional {
		write("Курсы", fmt.Sprintf("%s, %s (%d)", course.Name, course.Organization, course.Year))
	}
	for _, cert := range d.Certificate {
		write("Сертификат", cert.Title)
	}

	return b.String()
}

func phoneValue(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case map[string]any:
		if formatted, ok := typed["formatted"].(string); ok {
			return formatted
		}
	}
	return ""
}
