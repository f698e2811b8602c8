package transcript

import "fmt"

// Role identifies the speaker of a turn.
type Role string

const (
	RoleSystem      Role = "system"
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// Turn is a single utterance in the interview.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the ordered history of an interview. The zero or one
// system turn sits at the head; the rest alternate interviewer/candidate
// starting with interviewer.
type Transcript struct {
	Turns []Turn `json:"turns"`
}

func New(turns ...Turn) *Transcript {
	return &Transcript{Turns: turns}
}

func (t *Transcript) Len() int {
	return len(t.Turns)
}

// Last returns the final turn, or a zero Turn when the transcript is empty.
func (t *Transcript) Last() Turn {
	if len(t.Turns) == 0 {
		return Turn{}
	}
	return t.Turns[len(t.Turns)-1]
}

// AppendInterviewer appends an interviewer turn.
func (t *Transcript) AppendInterviewer(text string) {
	t.Turns = append(t.Turns, Turn{Role: RoleInterviewer, Text: text})
}

// AppendCandidate appends a candidate turn.
func (t *Transcript) AppendCandidate(text string) {
	t.Turns = append(t.Turns, Turn{Role: RoleCandidate, Text: text})
}

// Questions returns the number of interviewer turns.
func (t *Transcript) Questions() int {
	return t.countRole(RoleInterviewer)
}

// Answers returns the number of candidate turns.
func (t *Transcript) Answers() int {
	return t.countRole(RoleCandidate)
}

func (t *Transcript) countRole(role Role) int {
	n := 0
	for _, turn := range t.Turns {
		if turn.Role == role {
			n++
		}
	}
	return n
}

// Validate checks the role ordering invariant: an optional leading system
// turn, an optional candidate-role seed turn carrying the vacancy and
// resume context, then strictly alternating interviewer/candidate turns
// started by the interviewer. No two same-role turns are ever adjacent.
func (t *Transcript) Validate() error {
	turns := t.Turns
	if len(turns) > 0 && turns[0].Role == RoleSystem {
		turns = turns[1:]
	}
	if len(turns) > 0 && turns[0].Role == RoleCandidate {
		turns = turns[1:]
	}

	expected := RoleInterviewer
	for i, turn := range turns {
		if turn.Role == RoleSystem {
			return fmt.Errorf("system turn at position %d: allowed only at head", i)
		}
		if turn.Role != expected {
			return fmt.Errorf("turn %d: expected role %s, got %s", i, expected, turn.Role)
		}
		if expected == RoleInterviewer {
			expected = RoleCandidate
		} else {
			expected = RoleInterviewer
		}
	}

	return nil
}
