package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// SubmittedAnswer is one answer in a quiz submission. The wire shape of the
// answer value depends on the question type: a single option id for
// multiple-choice, the literal "true"/"false" string for true-false, and a
// list of option ids for multiple-answer. UnmarshalJSON sorts that out so the
// grading switch can dispatch on the question type alone.
type SubmittedAnswer struct {
	QuestionID uint
	Selected   []uint // option ids (multiple-choice, multiple-answer)
	Value      string // literal answer (true-false)
}

func (a *SubmittedAnswer) UnmarshalJSON(data []byte) error {
	var raw struct {
		QuestionID uint            `json:"questionId"`
		Answer     json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.QuestionID = raw.QuestionID
	a.Selected = nil
	a.Value = ""

	if len(raw.Answer) == 0 || string(raw.Answer) == "null" {
		return nil
	}

	var ids []uint
	if err := json.Unmarshal(raw.Answer, &ids); err == nil {
		a.Selected = ids
		return nil
	}
	var id uint
	if err := json.Unmarshal(raw.Answer, &id); err == nil {
		a.Selected = []uint{id}
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Answer, &s); err == nil {
		a.Value = s
		return nil
	}
	return fmt.Errorf("unsupported answer shape for question %d", raw.QuestionID)
}

// encode renders the submitted value back to JSON for the attempt ledger.
func (a SubmittedAnswer) encode() string {
	if a.Value != "" {
		b, _ := json.Marshal(a.Value)
		return string(b)
	}
	if a.Selected != nil {
		b, _ := json.Marshal(a.Selected)
		return string(b)
	}
	return "null"
}

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	Score       int            `json:"score"`
	TotalPoints int            `json:"totalPoints"`
	Percentage  int            `json:"percentage"`
	Passed      bool           `json:"passed"`
	Answers     []GradedAnswer `json:"gradedAnswers"`
}

// Grade scores a submission against the quiz's answer keys. There is no
// partial credit: each question earns its full point value or zero. A question
// with no matching submitted answer is incorrect with zero points.
func (q *Quiz) Grade(submitted []SubmittedAnswer) GradeResult {
	byQuestion := make(map[uint]SubmittedAnswer, len(submitted))
	for _, sub := range submitted {
		byQuestion[sub.QuestionID] = sub
	}

	score := 0
	answers := make([]GradedAnswer, 0, len(q.Questions))
	for _, question := range q.Questions {
		sub, ok := byQuestion[question.ID]
		if !ok {
			answers = append(answers, GradedAnswer{
				QuestionID:     question.ID,
				SelectedAnswer: "null",
			})
			continue
		}

		correct := question.Accepts(sub)
		points := 0
		if correct {
			points = question.Points
		}
		score += points

		answers = append(answers, GradedAnswer{
			QuestionID:     question.ID,
			SelectedAnswer: sub.encode(),
			IsCorrect:      correct,
			PointsEarned:   points,
		})
	}

	percentage := 0
	if q.TotalPoints > 0 {
		percentage = int(math.Round(float64(score) / float64(q.TotalPoints) * 100))
	}

	return GradeResult{
		Score:       score,
		TotalPoints: q.TotalPoints,
		Percentage:  percentage,
		Passed:      percentage >= q.PassingScore,
		Answers:     answers,
	}
}

// Accepts reports whether the submitted answer matches the answer key.
func (q *Question) Accepts(sub SubmittedAnswer) bool {
	switch q.Type {
	case QuestionMultipleChoice:
		if len(sub.Selected) != 1 {
			return false
		}
		for _, opt := range q.Options {
			if opt.IsCorrect {
				return opt.ID == sub.Selected[0]
			}
		}
		return false

	case QuestionTrueFalse:
		return sub.Value != "" && sub.Value == q.CorrectAnswer

	case QuestionMultipleAnswer:
		correct := q.CorrectOptionIDs()
		if len(correct) == 0 || len(sub.Selected) != len(correct) {
			return false
		}
		chosen := append([]uint(nil), sub.Selected...)
		sortUints(chosen)
		for i := range correct {
			if chosen[i] != correct[i] {
				return false
			}
		}
		return true

	default:
		return false
	}
}

func sortUints(ids []uint) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
