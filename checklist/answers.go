// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checklist

import (
	"encoding/json"

	"github.com/danielhkuo/safecheck/models"
)

// AnswerStore holds the draft answers of one fill-in session.
// Answers keep the order in which questions were first answered;
// overwriting an answer keeps its original position.
type AnswerStore struct {
	entries []models.Answer
}

// NewAnswerStore builds a store from an answer list. Later duplicates
// overwrite earlier ones.
func NewAnswerStore(answers []models.Answer) AnswerStore {
	var s AnswerStore
	for _, a := range answers {
		s.Set(a.QuestionID, a.Value)
	}
	return s
}

// Set upserts the answer for a question.
func (s *AnswerStore) Set(questionID int64, value string) {
	for i := range s.entries {
		if s.entries[i].QuestionID == questionID {
			s.entries[i].Value = value
			return
		}
	}
	s.entries = append(s.entries, models.Answer{QuestionID: questionID, Value: value})
}

// Get returns the answer for a question and whether one was ever set.
func (s AnswerStore) Get(questionID int64) (string, bool) {
	for _, a := range s.entries {
		if a.QuestionID == questionID {
			return a.Value, true
		}
	}
	return "", false
}

// Value returns the answer for a question, or "" when unanswered.
func (s AnswerStore) Value(questionID int64) string {
	v, _ := s.Get(questionID)
	return v
}

func (s AnswerStore) Len() int {
	return len(s.entries)
}

// List returns a copy of the answers in insertion order.
func (s AnswerStore) List() []models.Answer {
	out := make([]models.Answer, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *AnswerStore) Clear() {
	s.entries = nil
}

func (s AnswerStore) clone() AnswerStore {
	return AnswerStore{entries: s.List()}
}

func (s AnswerStore) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *AnswerStore) UnmarshalJSON(data []byte) error {
	var answers []models.Answer
	if err := json.Unmarshal(data, &answers); err != nil {
		return err
	}
	*s = NewAnswerStore(answers)
	return nil
}
