// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checklist

import (
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/safecheck/models"
)

// Count labels for the history header
const (
	LabelSubmissions = "submission(s)"
	LabelAnswers     = "answer(s)"
)

// Aggregation maps each question id of a checklist to its historical
// answers, most recent first.
type Aggregation map[int64][]models.AnswerEntry

// OrderSubmissions returns the submissions newest first; equal timestamps
// keep their order. The order returned by the store is not relied upon.
func OrderSubmissions(subs []models.Submission) []models.Submission {
	out := append([]models.Submission{}, subs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// SortSubmissions orders submissions newest first and drops those without
// any answer.
func SortSubmissions(subs []models.Submission) []models.Submission {
	out := make([]models.Submission, 0, len(subs))
	for _, s := range subs {
		if len(s.Answers) > 0 {
			out = append(out, s)
		}
	}
	return OrderSubmissions(out)
}

// Aggregate builds the per-question answer history of a checklist.
//
// Every question gets an entry, even without history. Answers to questions
// no longer in the checklist are dropped. When no question received any
// historical answer at all, current (when non-nil) supplies one untimed
// entry per question with a non-blank value.
func Aggregate(cl *models.Checklist, subs []models.Submission, current []models.Answer) Aggregation {
	agg := make(Aggregation)
	if cl == nil {
		return agg
	}
	for _, s := range cl.Steps {
		for _, q := range s.Questions {
			agg[q.ID] = []models.AnswerEntry{}
		}
	}

	found := false
	for _, sub := range subs {
		for _, a := range sub.Answers {
			entries, ok := agg[a.QuestionID]
			if !ok {
				continue
			}
			entry := models.AnswerEntry{
				SubmissionID: ptr(sub.ID),
				Value:        a.Value,
				SubmittedBy:  sub.SubmittedBy,
			}
			if !sub.SubmittedAt.IsZero() {
				entry.SubmittedAt = ptr(sub.SubmittedAt)
			}
			agg[a.QuestionID] = append(entries, entry)
			found = true
		}
	}

	for id := range agg {
		sortEntries(agg[id])
	}

	if !found && current != nil {
		for _, a := range current {
			entries, ok := agg[a.QuestionID]
			if !ok {
				continue
			}
			value := strings.TrimSpace(a.Value)
			if value == "" {
				continue
			}
			agg[a.QuestionID] = append(entries, models.AnswerEntry{Value: value})
		}
	}
	return agg
}

// sortEntries orders timestamped entries newest first; untimed entries
// follow in insertion order.
func sortEntries(entries []models.AnswerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].SubmittedAt, entries[j].SubmittedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// LatestAnswer picks the most recent answer from an aggregated list. With
// no timestamps at all, the last entry in insertion order wins.
func LatestAnswer(entries []models.AnswerEntry) (models.AnswerEntry, bool) {
	if len(entries) == 0 {
		return models.AnswerEntry{}, false
	}
	for _, e := range entries {
		if e.SubmittedAt != nil {
			return entries[0], true
		}
	}
	return entries[len(entries)-1], true
}

// DistinctSubmissionCount counts the distinct submissions behind an
// aggregation. Without any real submission but with at least one fallback
// entry the count is 1, standing for the current draft.
func DistinctSubmissionCount(agg Aggregation) int {
	ids := make(map[int64]bool)
	fallback := false
	for _, entries := range agg {
		for _, e := range entries {
			if e.SubmissionID != nil {
				ids[*e.SubmissionID] = true
			} else {
				fallback = true
			}
		}
	}
	if len(ids) > 0 {
		return len(ids)
	}
	if fallback {
		return 1
	}
	return 0
}

// HasRealSubmissions reports whether any entry comes from a stored submission.
func HasRealSubmissions(agg Aggregation) bool {
	for _, entries := range agg {
		for _, e := range entries {
			if e.SubmissionID != nil {
				return true
			}
		}
	}
	return false
}

// NormalizeAnswer canonicalises yes/no/n.a. spellings for display.
func NormalizeAnswer(v string) string {
	x := strings.TrimSpace(v)
	switch strings.ToLower(x) {
	case "":
		return ""
	case "n/a", "na":
		return models.AnswerNotApplicable
	case "oui":
		return models.AnswerYes
	case "non":
		return models.AnswerNo
	}
	return x
}

// BuildHistory assembles the display view of a checklist's answer history.
func BuildHistory(cl *models.Checklist, subs []models.Submission, current []models.Answer) models.ChecklistHistory {
	h := models.ChecklistHistory{Steps: []models.StepHistory{}, Rows: []models.HistoryRow{}}
	if cl == nil {
		return h
	}
	agg := Aggregate(cl, SortSubmissions(subs), current)

	h.ID = cl.ID
	h.Label = cl.Label
	h.Version = cl.Version
	h.Description = cl.Description
	h.SubmissionCount = DistinctSubmissionCount(agg)
	h.HasRealSubmissions = HasRealSubmissions(agg)
	h.CountLabel = LabelAnswers
	if h.HasRealSubmissions {
		h.CountLabel = LabelSubmissions
	}

	for _, s := range cl.Steps {
		sh := models.StepHistory{
			ID:        s.ID,
			Name:      s.Name,
			Position:  s.Position,
			Kind:      s.Kind,
			Questions: make([]models.QuestionHistory, 0, len(s.Questions)),
		}
		for _, q := range s.Questions {
			entries := agg[q.ID]
			qh := models.QuestionHistory{Question: q, Answers: entries}
			if latest, ok := LatestAnswer(entries); ok {
				qh.Latest = &latest
			}
			sh.Questions = append(sh.Questions, qh)
			for _, e := range entries {
				row := models.HistoryRow{AnswerEntry: e, StepName: s.Name, QuestionText: q.Text}
				row.Value = NormalizeAnswer(e.Value)
				h.Rows = append(h.Rows, row)
			}
		}
		h.Steps = append(h.Steps, sh)
	}

	sort.SliceStable(h.Rows, func(i, j int) bool {
		a, b := h.Rows[i].SubmittedAt, h.Rows[j].SubmittedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return h
}

// LabelAges fills SubmittedAgo ("3 hours ago") on every timed entry of a
// history view, relative to now.
func LabelAges(h *models.ChecklistHistory, now time.Time) {
	label := func(e *models.AnswerEntry) {
		if e.SubmittedAt != nil {
			e.SubmittedAgo = humanize.RelTime(*e.SubmittedAt, now, "ago", "from now")
		}
	}
	for i := range h.Steps {
		for j := range h.Steps[i].Questions {
			qh := &h.Steps[i].Questions[j]
			for k := range qh.Answers {
				label(&qh.Answers[k])
			}
			if qh.Latest != nil {
				label(qh.Latest)
			}
		}
	}
	for i := range h.Rows {
		label(&h.Rows[i].AnswerEntry)
	}
}

func ptr[T any](v T) *T {
	return &v
}
