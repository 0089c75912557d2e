// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checklist

import "github.com/danielhkuo/safecheck/models"

// buildChecklist returns a checklist whose step i holds the question ids in
// steps[i].
func buildChecklist(steps ...[]int64) *models.Checklist {
	cl := &models.Checklist{ID: 7, Label: "Bloc"}
	for i, ids := range steps {
		step := models.Step{ID: int64(100 + i), Name: "Step", Position: i, Kind: models.StepStandard}
		for j, id := range ids {
			step.Questions = append(step.Questions, models.Question{
				ID:       id,
				StepID:   step.ID,
				Text:     "Q",
				Type:     models.QuestionBoolean,
				Position: j,
			})
		}
		cl.Steps = append(cl.Steps, step)
	}
	return cl
}

func answersOf(pairs map[int64]string) AnswerStore {
	var s AnswerStore
	for id, v := range pairs {
		s.Set(id, v)
	}
	return s
}
