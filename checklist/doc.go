// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package checklist holds the fill-in rules of the safety checklists.

Everything here is pure: no database, no HTTP, no clock. Handlers load a
checklist and a session, call into this package, and persist the result.

# Answer Store

AnswerStore keeps the draft answers of a session, one per question:

	var answers checklist.AnswerStore
	answers.Set(questionID, "Oui")

# Step Gates

A value is answered when it is non-blank after trimming. A step is complete
when all its questions are answered (an empty step never is). Step 0 is
always accessible; step i requires steps 0..i-1 to be validated.

	checklist.IsStepComplete(&cl.Steps[i], answers)
	checklist.IsStepAccessible(i, session.Validated)
	checklist.GlobalProgress(cl, answers) // 0-100

# Sessions

Session is a value: every transition returns the next session.

	s := checklist.NewSession(cl, "bloc-2", true)
	s, err = s.StartStep(cl, 0)
	s, err = s.Answer(cl, q.ID, "Oui")
	s, err = s.ValidateStep(cl)
	sub, err := s.PrepareSubmit(cl)

The states are filling_step, filling_question, ready_to_submit and
submitted. Only ValidateStep sets validated flags.

# Submission Checks

ValidateForSubmit rejects an empty answer list and any answer whose
question is not in the checklist, reporting all unknown ids at once. The
store runs UnknownQuestionIDs again inside the submission transaction.

# History

Aggregate merges stored submissions into a per-question list, newest first.
When the checklist has no history at all, the legacy current answers are
used instead, one untimed entry per question.

	h := checklist.BuildHistory(cl, subs, current)
*/
package checklist
