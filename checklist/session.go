// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checklist

import (
	"github.com/danielhkuo/safecheck/models"
)

// Mode is what the session is currently showing.
type Mode string

const (
	ModeDashboard Mode = "dashboard"
	ModeQuestion  Mode = "question"
)

// State is the position of a session in the fill-in state machine.
type State string

const (
	StateFillingStep     State = "filling_step"
	StateFillingQuestion State = "filling_question"
	StateReadyToSubmit   State = "ready_to_submit"
	StateSubmitted       State = "submitted"
)

// Session is the complete state of one fill-in session. Transitions never
// mutate the receiver: each returns the next session, or the unchanged
// session and an error when the transition is not allowed.
type Session struct {
	ChecklistID   int64       `json:"checklist_id"`
	SubmittedBy   string      `json:"submitted_by"`
	Answers       AnswerStore `json:"answers"`
	StepIndex     int         `json:"step_index"`
	QuestionIndex int         `json:"question_index"`
	Validated     []bool      `json:"validated"`
	Decision      string      `json:"decision,omitempty"`
	Consequence   string      `json:"consequence,omitempty"`
	Mode          Mode        `json:"mode"`
	AutoAdvance   bool        `json:"auto_advance"`
	SubmissionID  int64       `json:"submission_id,omitempty"`
}

// NewSession starts a session on the first step of the checklist.
func NewSession(cl *models.Checklist, submittedBy string, autoAdvance bool) Session {
	s := Session{
		SubmittedBy: submittedBy,
		Mode:        ModeDashboard,
		AutoAdvance: autoAdvance,
	}
	if cl != nil {
		s.ChecklistID = cl.ID
		s.Validated = make([]bool, len(cl.Steps))
	}
	return s
}

func (s Session) clone() Session {
	n := s
	n.Answers = s.Answers.clone()
	n.Validated = append([]bool(nil), s.Validated...)
	return n
}

// Fit adapts a restored session to the current shape of the checklist:
// the validated flags follow the step count, a flag only survives on a
// step that is still complete, and indices are clamped.
func (s Session) Fit(cl *models.Checklist) Session {
	n := s.clone()
	steps := 0
	if cl != nil {
		steps = len(cl.Steps)
	}
	flags := make([]bool, steps)
	for i := range flags {
		flags[i] = i < len(n.Validated) && n.Validated[i] && IsStepComplete(&cl.Steps[i], n.Answers)
	}
	n.Validated = flags
	if n.StepIndex >= steps {
		n.StepIndex = max(steps-1, 0)
		n.QuestionIndex = 0
	}
	if step := stepAt(cl, n.StepIndex); step != nil && n.QuestionIndex >= len(step.Questions) {
		n.QuestionIndex = max(len(step.Questions)-1, 0)
	}
	if n.Mode != ModeQuestion {
		n.Mode = ModeDashboard
	}
	return n
}

func (s Session) closed() bool {
	return s.SubmissionID != 0
}

func (s Session) allValidated() bool {
	if len(s.Validated) == 0 {
		return false
	}
	for _, v := range s.Validated {
		if !v {
			return false
		}
	}
	return true
}

// State derives the state machine position from the session fields.
func (s Session) State() State {
	switch {
	case s.closed():
		return StateSubmitted
	case s.Mode == ModeQuestion:
		return StateFillingQuestion
	case s.allValidated():
		return StateReadyToSubmit
	default:
		return StateFillingStep
	}
}

// StartStep opens a step in question mode, resuming at its first
// unanswered question.
func (s Session) StartStep(cl *models.Checklist, stepIndex int) (Session, error) {
	if s.closed() {
		return s, ErrSessionClosed
	}
	step := stepAt(cl, stepIndex)
	if step == nil {
		return s, ErrStepNotFound
	}
	if !IsStepAccessible(stepIndex, s.Validated) {
		return s, ErrStepLocked
	}
	n := s.clone()
	n.StepIndex = stepIndex
	n.Mode = ModeQuestion
	n.QuestionIndex, _ = FirstUnansweredQuestion(step, n.Answers)
	return n, nil
}

// Answer records a draft answer. Clearing an answer of a validated step
// withdraws its validation. When the answered question is the one on
// screen, auto-advance may move to the next question of the step.
func (s Session) Answer(cl *models.Checklist, questionID int64, value string) (Session, error) {
	if s.closed() {
		return s, ErrSessionClosed
	}
	n := s.clone()
	n.Answers.Set(questionID, value)
	if i := stepOf(cl, questionID); i >= 0 && i < len(n.Validated) && n.Validated[i] && !IsStepComplete(&cl.Steps[i], n.Answers) {
		n.Validated[i] = false
	}
	if n.Mode != ModeQuestion {
		return n, nil
	}
	step := stepAt(cl, n.StepIndex)
	if step == nil || n.QuestionIndex < 0 || n.QuestionIndex >= len(step.Questions) {
		return n, nil
	}
	if step.Questions[n.QuestionIndex].ID == questionID {
		n.QuestionIndex = AdvanceAfterAnswer(step, n.QuestionIndex, n.Answers, n.AutoAdvance)
	}
	return n, nil
}

// Next moves to the next question of the current step, stopping at the last.
func (s Session) Next(cl *models.Checklist) Session {
	step := stepAt(cl, s.StepIndex)
	if s.Mode != ModeQuestion || step == nil || s.QuestionIndex >= len(step.Questions)-1 {
		return s
	}
	n := s.clone()
	n.QuestionIndex++
	return n
}

// Prev moves to the previous question of the current step.
func (s Session) Prev() Session {
	if s.Mode != ModeQuestion || s.QuestionIndex <= 0 {
		return s
	}
	n := s.clone()
	n.QuestionIndex--
	return n
}

// BackToDashboard leaves question mode without requiring completion.
func (s Session) BackToDashboard() Session {
	n := s.clone()
	n.Mode = ModeDashboard
	return n
}

// ValidateStep marks the current step validated and moves to the next one.
// Validating the last step leaves the session ready to submit once every
// flag is set.
func (s Session) ValidateStep(cl *models.Checklist) (Session, error) {
	if s.closed() {
		return s, ErrSessionClosed
	}
	step := stepAt(cl, s.StepIndex)
	if step == nil {
		return s, ErrStepNotFound
	}
	if !IsStepComplete(step, s.Answers) {
		return s, ErrStepIncomplete
	}
	n := s.Fit(cl)
	n.Validated[n.StepIndex] = true
	n.Mode = ModeDashboard
	if n.StepIndex < len(cl.Steps)-1 {
		n.StepIndex++
		n.QuestionIndex = 0
	}
	return n, nil
}

// SetDecision records the final decision. Choosing GO clears any
// consequence.
func (s Session) SetDecision(decision, consequence string) (Session, error) {
	if s.closed() {
		return s, ErrSessionClosed
	}
	consequence, err := CheckDecision(decision, consequence)
	if err != nil {
		return s, err
	}
	n := s.clone()
	n.Decision = decision
	n.Consequence = consequence
	return n, nil
}

// CheckDecision validates a decision and its consequence, both optional,
// and returns the consequence to store: GO never keeps one.
func CheckDecision(decision, consequence string) (string, error) {
	switch decision {
	case "", models.DecisionGo, models.DecisionNoGo:
	default:
		return "", ErrInvalidDecision
	}
	switch consequence {
	case "", models.ConsequenceDelay, models.ConsequenceCancel:
	default:
		return "", ErrInvalidDecision
	}
	if decision == models.DecisionGo {
		return "", nil
	}
	return consequence, nil
}

// DecisionComplete reports whether the decision needs no further input.
func (s Session) DecisionComplete() bool {
	switch s.Decision {
	case models.DecisionGo:
		return true
	case models.DecisionNoGo:
		return s.Consequence != ""
	}
	return false
}

// PrepareSubmit runs every client-side check and builds the submission to
// persist. The session itself is not changed.
func (s Session) PrepareSubmit(cl *models.Checklist) (models.Submission, error) {
	if s.closed() {
		return models.Submission{}, ErrSessionClosed
	}
	answers, err := ValidateForSubmit(cl, s.Answers.List())
	if err != nil {
		return models.Submission{}, err
	}

	var blocking []int
	for i := range cl.Steps {
		validated := i < len(s.Validated) && s.Validated[i]
		if !validated || !IsStepComplete(&cl.Steps[i], s.Answers) {
			blocking = append(blocking, i)
		}
	}
	if len(blocking) > 0 || len(cl.Steps) == 0 {
		return models.Submission{}, &IncompleteStepsError{Steps: blocking}
	}

	decision, consequence := s.Decision, s.Consequence
	if !cl.HasDecisionStep() {
		decision, consequence = models.DecisionGo, ""
	}
	if decision == "" {
		return models.Submission{}, ErrDecisionRequired
	}

	return models.Submission{
		ChecklistID: cl.ID,
		SubmittedBy: s.SubmittedBy,
		Answers:     answers,
		Decision:    decision,
		Consequence: consequence,
	}, nil
}

// MarkSubmitted closes the session after a successful persist and drops
// the draft answers. The closed session is what stays stored under the
// token, so every later transition fails with ErrSessionClosed.
func (s Session) MarkSubmitted(submissionID int64) Session {
	n := s.clone()
	n.SubmissionID = submissionID
	n.Answers.Clear()
	n.Mode = ModeDashboard
	return n
}

// StepStatus is the gate view of one step.
type StepStatus struct {
	Index      int             `json:"index"`
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Kind       models.StepKind `json:"kind"`
	Answered   int             `json:"answered"`
	Total      int             `json:"total"`
	Progress   float64         `json:"progress"`
	Complete   bool            `json:"complete"`
	Validated  bool            `json:"validated"`
	Accessible bool            `json:"accessible"`
	LockedBy   []int           `json:"locked_by,omitempty"`
}

// SessionView bundles a session with every decision the presentation layer
// needs to render it.
type SessionView struct {
	Session          Session          `json:"session"`
	State            State            `json:"state"`
	Progress         float64          `json:"progress"`
	Steps            []StepStatus     `json:"steps"`
	CurrentQuestion  *models.Question `json:"current_question,omitempty"`
	CanGoNext        bool             `json:"can_go_next"`
	DecisionComplete bool             `json:"decision_complete"`
	HasDecisionStep  bool             `json:"has_decision_step"`
}

// View computes the gate view of the session against the checklist.
func (s Session) View(cl *models.Checklist) SessionView {
	v := SessionView{
		Session:          s,
		State:            s.State(),
		Progress:         GlobalProgress(cl, s.Answers),
		Steps:            []StepStatus{},
		DecisionComplete: s.DecisionComplete(),
	}
	if cl == nil {
		return v
	}
	v.HasDecisionStep = cl.HasDecisionStep()
	for i := range cl.Steps {
		step := &cl.Steps[i]
		v.Steps = append(v.Steps, StepStatus{
			Index:      i,
			ID:         step.ID,
			Name:       step.Name,
			Kind:       step.Kind,
			Answered:   AnsweredCount(step, s.Answers),
			Total:      len(step.Questions),
			Progress:   StepProgress(step, s.Answers),
			Complete:   IsStepComplete(step, s.Answers),
			Validated:  i < len(s.Validated) && s.Validated[i],
			Accessible: IsStepAccessible(i, s.Validated),
			LockedBy:   LockedBy(i, s.Validated),
		})
	}
	if s.Mode == ModeQuestion {
		if step := stepAt(cl, s.StepIndex); step != nil && s.QuestionIndex >= 0 && s.QuestionIndex < len(step.Questions) {
			q := step.Questions[s.QuestionIndex]
			v.CurrentQuestion = &q
			v.CanGoNext = IsAnswered(s.Answers.Value(q.ID)) && s.QuestionIndex < len(step.Questions)-1
		}
	}
	return v
}
