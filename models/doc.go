// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON (and YAML seed files):

  - ChecklistInput: label, version, description, steps with questions
  - CreateSubmissionRequest: submitted_by, answers, decision, consequence
  - StartSessionRequest: submitted_by, auto_advance
  - SetAnswerRequest: question_id, value
  - SetDecisionRequest: decision, consequence

# Response Types

Types for JSON responses:

  - StartSessionResponse: session_token
  - SubmitSessionResponse: submission, message
  - ChecklistHistory: per-step and per-question answer history
  - ErrorResponse: error, message, code and the offending ids or steps

# Domain Types

Internal data structures:

  - Checklist: ordered steps, each with ordered questions
  - Step: standard or decision step
  - Question: typed question with optional choice list
  - Submission: timestamped answer set with optional decision

# Constants

Question types:

	QuestionBoolean          = "Boolean"
	QuestionBooleanNA        = "BooleanNA"
	QuestionFreeText         = "FreeText"
	QuestionSingleChoiceList = "SingleChoiceList"

Answers and decisions:

	AnswerYes           = "Oui"
	AnswerNo            = "Non"
	AnswerNotApplicable = "N/A"
	DecisionGo          = "Oui"
	DecisionNoGo        = "Non"
	ConsequenceDelay    = "Retard"
	ConsequenceCancel   = "Annulation"
*/
package models
