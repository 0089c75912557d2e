// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/testutil"
)

func TestListQuestions(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewQuestionHandler(db, cfg)

	cl := testutil.CreateTestChecklist(t, db, testutil.SampleChecklist())

	t.Run("by checklist", func(t *testing.T) {
		id := strconv.FormatInt(cl.ID, 10)
		req := httptest.NewRequest("GET", "/checklists/"+id+"/questions", nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()

		handler.ListByChecklist(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp []models.Question
		testutil.AssertJSON(t, w, &resp)
		if len(resp) != 4 {
			t.Fatalf("Expected 4 questions, got %d", len(resp))
		}
		if resp[0].Text != "Identité du patient confirmée" {
			t.Errorf("Expected questions in checklist order, got '%s' first", resp[0].Text)
		}
	})

	t.Run("by step", func(t *testing.T) {
		id := strconv.FormatInt(cl.Steps[1].ID, 10)
		req := httptest.NewRequest("GET", "/steps/"+id+"/questions", nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()

		handler.ListByStep(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp []models.Question
		testutil.AssertJSON(t, w, &resp)
		if len(resp) != 1 {
			t.Fatalf("Expected 1 question, got %d", len(resp))
		}
		if len(resp[0].Options) != 3 {
			t.Errorf("Expected 3 options, got %d", len(resp[0].Options))
		}
	})

	t.Run("missing checklist", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/checklists/9999/questions", nil)
		req.SetPathValue("id", "9999")
		w := httptest.NewRecorder()

		handler.ListByChecklist(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("missing step", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/steps/9999/questions", nil)
		req.SetPathValue("id", "9999")
		w := httptest.NewRecorder()

		handler.ListByStep(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestCreateQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewQuestionHandler(db, cfg)

	cl := testutil.CreateTestChecklist(t, db, testutil.SampleChecklist())
	stepID := strconv.FormatInt(cl.Steps[0].ID, 10)

	tests := []struct {
		name           string
		stepID         string
		requestBody    any
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.Question)
	}{
		{
			name:           "boolean question",
			stepID:         stepID,
			requestBody:    models.QuestionInput{Text: "Allergies vérifiées", Type: "boolean"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.Question) {
				if resp.Type != models.QuestionBoolean {
					t.Errorf("Expected type Boolean, got %s", resp.Type)
				}
				if resp.Position != 2 {
					t.Errorf("Expected question appended at position 2, got %d", resp.Position)
				}
				if !resp.Required {
					t.Error("Expected question to be required by default")
				}
			},
		},
		{
			name:   "list question with legacy type name",
			stepID: stepID,
			requestBody: models.QuestionInput{Text: "Matériel", Type: "Liste", Options: []models.OptionInput{
				{Value: "Complet"}, {Value: " "}, {Value: "Incomplet"},
			}},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.Question) {
				if resp.Type != models.QuestionSingleChoiceList {
					t.Errorf("Expected type SingleChoiceList, got %s", resp.Type)
				}
				if len(resp.Options) != 2 {
					t.Errorf("Expected blank option to be skipped, got %d options", len(resp.Options))
				}
			},
		},
		{
			name:           "missing text",
			stepID:         stepID,
			requestBody:    models.QuestionInput{Type: "Boolean"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing step",
			stepID:         "9999",
			requestBody:    models.QuestionInput{Text: "Q", Type: "Boolean"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/steps/"+tt.stepID+"/questions", tt.requestBody, nil)
			req.SetPathValue("id", tt.stepID)
			w := httptest.NewRecorder()

			handler.CreateQuestion(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.Question
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestGetUpdateDeleteQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewQuestionHandler(db, cfg)

	cl := testutil.CreateTestChecklist(t, db, testutil.SampleChecklist())
	q := cl.Steps[0].Questions[1]
	id := strconv.FormatInt(q.ID, 10)

	// Get
	req := httptest.NewRequest("GET", "/questions/"+id, nil)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.GetQuestion(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var got models.Question
	testutil.AssertJSON(t, w, &got)
	if got.Text != q.Text {
		t.Errorf("Expected text '%s', got '%s'", q.Text, got.Text)
	}

	// Update
	req = testutil.MakeRequest("PUT", "/questions/"+id, models.QuestionInput{Text: "Site opératoire marqué et vérifié", Type: "BooleanNA", Comment: "Si applicable"}, nil)
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	handler.UpdateQuestion(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var updated models.Question
	testutil.AssertJSON(t, w, &updated)
	if updated.Comment != "Si applicable" || updated.Position != q.Position {
		t.Errorf("Unexpected updated question: %+v", updated)
	}

	// Delete
	req = httptest.NewRequest("DELETE", "/questions/"+id, nil)
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	handler.DeleteQuestion(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	// Gone
	req = httptest.NewRequest("GET", "/questions/"+id, nil)
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	handler.GetQuestion(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
