// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/safecheck/cliparse"
	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/store"
)

// SetupTestDB opens a private in-memory SQLite database with the full
// schema. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, db.MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  db.MemoryPath,
		DatabaseType: db.DialectSQLite,
		AutoAdvance:  true,
	}
}

// SampleChecklist returns a three-step checklist input: two standard steps
// and a final decision step.
func SampleChecklist() models.ChecklistInput {
	return models.ChecklistInput{
		Label:       "Bloc opératoire",
		Version:     "2018",
		Description: "Sécurité du patient au bloc",
		Steps: []models.StepInput{
			{
				Name: "Avant induction anesthésique",
				Questions: []models.QuestionInput{
					{Text: "Identité du patient confirmée", Type: "Boolean"},
					{Text: "Site opératoire marqué", Type: "BooleanNA"},
				},
			},
			{
				Name: "Avant intervention chirurgicale",
				Questions: []models.QuestionInput{
					{Text: "Antibioprophylaxie effectuée", Type: "SingleChoiceList", Options: []models.OptionInput{
						{Value: "Oui"}, {Value: "Non"}, {Value: "Non recommandée"},
					}},
				},
			},
			{
				Name: "Décision finale",
				Kind: string(models.StepDecision),
				Questions: []models.QuestionInput{
					{Text: "Observations", Type: "FreeText"},
				},
			},
		},
	}
}

// CreateTestChecklist stores a checklist and returns it with ids assigned.
func CreateTestChecklist(t *testing.T, conn *sql.DB, in models.ChecklistInput) *models.Checklist {
	t.Helper()

	var cl *models.Checklist
	err := db.NewTxRunner(conn).WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		cl, err = store.NewChecklistRepo(tx).Create(ctx, in)
		return err
	})
	if err != nil {
		t.Fatalf("Failed to create test checklist: %v", err)
	}

	return cl
}

// SubmitTestAnswers stores a submission for a checklist at the given time.
func SubmitTestAnswers(t *testing.T, conn *sql.DB, checklistID int64, at time.Time, answers []models.Answer) *models.Submission {
	t.Helper()

	var sub *models.Submission
	err := db.NewTxRunner(conn).WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		sub, err = store.NewSubmissionRepo(tx).Create(ctx, models.Submission{
			ChecklistID: checklistID,
			SubmittedBy: "TestUser",
			SubmittedAt: at,
			Answers:     answers,
			Decision:    models.DecisionGo,
		})
		return err
	})
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}

	return sub
}

// AllQuestionIDs returns the question ids of a checklist in order.
func AllQuestionIDs(cl *models.Checklist) []int64 {
	var ids []int64
	for _, s := range cl.Steps {
		for _, q := range s.Questions {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
