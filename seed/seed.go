// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/store"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// File is the on-disk layout of a seed file.
type File struct {
	Checklists []models.ChecklistInput `yaml:"checklists"`
}

// Repo is the part of the checklist store that seeding needs.
type Repo interface {
	FindByLabel(ctx context.Context, label string) (*models.Checklist, error)
	Create(ctx context.Context, in models.ChecklistInput) (*models.Checklist, error)
}

// Result lists what Apply did, by checklist label.
type Result struct {
	Created []string
	Skipped []string
}

// Load decodes a seed file. Unknown keys are rejected.
func Load(r io.Reader) ([]models.ChecklistInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.ChecklistInput{}, nil
		}
		return nil, fmt.Errorf("decoding seed: %w", err)
	}
	if f.Checklists == nil {
		f.Checklists = []models.ChecklistInput{}
	}
	return f.Checklists, nil
}

// LoadFile decodes the seed file at path.
func LoadFile(path string) ([]models.ChecklistInput, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer fh.Close()

	return Load(fh)
}

// Defaults returns the built-in operating room checklists.
func Defaults() ([]models.ChecklistInput, error) {
	return Load(bytes.NewReader(defaultsYAML))
}

// Apply creates every checklist whose label is not stored yet. Existing
// checklists are left untouched.
func Apply(ctx context.Context, repo Repo, checklists []models.ChecklistInput) (Result, error) {
	res := Result{Created: []string{}, Skipped: []string{}}
	for _, in := range checklists {
		_, err := repo.FindByLabel(ctx, in.Label)
		if err == nil {
			res.Skipped = append(res.Skipped, in.Label)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, err
		}

		cl, err := repo.Create(ctx, in)
		if err != nil {
			return res, fmt.Errorf("seeding %q: %w", in.Label, err)
		}
		slog.Info("checklist seeded", "checklist_id", cl.ID, "label", cl.Label)
		res.Created = append(res.Created, in.Label)
	}
	return res, nil
}

// Run applies checklists in a single transaction, so a failing entry
// leaves the database as it was.
func Run(ctx context.Context, uow db.UnitOfWork, checklists []models.ChecklistInput) (Result, error) {
	var res Result
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		res, err = Apply(ctx, store.NewChecklistRepo(tx), checklists)
		return err
	})
	return res, err
}

// ToInput converts a stored checklist back to its input form, without ids.
func ToInput(cl *models.Checklist) models.ChecklistInput {
	active := cl.Active
	in := models.ChecklistInput{
		Label:       cl.Label,
		Version:     cl.Version,
		Description: cl.Description,
		Active:      &active,
		Steps:       make([]models.StepInput, 0, len(cl.Steps)),
	}
	for _, s := range cl.Steps {
		step := models.StepInput{
			Name:      s.Name,
			Questions: make([]models.QuestionInput, 0, len(s.Questions)),
		}
		if s.Kind == models.StepDecision {
			step.Kind = string(s.Kind)
		}
		for _, q := range s.Questions {
			required := q.Required
			qin := models.QuestionInput{
				Text:     q.Text,
				Type:     string(q.Type),
				Required: &required,
				Comment:  q.Comment,
			}
			for _, o := range q.Options {
				qin.Options = append(qin.Options, models.OptionInput{Value: o.Value})
			}
			step.Questions = append(step.Questions, qin)
		}
		in.Steps = append(in.Steps, step)
	}
	return in
}

// Export writes checklists as a seed file that Load reads back.
func Export(w io.Writer, checklists ...*models.Checklist) error {
	f := File{Checklists: make([]models.ChecklistInput, 0, len(checklists))}
	for _, cl := range checklists {
		f.Checklists = append(f.Checklists, ToInput(cl))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("encoding seed: %w", err)
	}
	return enc.Close()
}
