package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/sentinel"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

type CreateFormRequest struct {
	ProcessID id.ProcessID
	Name      string
	Type      models.FormType
}

// UpdateFormRequest replaces the editable fields of a form. A nil
// EmailQuestionID clears the recipient email link.
type UpdateFormRequest struct {
	Name            string
	Type            models.FormType
	EmailQuestionID *id.QuestionID
}

func (s *Service) CreateForm(ctx context.Context, req CreateFormRequest) (*models.Form, error) {
	start := time.Now()
	form, err := models.NewForm(id.NewFormID(), req.ProcessID, req.Name, req.Type, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(st Store) error {
		if err := checkTypeAvailable(ctx, st, form); err != nil {
			return err
		}
		if err := st.CreateForm(ctx, form); err != nil {
			return translate(err, "form")
		}
		return nil
	})
	s.observe("create_form", err, start)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionFormCreated,
		"form_id", form.ID,
		"process_id", form.ProcessID,
		"type", form.Type,
	)
	return form, nil
}

// checkTypeAvailable rejects a second candidate or ministerial form in one
// process.
func checkTypeAvailable(ctx context.Context, st Store, form *models.Form) error {
	if !form.Type.IsSingleton() {
		return nil
	}
	forms, err := st.ListFormsByProcess(ctx, form.ProcessID)
	if err != nil {
		return translate(err, "form")
	}
	for _, other := range forms {
		if other.ID != form.ID && other.Type == form.Type {
			return dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("process already has a %s form", form.Type))
		}
	}
	return nil
}

func (s *Service) UpdateForm(ctx context.Context, formID id.FormID, req UpdateFormRequest) (*models.Form, error) {
	var updated *models.Form
	err := s.mutate(ctx, "update_form", formID, func(ctx context.Context, st Store, form *models.Form) error {
		now := requestcontext.Now(ctx)
		if err := form.Rename(req.Name, now); err != nil {
			return asValidation(err)
		}
		if !req.Type.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "type must be one of candidate, ministerial, normal")
		}
		form.Type = req.Type
		if err := checkTypeAvailable(ctx, st, form); err != nil {
			return err
		}
		if err := linkEmailQuestion(ctx, st, form, req.EmailQuestionID); err != nil {
			return err
		}
		if err := st.UpdateForm(ctx, form); err != nil {
			return translate(err, "form")
		}
		updated = form
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionFormUpdated, "form_id", formID)
	return updated, nil
}

// linkEmailQuestion sets the recipient email question after checking that it
// is an EMAIL question of the same form.
func linkEmailQuestion(ctx context.Context, st Store, form *models.Form, qid *id.QuestionID) error {
	if qid == nil {
		form.EmailQuestionID = nil
		return nil
	}
	if err := form.CanLinkEmail(); err != nil {
		return asValidation(err)
	}
	q, err := st.FindQuestion(ctx, *qid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, "email_question_id references an unknown question")
		}
		return translate(err, "question")
	}
	if q.FormID != form.ID {
		return dErrors.New(dErrors.CodeValidation, "email_question_id must reference a question of this form")
	}
	if q.Type != models.QuestionEmail {
		return dErrors.New(dErrors.CodeValidation, "email_question_id must reference an EMAIL question")
	}
	form.EmailQuestionID = &q.ID
	return nil
}

// DeleteForm removes an answer-free form with everything it contains.
func (s *Service) DeleteForm(ctx context.Context, formID id.FormID) error {
	err := s.mutate(ctx, "delete_form", formID, func(ctx context.Context, st Store, form *models.Form) error {
		if err := st.DeleteForm(ctx, form.ID); err != nil {
			return translate(err, "form")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, audit.ActionFormDeleted, "form_id", formID)
	return nil
}

func (s *Service) GetForm(ctx context.Context, formID id.FormID) (*models.Form, error) {
	form, err := s.store.FindForm(ctx, formID)
	if err != nil {
		return nil, translate(err, "form")
	}
	return form, nil
}

func (s *Service) ListForms(ctx context.Context, processID id.ProcessID) ([]models.Form, error) {
	forms, err := s.store.ListFormsByProcess(ctx, processID)
	if err != nil {
		return nil, translate(err, "form")
	}
	return forms, nil
}
