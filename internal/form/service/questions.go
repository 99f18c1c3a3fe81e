package service

import (
	"context"
	"fmt"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

type CreateQuestionRequest struct {
	Order   int
	Content models.QuestionContent
	Gate    models.Gate
}

type UpdateQuestionRequest struct {
	Content models.QuestionContent
	Gate    models.Gate
}

// CreateQuestion inserts a question at Order within its section, shifting
// later questions down.
func (s *Service) CreateQuestion(ctx context.Context, sectionID id.SectionID, req CreateQuestionRequest) (*models.Question, error) {
	formID, err := s.sectionForm(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	var created *models.Question
	err = s.mutate(ctx, "create_question", formID, func(ctx context.Context, st Store, form *models.Form) error {
		snap, err := loadSnapshot(ctx, st, form.ID)
		if err != nil {
			return err
		}
		section := snap.section(sectionID)
		if section == nil {
			return dErrors.New(dErrors.CodeNotFound, "section not found")
		}
		if err := models.ValidateInsertOrder(req.Order, len(section.Questions), "order"); err != nil {
			return asValidation(err)
		}
		question, err := models.NewQuestion(id.NewQuestionID(), section, req.Order, req.Content, req.Gate, requestcontext.Now(ctx))
		if err != nil {
			return asValidation(err)
		}
		if err := s.pipeline.CheckDefinitions(question.Type, question.Validations); err != nil {
			return err
		}

		snap.insertQuestion(*question)
		if _, err := snap.check(); err != nil {
			return err
		}
		if err := st.InsertQuestion(ctx, question); err != nil {
			return translate(err, "question")
		}
		created = question
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionQuestionCreated,
		"form_id", formID,
		"section_id", sectionID,
		"question_id", created.ID,
		"order", created.Order,
	)
	return created, nil
}

func (s *Service) UpdateQuestion(ctx context.Context, questionID id.QuestionID, req UpdateQuestionRequest) (*models.Question, error) {
	formID, err := s.questionForm(ctx, questionID)
	if err != nil {
		return nil, err
	}

	var updated *models.Question
	err = s.mutate(ctx, "update_question", formID, func(ctx context.Context, st Store, form *models.Form) error {
		current, err := st.FindQuestion(ctx, questionID)
		if err != nil {
			return translate(err, "question")
		}
		content := req.Content
		if err := content.Validate(); err != nil {
			return asValidation(err)
		}
		if err := req.Gate.Validate(); err != nil {
			return asValidation(err)
		}
		if err := s.pipeline.CheckDefinitions(content.Type, content.Validations); err != nil {
			return err
		}
		if form.EmailQuestionID != nil && *form.EmailQuestionID == questionID && content.Type != models.QuestionEmail {
			return dErrors.New(dErrors.CodeValidation,
				"type must stay EMAIL while the question is the form's email_question_id")
		}

		next := *current
		next.Apply(content, req.Gate, requestcontext.Now(ctx))

		snap, err := loadSnapshot(ctx, st, form.ID)
		if err != nil {
			return err
		}
		if target := snap.question(questionID); target != nil {
			*target = next
		}
		if _, err := snap.check(); err != nil {
			return err
		}
		if err := st.UpdateQuestion(ctx, &next); err != nil {
			return translate(err, "question")
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionQuestionUpdated, "form_id", formID, "question_id", questionID)
	return updated, nil
}

// DeleteQuestion removes a question with its sub-questions and closes the
// order gap. Questions that drive a display rule cannot be deleted.
func (s *Service) DeleteQuestion(ctx context.Context, questionID id.QuestionID) error {
	formID, err := s.questionForm(ctx, questionID)
	if err != nil {
		return err
	}

	err = s.mutate(ctx, "delete_question", formID, func(ctx context.Context, st Store, form *models.Form) error {
		snap, err := loadSnapshot(ctx, st, form.ID)
		if err != nil {
			return err
		}
		if snap.question(questionID) == nil {
			return dErrors.New(dErrors.CodeNotFound, "question not found")
		}
		g, err := snap.check()
		if err != nil {
			return err
		}
		if deps := g.Dependents(questionID); len(deps) > 0 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
				"question %s is referenced by the display rules of %s", questionID, describe(deps)))
		}
		if form.EmailQuestionID != nil && *form.EmailQuestionID == questionID {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
				"question %s is the form's email_question_id", questionID))
		}
		if err := st.DeleteQuestion(ctx, questionID); err != nil {
			return translate(err, "question")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, audit.ActionQuestionDeleted, "form_id", formID, "question_id", questionID)
	return nil
}

// ReorderQuestions applies a full permutation of question orders within a
// section. The result must keep every display link pointing backwards.
func (s *Service) ReorderQuestions(ctx context.Context, sectionID id.SectionID, changes []models.OrderChange[id.QuestionID]) error {
	formID, err := s.sectionForm(ctx, sectionID)
	if err != nil {
		return err
	}

	err = s.mutate(ctx, "reorder_questions", formID, func(ctx context.Context, st Store, form *models.Form) error {
		snap, err := loadSnapshot(ctx, st, form.ID)
		if err != nil {
			return err
		}
		section := snap.section(sectionID)
		if section == nil {
			return dErrors.New(dErrors.CodeNotFound, "section not found")
		}
		current := make([]id.QuestionID, len(section.Questions))
		for i, q := range section.Questions {
			current[i] = q.ID
		}
		orders, err := models.ValidatePermutation(current, changes, "question")
		if err != nil {
			return asValidation(err)
		}

		for i := range section.Questions {
			section.Questions[i].Order = orders[section.Questions[i].ID]
		}
		if _, err := snap.check(); err != nil {
			return err
		}
		if err := st.SetQuestionOrders(ctx, sectionID, orders); err != nil {
			return translate(err, "question")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, audit.ActionQuestionsReordered, "form_id", formID, "section_id", sectionID, "count", len(changes))
	return nil
}

func (s *Service) GetQuestion(ctx context.Context, questionID id.QuestionID) (*models.Question, error) {
	q, err := s.store.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, translate(err, "question")
	}
	return q, nil
}

func (s *Service) questionForm(ctx context.Context, questionID id.QuestionID) (id.FormID, error) {
	q, err := s.store.FindQuestion(ctx, questionID)
	if err != nil {
		return id.FormID{}, translate(err, "question")
	}
	return q.FormID, nil
}
