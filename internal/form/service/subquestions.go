package service

import (
	"context"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

type CreateSubQuestionRequest struct {
	Position int
	Content  models.QuestionContent
}

// CreateSubQuestion inserts a sub-question at Position under its parent,
// shifting later siblings down.
func (s *Service) CreateSubQuestion(ctx context.Context, questionID id.QuestionID, req CreateSubQuestionRequest) (*models.SubQuestion, error) {
	formID, err := s.questionForm(ctx, questionID)
	if err != nil {
		return nil, err
	}

	var created *models.SubQuestion
	err = s.mutate(ctx, "create_sub_question", formID, func(ctx context.Context, st Store, _ *models.Form) error {
		siblings, err := st.ListSubQuestions(ctx, questionID)
		if err != nil {
			return translate(err, "sub-question")
		}
		if err := models.ValidateInsertOrder(req.Position, len(siblings), "position"); err != nil {
			return asValidation(err)
		}
		sub, err := models.NewSubQuestion(id.NewSubQuestionID(), questionID, req.Position, req.Content, requestcontext.Now(ctx))
		if err != nil {
			return asValidation(err)
		}
		if err := s.pipeline.CheckDefinitions(sub.Type, sub.Validations); err != nil {
			return err
		}
		if err := st.InsertSubQuestion(ctx, sub); err != nil {
			return translate(err, "sub-question")
		}
		created = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionSubQuestionCreated,
		"form_id", formID,
		"question_id", questionID,
		"sub_question_id", created.ID,
		"position", created.Position,
	)
	return created, nil
}

func (s *Service) UpdateSubQuestion(ctx context.Context, subID id.SubQuestionID, content models.QuestionContent) (*models.SubQuestion, error) {
	formID, err := s.subQuestionForm(ctx, subID)
	if err != nil {
		return nil, err
	}

	var updated *models.SubQuestion
	err = s.mutate(ctx, "update_sub_question", formID, func(ctx context.Context, st Store, _ *models.Form) error {
		current, err := st.FindSubQuestion(ctx, subID)
		if err != nil {
			return translate(err, "sub-question")
		}
		if err := content.Validate(); err != nil {
			return asValidation(err)
		}
		if err := s.pipeline.CheckDefinitions(content.Type, content.Validations); err != nil {
			return err
		}
		next := *current
		next.Apply(content, requestcontext.Now(ctx))
		if err := st.UpdateSubQuestion(ctx, &next); err != nil {
			return translate(err, "sub-question")
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionSubQuestionUpdated, "form_id", formID, "sub_question_id", subID)
	return updated, nil
}

func (s *Service) DeleteSubQuestion(ctx context.Context, subID id.SubQuestionID) error {
	formID, err := s.subQuestionForm(ctx, subID)
	if err != nil {
		return err
	}

	err = s.mutate(ctx, "delete_sub_question", formID, func(ctx context.Context, st Store, _ *models.Form) error {
		if err := st.DeleteSubQuestion(ctx, subID); err != nil {
			return translate(err, "sub-question")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, audit.ActionSubQuestionDeleted, "form_id", formID, "sub_question_id", subID)
	return nil
}

// ReorderSubQuestions applies a full permutation of positions under one
// question.
func (s *Service) ReorderSubQuestions(ctx context.Context, questionID id.QuestionID, changes []models.OrderChange[id.SubQuestionID]) error {
	formID, err := s.questionForm(ctx, questionID)
	if err != nil {
		return err
	}

	err = s.mutate(ctx, "reorder_sub_questions", formID, func(ctx context.Context, st Store, _ *models.Form) error {
		siblings, err := st.ListSubQuestions(ctx, questionID)
		if err != nil {
			return translate(err, "sub-question")
		}
		current := make([]id.SubQuestionID, len(siblings))
		for i, sq := range siblings {
			current[i] = sq.ID
		}
		positions, err := models.ValidatePermutation(current, changes, "sub-question")
		if err != nil {
			return asValidation(err)
		}
		if err := st.SetSubQuestionPositions(ctx, questionID, positions); err != nil {
			return translate(err, "sub-question")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, audit.ActionSubQuestionsReordered, "form_id", formID, "question_id", questionID, "count", len(changes))
	return nil
}

func (s *Service) ListSubQuestions(ctx context.Context, questionID id.QuestionID) ([]models.SubQuestion, error) {
	if _, err := s.questionForm(ctx, questionID); err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubQuestions(ctx, questionID)
	if err != nil {
		return nil, translate(err, "sub-question")
	}
	return subs, nil
}

func (s *Service) subQuestionForm(ctx context.Context, subID id.SubQuestionID) (id.FormID, error) {
	sub, err := s.store.FindSubQuestion(ctx, subID)
	if err != nil {
		return id.FormID{}, translate(err, "sub-question")
	}
	return s.questionForm(ctx, sub.QuestionID)
}
