package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/store"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/validation"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

// =============================================================================
// Structure Service Test Suite
// =============================================================================
// Runs against the in-memory store so ordering, rollback and freezing are
// exercised end to end without a database.

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	cache   *recordingCache
	service *Service
	process id.ProcessID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	s.store = store.NewInMemoryStore()
	s.cache = &recordingCache{frozen: make(map[id.FormID]bool)}
	s.service = New(s.store, NewAtomicTx[*store.InMemoryStore](s.store, 0), WithFrozenCache(s.cache))
	s.process = id.ProcessID(uuid.New())
}

// recordingCache is an in-process FrozenCache.
type recordingCache struct {
	mu     sync.Mutex
	frozen map[id.FormID]bool
	marks  int
}

func (c *recordingCache) IsFrozen(_ context.Context, formID id.FormID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozen[formID], nil
}

func (c *recordingCache) MarkFrozen(_ context.Context, formID id.FormID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen[formID] = true
	c.marks++
	return nil
}

func ptr[T any](v T) *T { return &v }

func openContent(statement string) models.QuestionContent {
	return models.QuestionContent{Statement: statement, Type: models.QuestionOpenAnswer}
}

func choiceContent(statement string) models.QuestionContent {
	return models.QuestionContent{
		Statement: statement,
		Type:      models.QuestionMultipleChoice,
		Options: []models.Option{
			{Type: models.OptionPrimary, Value: "a"},
			{Type: models.OptionPrimary, Value: "b"},
		},
	}
}

func showIf(sectionID id.SectionID, questionID id.QuestionID, rule models.AnswerDisplayRule, value string) models.Gate {
	return models.Gate{
		Rule:           models.DisplayShowIf,
		LinkSectionID:  &sectionID,
		LinkQuestionID: &questionID,
		AnswerRule:     &rule,
		AnswerValue:    &value,
	}
}

func (s *ServiceSuite) newForm(formType models.FormType) *models.Form {
	form, err := s.service.CreateForm(s.ctx, CreateFormRequest{ProcessID: s.process, Name: "Admission", Type: formType})
	s.Require().NoError(err)
	return form
}

func (s *ServiceSuite) newSection(formID id.FormID, order int, gate models.Gate) *models.Section {
	sec, err := s.service.CreateSection(s.ctx, formID, CreateSectionRequest{Title: "Section", Order: order, Gate: gate})
	s.Require().NoError(err)
	return sec
}

func (s *ServiceSuite) newQuestion(sectionID id.SectionID, order int, content models.QuestionContent, gate models.Gate) *models.Question {
	q, err := s.service.CreateQuestion(s.ctx, sectionID, CreateQuestionRequest{Order: order, Content: content, Gate: gate})
	s.Require().NoError(err)
	return q
}

func (s *ServiceSuite) sectionOrders(formID id.FormID) map[id.SectionID]int {
	sections, err := s.store.ListSections(s.ctx, formID)
	s.Require().NoError(err)
	out := make(map[id.SectionID]int, len(sections))
	for _, sec := range sections {
		out[sec.ID] = sec.Order
	}
	return out
}

func (s *ServiceSuite) answer(formID id.FormID, questionID id.QuestionID) {
	fc := &models.FormCandidate{
		ID:          id.FormCandidateID(uuid.New()),
		FormID:      formID,
		CandidateID: id.CandidateID(uuid.New()),
		ProcessID:   s.process,
	}
	s.Require().NoError(s.store.CreateFormCandidate(s.ctx, fc))
	s.Require().NoError(s.store.UpsertAnswer(s.ctx, &models.Answer{
		ID:              uuid.New(),
		QuestionID:      questionID,
		FormCandidateID: fc.ID,
		Value:           "x",
	}))
}

// =============================================================================
// Forms
// =============================================================================

func (s *ServiceSuite) TestCreateForm() {
	s.Run("second candidate form in a process is a conflict", func() {
		s.newForm(models.FormTypeCandidate)
		_, err := s.service.CreateForm(s.ctx, CreateFormRequest{ProcessID: s.process, Name: "Again", Type: models.FormTypeCandidate})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("normal forms are not limited", func() {
		s.newForm(models.FormTypeNormal)
		s.newForm(models.FormTypeNormal)
	})

	s.Run("unknown type is a validation error", func() {
		_, err := s.service.CreateForm(s.ctx, CreateFormRequest{ProcessID: s.process, Name: "X", Type: "other"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestUpdateFormEmailLink() {
	form := s.newForm(models.FormTypeNormal)
	sec := s.newSection(form.ID, 1, models.AlwaysShow())
	email := s.newQuestion(sec.ID, 1, models.QuestionContent{Statement: "Referee email", Type: models.QuestionEmail}, models.AlwaysShow())
	text := s.newQuestion(sec.ID, 2, openContent("Name"), models.AlwaysShow())

	s.Run("non-email question is rejected", func() {
		_, err := s.service.UpdateForm(s.ctx, form.ID, UpdateFormRequest{Name: "Admission", Type: models.FormTypeNormal, EmailQuestionID: &text.ID})
		s.Require().Error(err)
		s.Equal("email_question_id must reference an EMAIL question", dErrors.MessageOf(err))
	})

	s.Run("email question of the same form is linked", func() {
		updated, err := s.service.UpdateForm(s.ctx, form.ID, UpdateFormRequest{Name: "Renamed", Type: models.FormTypeNormal, EmailQuestionID: &email.ID})
		s.Require().NoError(err)
		s.Equal(email.ID, *updated.EmailQuestionID)
		s.Equal("Renamed", updated.Name)
	})

	s.Run("linked question cannot be deleted", func() {
		err := s.service.DeleteQuestion(s.ctx, email.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("candidate forms cannot link an email", func() {
		_, err := s.service.UpdateForm(s.ctx, form.ID, UpdateFormRequest{Name: "Admission", Type: models.FormTypeCandidate, EmailQuestionID: &email.ID})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Ordering
// =============================================================================

func (s *ServiceSuite) TestSectionOrdersStayDense() {
	form := s.newForm(models.FormTypeNormal)
	first := s.newSection(form.ID, 1, models.AlwaysShow())
	second := s.newSection(form.ID, 2, models.AlwaysShow())
	inserted := s.newSection(form.ID, 1, models.AlwaysShow())

	s.Equal(map[id.SectionID]int{inserted.ID: 1, first.ID: 2, second.ID: 3}, s.sectionOrders(form.ID))

	s.Require().NoError(s.service.DeleteSection(s.ctx, first.ID))
	s.Equal(map[id.SectionID]int{inserted.ID: 1, second.ID: 2}, s.sectionOrders(form.ID))

	s.Run("order beyond count+1 is rejected", func() {
		_, err := s.service.CreateSection(s.ctx, form.ID, CreateSectionRequest{Title: "Far", Order: 4, Gate: models.AlwaysShow()})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("order must be between 1 and 3", dErrors.MessageOf(err))
	})
}

func (s *ServiceSuite) TestQuestionOrdersStayDense() {
	form := s.newForm(models.FormTypeNormal)
	sec := s.newSection(form.ID, 1, models.AlwaysShow())
	a := s.newQuestion(sec.ID, 1, openContent("a"), models.AlwaysShow())
	b := s.newQuestion(sec.ID, 1, openContent("b"), models.AlwaysShow())
	c := s.newQuestion(sec.ID, 3, openContent("c"), models.AlwaysShow())

	s.Require().NoError(s.service.DeleteQuestion(s.ctx, b.ID))

	questions, err := s.store.ListQuestions(s.ctx, sec.ID)
	s.Require().NoError(err)
	s.Require().Len(questions, 2)
	s.Equal(a.ID, questions[0].ID)
	s.Equal(1, questions[0].Order)
	s.Equal(c.ID, questions[1].ID)
	s.Equal(2, questions[1].Order)
}

func (s *ServiceSuite) TestReorderSections() {
	form := s.newForm(models.FormTypeNormal)
	first := s.newSection(form.ID, 1, models.AlwaysShow())
	q := s.newQuestion(first.ID, 1, choiceContent("Pick"), models.AlwaysShow())
	second := s.newSection(form.ID, 2, showIf(first.ID, q.ID, models.AnswerEquals, "a"))
	third := s.newSection(form.ID, 3, models.AlwaysShow())

	s.Run("duplicate orders are rejected", func() {
		err := s.service.ReorderSections(s.ctx, form.ID, []models.OrderChange[id.SectionID]{
			{ID: first.ID, Order: 1}, {ID: second.ID, Order: 1}, {ID: third.ID, Order: 3},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("gaps are rejected", func() {
		err := s.service.ReorderSections(s.ctx, form.ID, []models.OrderChange[id.SectionID]{
			{ID: first.ID, Order: 1}, {ID: second.ID, Order: 2}, {ID: third.ID, Order: 4},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("partial permutation is rejected", func() {
		err := s.service.ReorderSections(s.ctx, form.ID, []models.OrderChange[id.SectionID]{
			{ID: first.ID, Order: 2}, {ID: second.ID, Order: 1},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("moving a dependent before its dependency is rejected", func() {
		err := s.service.ReorderSections(s.ctx, form.ID, []models.OrderChange[id.SectionID]{
			{ID: first.ID, Order: 2}, {ID: second.ID, Order: 1}, {ID: third.ID, Order: 3},
		})
		s.Require().Error(err)
		s.Contains(dErrors.MessageOf(err), "must reference a question placed before it")
		s.Equal(map[id.SectionID]int{first.ID: 1, second.ID: 2, third.ID: 3}, s.sectionOrders(form.ID))
	})

	s.Run("valid permutation is applied", func() {
		err := s.service.ReorderSections(s.ctx, form.ID, []models.OrderChange[id.SectionID]{
			{ID: third.ID, Order: 1}, {ID: first.ID, Order: 2}, {ID: second.ID, Order: 3},
		})
		s.Require().NoError(err)
		s.Equal(map[id.SectionID]int{third.ID: 1, first.ID: 2, second.ID: 3}, s.sectionOrders(form.ID))
	})
}

func (s *ServiceSuite) TestReorderQuestions() {
	form := s.newForm(models.FormTypeNormal)
	sec := s.newSection(form.ID, 1, models.AlwaysShow())
	a := s.newQuestion(sec.ID, 1, openContent("Age"), models.AlwaysShow())
	b := s.newQuestion(sec.ID, 2, openContent("Why"), showIf(sec.ID, a.ID, models.AnswerMoreThan, "17"))

	err := s.service.ReorderQuestions(s.ctx, sec.ID, []models.OrderChange[id.QuestionID]{
		{ID: a.ID, Order: 2}, {ID: b.ID, Order: 1},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// =============================================================================
// Display links
// =============================================================================

func (s *ServiceSuite) TestGateChecks() {
	form := s.newForm(models.FormTypeNormal)
	first := s.newSection(form.ID, 1, models.AlwaysShow())
	choice := s.newQuestion(first.ID, 1, choiceContent("Pick"), models.AlwaysShow())
	age := s.newQuestion(first.ID, 2, openContent("Age"), models.AlwaysShow())

	s.Run("incomplete gate names the missing field", func() {
		gate := showIf(first.ID, choice.ID, models.AnswerEquals, "a")
		gate.AnswerValue = nil
		_, err := s.service.CreateSection(s.ctx, form.ID, CreateSectionRequest{Title: "S", Order: 2, Gate: gate})
		s.Require().Error(err)
		s.Equal("answer_display_value is required when display_rule is SHOW_IF", dErrors.MessageOf(err))
	})

	s.Run("section cannot gate on a later question", func() {
		_, err := s.service.CreateSection(s.ctx, form.ID, CreateSectionRequest{Title: "S", Order: 1, Gate: showIf(first.ID, choice.ID, models.AnswerEquals, "a")})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("link section must hold the link question", func() {
		other := s.newSection(form.ID, 2, models.AlwaysShow())
		_, err := s.service.CreateSection(s.ctx, form.ID, CreateSectionRequest{Title: "S", Order: 3, Gate: showIf(other.ID, choice.ID, models.AnswerEquals, "a")})
		s.Require().Error(err)
		s.Contains(dErrors.MessageOf(err), "does not belong to display_link_section_id")
		s.Require().NoError(s.service.DeleteSection(s.ctx, other.ID))
	})

	s.Run("numeric condition on a choice question is rejected", func() {
		_, err := s.service.CreateQuestion(s.ctx, first.ID, CreateQuestionRequest{
			Order: 3, Content: openContent("More"), Gate: showIf(first.ID, choice.ID, models.AnswerMoreThan, "3"),
		})
		s.Require().Error(err)
		s.Contains(dErrors.MessageOf(err), "cannot compare answers of MULTIPLE_CHOICE questions")
	})

	s.Run("numeric condition on an open question is accepted", func() {
		q := s.newQuestion(first.ID, 3, openContent("Why"), showIf(first.ID, age.ID, models.AnswerMoreThanOrEqual, "18"))
		s.Equal(3, q.Order)
	})

	s.Run("changing a numeric source to a choice type is rejected", func() {
		_, err := s.service.UpdateQuestion(s.ctx, age.ID, UpdateQuestionRequest{Content: choiceContent("Age"), Gate: models.AlwaysShow()})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("referenced question cannot be deleted", func() {
		err := s.service.DeleteQuestion(s.ctx, age.ID)
		s.Require().Error(err)
		s.Contains(dErrors.MessageOf(err), "is referenced by the display rules of question")
	})

	s.Run("referenced section cannot be deleted", func() {
		_ = s.newSection(form.ID, 2, showIf(first.ID, choice.ID, models.AnswerIncludes, "a"))
		err := s.service.DeleteSection(s.ctx, first.ID)
		s.Require().Error(err)
		s.Contains(dErrors.MessageOf(err), "is referenced by the display rules of section")
	})
}

func (s *ServiceSuite) TestValidationDefinitions() {
	form := s.newForm(models.FormTypeNormal)
	sec := s.newSection(form.ID, 1, models.AlwaysShow())

	s.Run("rule outside the allow-list is rejected", func() {
		content := models.QuestionContent{
			Statement:   "Birth date",
			Type:        models.QuestionDate,
			Validations: []models.Validation{{Type: validation.MinWords, Params: validation.RawParams{float64(2)}}},
		}
		_, err := s.service.CreateQuestion(s.ctx, sec.ID, CreateQuestionRequest{Order: 1, Content: content, Gate: models.AlwaysShow()})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("malformed parameters are rejected", func() {
		content := openContent("Bio")
		content.Validations = []models.Validation{{Type: validation.MinLength, Params: validation.RawParams{"ten"}}}
		_, err := s.service.CreateQuestion(s.ctx, sec.ID, CreateQuestionRequest{Order: 1, Content: content, Gate: models.AlwaysShow()})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("well formed rules are stored", func() {
		content := openContent("Bio")
		content.Validations = []models.Validation{
			{Type: validation.Required},
			{Type: validation.MinLength, Params: validation.RawParams{float64(10)}},
		}
		q := s.newQuestion(sec.ID, 1, content, models.AlwaysShow())
		stored, err := s.service.GetQuestion(s.ctx, q.ID)
		s.Require().NoError(err)
		s.Len(stored.Validations, 2)
	})
}

// =============================================================================
// Freezing
// =============================================================================

func (s *ServiceSuite) TestAnsweredFormIsFrozen() {
	form := s.newForm(models.FormTypeNormal)
	sec := s.newSection(form.ID, 1, models.AlwaysShow())
	q := s.newQuestion(sec.ID, 1, openContent("Name"), models.AlwaysShow())
	s.answer(form.ID, q.ID)

	_, err := s.service.CreateSection(s.ctx, form.ID, CreateSectionRequest{Title: "Late", Order: 2, Gate: models.AlwaysShow()})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeImmutable))
	s.Equal(1, s.cache.marks)

	s.Run("cache answers later checks", func() {
		err := s.service.DeleteQuestion(s.ctx, q.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeImmutable))
		s.Equal(1, s.cache.marks)
	})

	s.Run("deleting the form is refused", func() {
		err := s.service.DeleteForm(s.ctx, form.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeImmutable))
	})
}

func (s *ServiceSuite) TestDeleteFormCascades() {
	form := s.newForm(models.FormTypeNormal)
	sec := s.newSection(form.ID, 1, models.AlwaysShow())
	q := s.newQuestion(sec.ID, 1, openContent("Name"), models.AlwaysShow())

	s.Require().NoError(s.service.DeleteForm(s.ctx, form.ID))

	_, err := s.service.GetQuestion(s.ctx, q.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.service.GetForm(s.ctx, form.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Sub-questions and structure
// =============================================================================

func (s *ServiceSuite) TestSubQuestions() {
	form := s.newForm(models.FormTypeNormal)
	sec := s.newSection(form.ID, 1, models.AlwaysShow())
	parent := s.newQuestion(sec.ID, 1, openContent("Family"), models.AlwaysShow())

	first, err := s.service.CreateSubQuestion(s.ctx, parent.ID, CreateSubQuestionRequest{Position: 1, Content: openContent("Father")})
	s.Require().NoError(err)
	second, err := s.service.CreateSubQuestion(s.ctx, parent.ID, CreateSubQuestionRequest{Position: 1, Content: openContent("Mother")})
	s.Require().NoError(err)

	subs, err := s.service.ListSubQuestions(s.ctx, parent.ID)
	s.Require().NoError(err)
	s.Require().Len(subs, 2)
	s.Equal(second.ID, subs[0].ID)
	s.Equal(first.ID, subs[1].ID)

	s.Require().NoError(s.service.ReorderSubQuestions(s.ctx, parent.ID, []models.OrderChange[id.SubQuestionID]{
		{ID: first.ID, Order: 1}, {ID: second.ID, Order: 2},
	}))

	updated, err := s.service.UpdateSubQuestion(s.ctx, second.ID, openContent("Mother's name"))
	s.Require().NoError(err)
	s.Equal("Mother's name", updated.Statement)
	s.Equal(2, updated.Position)

	s.Require().NoError(s.service.DeleteSubQuestion(s.ctx, first.ID))
	subs, err = s.service.ListSubQuestions(s.ctx, parent.ID)
	s.Require().NoError(err)
	s.Require().Len(subs, 1)
	s.Equal(1, subs[0].Position)

	structure, err := s.service.GetFormStructure(s.ctx, form.ID)
	s.Require().NoError(err)
	s.Require().Len(structure.Sections, 1)
	s.Require().Len(structure.Sections[0].Questions, 1)
	s.Len(structure.Sections[0].Questions[0].SubQuestions, 1)
}

func (s *ServiceSuite) TestMissingEntities() {
	_, err := s.service.CreateSection(s.ctx, id.NewFormID(), CreateSectionRequest{Title: "S", Order: 1, Gate: models.AlwaysShow()})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.DeleteQuestion(s.ctx, id.NewQuestionID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.GetFormStructure(s.ctx, id.NewFormID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestAtomicTxCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mem := store.NewInMemoryStore()
	err := NewAtomicTx[*store.InMemoryStore](mem, 0).RunInTx(ctx, func(Store) error { return nil })
	if !dErrors.HasCode(err, dErrors.CodeTimeout) {
		t.Fatalf("expected timeout code, got %v", err)
	}
}
