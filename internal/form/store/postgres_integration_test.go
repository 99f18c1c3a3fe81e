//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/store"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/validation"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/sentinel"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	tx       *store.PostgresTx[*store.PostgresStore]
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(store.ApplySchema(context.Background(), s.postgres.DB))
	s.store = store.NewPostgres(s.postgres.DB)
	s.tx = store.NewPostgresTx(s.store, 0, func(p *store.PostgresStore) *store.PostgresStore { return p })
	s.now = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "answers", "form_candidates", "sub_questions", "questions", "sections", "forms")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) form(formType models.FormType) *models.Form {
	form, err := models.NewForm(id.NewFormID(), id.ProcessID(uuid.New()), "Admission", formType, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateForm(context.Background(), form))
	return form
}

func (s *PostgresStoreSuite) section(formID id.FormID, order int) *models.Section {
	sec, err := models.NewSection(id.NewSectionID(), formID, "Section", order, models.AlwaysShow(), s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.InsertSection(context.Background(), sec))
	return sec
}

func (s *PostgresStoreSuite) question(sec *models.Section, order int, qType models.QuestionType, gate models.Gate) *models.Question {
	content := models.QuestionContent{
		Statement:   "How old are you?",
		Type:        qType,
		Validations: []models.Validation{{Type: validation.LessThan, Params: validation.RawParams{130.0}}},
	}
	q, err := models.NewQuestion(id.NewQuestionID(), sec, order, content, gate, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.InsertQuestion(context.Background(), q))
	return q
}

func (s *PostgresStoreSuite) orders(formID id.FormID) map[id.SectionID]int {
	sections, err := s.store.ListSections(context.Background(), formID)
	s.Require().NoError(err)
	out := make(map[id.SectionID]int, len(sections))
	for _, sec := range sections {
		out[sec.ID] = sec.Order
	}
	return out
}

// =============================================================================
// Forms
// =============================================================================

func (s *PostgresStoreSuite) TestSingletonFormTypes() {
	ctx := context.Background()
	first := s.form(models.FormTypeCandidate)

	dup, err := models.NewForm(id.NewFormID(), first.ProcessID, "Again", models.FormTypeCandidate, s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateForm(ctx, dup), sentinel.ErrConflict)

	normal, err := models.NewForm(id.NewFormID(), first.ProcessID, "Extra", models.FormTypeNormal, s.now)
	s.Require().NoError(err)
	s.NoError(s.store.CreateForm(ctx, normal))

	forms, err := s.store.ListFormsByProcess(ctx, first.ProcessID)
	s.Require().NoError(err)
	s.Len(forms, 2)
}

func (s *PostgresStoreSuite) TestFindMissingForm() {
	_, err := s.store.FindForm(context.Background(), id.NewFormID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestEmailQuestionRoundTrip() {
	ctx := context.Background()
	form := s.form(models.FormTypeNormal)
	sec := s.section(form.ID, 1)
	q := s.question(sec, 1, models.QuestionEmail, models.AlwaysShow())

	form.EmailQuestionID = &q.ID
	s.Require().NoError(s.store.UpdateForm(ctx, form))

	got, err := s.store.FindForm(ctx, form.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.EmailQuestionID)
	s.Equal(q.ID, *got.EmailQuestionID)
}

// =============================================================================
// Orders
// =============================================================================

func (s *PostgresStoreSuite) TestInsertShiftsAndDeleteRenumbers() {
	ctx := context.Background()
	form := s.form(models.FormTypeNormal)
	a := s.section(form.ID, 1)
	b := s.section(form.ID, 2)
	c := s.section(form.ID, 1)

	s.Equal(map[id.SectionID]int{c.ID: 1, a.ID: 2, b.ID: 3}, s.orders(form.ID))

	s.Require().NoError(s.store.DeleteSection(ctx, a.ID))
	s.Equal(map[id.SectionID]int{c.ID: 1, b.ID: 2}, s.orders(form.ID))
}

func (s *PostgresStoreSuite) TestSetSectionOrdersInsideTransaction() {
	ctx := context.Background()
	form := s.form(models.FormTypeNormal)
	a := s.section(form.ID, 1)
	b := s.section(form.ID, 2)

	err := s.tx.RunInTx(ctx, func(st *store.PostgresStore) error {
		return st.SetSectionOrders(ctx, form.ID, map[id.SectionID]int{a.ID: 2, b.ID: 1})
	})
	s.Require().NoError(err)
	s.Equal(map[id.SectionID]int{b.ID: 1, a.ID: 2}, s.orders(form.ID))
}

func (s *PostgresStoreSuite) TestSetSectionOrdersUnknownSection() {
	ctx := context.Background()
	form := s.form(models.FormTypeNormal)
	a := s.section(form.ID, 1)

	err := s.tx.RunInTx(ctx, func(st *store.PostgresStore) error {
		return st.SetSectionOrders(ctx, form.ID, map[id.SectionID]int{a.ID: 1, id.NewSectionID(): 2})
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRollbackOnError() {
	ctx := context.Background()
	form := s.form(models.FormTypeNormal)
	kept := s.section(form.ID, 1)

	boom := errors.New("boom")
	err := s.tx.RunInTx(ctx, func(st *store.PostgresStore) error {
		if _, err := st.LockForm(ctx, form.ID); err != nil {
			return err
		}
		if err := st.DeleteSection(ctx, kept.ID); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)
	s.Equal(map[id.SectionID]int{kept.ID: 1}, s.orders(form.ID))
}

// =============================================================================
// Questions
// =============================================================================

func (s *PostgresStoreSuite) TestQuestionContentRoundTrip() {
	ctx := context.Background()
	form := s.form(models.FormTypeNormal)
	sec := s.section(form.ID, 1)
	age := s.question(sec, 1, models.QuestionOpenAnswer, models.AlwaysShow())

	rule := models.AnswerMoreThanOrEqual
	value := "18"
	gate := models.Gate{
		Rule:           models.DisplayShowIf,
		LinkSectionID:  &sec.ID,
		LinkQuestionID: &age.ID,
		AnswerRule:     &rule,
		AnswerValue:    &value,
	}
	reason := s.question(sec, 2, models.QuestionOpenAnswer, gate)

	got, err := s.store.FindQuestion(ctx, reason.ID)
	s.Require().NoError(err)
	s.Equal(gate, got.Gate)
	s.Equal(reason.Validations, got.Validations)

	linked, err := s.store.QuestionsLinkedTo(ctx, age.ID)
	s.Require().NoError(err)
	s.Require().Len(linked, 1)
	s.Equal(reason.ID, linked[0].ID)

	all, err := s.store.ListFormQuestions(ctx, form.ID)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *PostgresStoreSuite) TestSubQuestionPositions() {
	ctx := context.Background()
	form := s.form(models.FormTypeNormal)
	sec := s.section(form.ID, 1)
	parent := s.question(sec, 1, models.QuestionFields, models.AlwaysShow())

	var subs []*models.SubQuestion
	for i := 1; i <= 3; i++ {
		sub, err := models.NewSubQuestion(id.NewSubQuestionID(), parent.ID, i,
			models.QuestionContent{Statement: "Field", Type: models.QuestionOpenAnswer}, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.InsertSubQuestion(ctx, sub))
		subs = append(subs, sub)
	}

	s.Require().NoError(s.store.DeleteSubQuestion(ctx, subs[0].ID))
	listed, err := s.store.ListFormSubQuestions(ctx, form.ID)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal(subs[1].ID, listed[0].ID)
	s.Equal(1, listed[0].Position)
	s.Equal(2, listed[1].Position)
}

// =============================================================================
// Answers
// =============================================================================

func (s *PostgresStoreSuite) TestAnswersAndCandidateEmails() {
	ctx := context.Background()
	processID := id.ProcessID(uuid.New())
	candidateID := id.CandidateID(uuid.New())

	var fcs []*models.FormCandidate
	var emails []*models.Question
	for _, ft := range []models.FormType{models.FormTypeMinisterial, models.FormTypeNormal} {
		form, err := models.NewForm(id.NewFormID(), processID, "Form", ft, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.CreateForm(ctx, form))
		sec := s.section(form.ID, 1)
		emails = append(emails, s.question(sec, 1, models.QuestionEmail, models.AlwaysShow()))

		fc := &models.FormCandidate{
			ID: id.FormCandidateID(uuid.New()), FormID: form.ID, CandidateID: candidateID, ProcessID: processID,
		}
		s.Require().NoError(s.store.CreateFormCandidate(ctx, fc))
		fcs = append(fcs, fc)
	}

	first := &models.Answer{
		ID: uuid.New(), QuestionID: emails[0].ID, FormCandidateID: fcs[0].ID,
		Value: " Ana@Example.com ", ValidAnswer: true, CreatedAt: s.now, UpdatedAt: s.now,
	}
	s.Require().NoError(s.store.UpsertAnswer(ctx, first))
	storedID := first.ID

	again := &models.Answer{
		ID: uuid.New(), QuestionID: emails[0].ID, FormCandidateID: fcs[0].ID,
		Value: "ana@example.com", ValidAnswer: true, CreatedAt: s.now, UpdatedAt: s.now,
	}
	s.Require().NoError(s.store.UpsertAnswer(ctx, again))
	s.Equal(storedID, again.ID)

	got, err := s.store.CandidateEmails(ctx, candidateID, processID, fcs[1].ID)
	s.Require().NoError(err)
	s.Equal([]string{"ana@example.com"}, got)

	got, err = s.store.CandidateEmails(ctx, candidateID, processID, fcs[0].ID)
	s.Require().NoError(err)
	s.Empty(got)

	hasAnswers, err := s.store.FormHasAnswers(ctx, fcs[0].FormID)
	s.Require().NoError(err)
	s.True(hasAnswers)

	comment := "address bounced"
	s.Require().NoError(s.store.ReviewAnswer(ctx, storedID, false, &comment, s.now.Add(time.Hour)))
	reviewed, err := s.store.FindAnswerByID(ctx, storedID)
	s.Require().NoError(err)
	s.False(reviewed.ValidAnswer)
	s.Require().NotNil(reviewed.Comment)
	s.Equal(comment, *reviewed.Comment)

	dup := &models.FormCandidate{
		ID: id.FormCandidateID(uuid.New()), FormID: fcs[0].FormID, CandidateID: candidateID, ProcessID: processID,
	}
	s.ErrorIs(s.store.CreateFormCandidate(ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestDeleteFormCascades() {
	ctx := context.Background()
	form := s.form(models.FormTypeNormal)
	sec := s.section(form.ID, 1)
	q := s.question(sec, 1, models.QuestionOpenAnswer, models.AlwaysShow())

	s.Require().NoError(s.store.DeleteForm(ctx, form.ID))

	_, err := s.store.FindQuestion(ctx, q.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.DeleteForm(ctx, form.ID), sentinel.ErrNotFound)
}
