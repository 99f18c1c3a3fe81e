// Package service implements the form structure manager: creation, edition,
// deletion and reordering of forms, sections, questions and sub-questions
// under the ordering, dependency and immutability invariants.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/metrics"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/pipeline"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/validation"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/attrs"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/sentinel"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

type FormStore interface {
	CreateForm(ctx context.Context, form *models.Form) error
	UpdateForm(ctx context.Context, form *models.Form) error
	DeleteForm(ctx context.Context, formID id.FormID) error
	FindForm(ctx context.Context, formID id.FormID) (*models.Form, error)
	// LockForm loads the form and holds a write lock on it until the
	// surrounding transaction ends.
	LockForm(ctx context.Context, formID id.FormID) (*models.Form, error)
	ListFormsByProcess(ctx context.Context, processID id.ProcessID) ([]models.Form, error)
	FormHasAnswers(ctx context.Context, formID id.FormID) (bool, error)
}

type SectionStore interface {
	ListSections(ctx context.Context, formID id.FormID) ([]models.Section, error)
	FindSection(ctx context.Context, sectionID id.SectionID) (*models.Section, error)
	// InsertSection shifts siblings at or after the new order by one.
	InsertSection(ctx context.Context, section *models.Section) error
	UpdateSection(ctx context.Context, section *models.Section) error
	// DeleteSection removes the section with its questions and closes the gap.
	DeleteSection(ctx context.Context, sectionID id.SectionID) error
	SetSectionOrders(ctx context.Context, formID id.FormID, orders map[id.SectionID]int) error
	SectionsLinkedTo(ctx context.Context, questionID id.QuestionID) ([]models.Section, error)
}

type QuestionStore interface {
	ListQuestions(ctx context.Context, sectionID id.SectionID) ([]models.Question, error)
	ListFormQuestions(ctx context.Context, formID id.FormID) ([]models.Question, error)
	FindQuestion(ctx context.Context, questionID id.QuestionID) (*models.Question, error)
	InsertQuestion(ctx context.Context, question *models.Question) error
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, questionID id.QuestionID) error
	SetQuestionOrders(ctx context.Context, sectionID id.SectionID, orders map[id.QuestionID]int) error
	QuestionsLinkedTo(ctx context.Context, questionID id.QuestionID) ([]models.Question, error)
}

type SubQuestionStore interface {
	ListSubQuestions(ctx context.Context, questionID id.QuestionID) ([]models.SubQuestion, error)
	ListFormSubQuestions(ctx context.Context, formID id.FormID) ([]models.SubQuestion, error)
	FindSubQuestion(ctx context.Context, subID id.SubQuestionID) (*models.SubQuestion, error)
	InsertSubQuestion(ctx context.Context, sub *models.SubQuestion) error
	UpdateSubQuestion(ctx context.Context, sub *models.SubQuestion) error
	DeleteSubQuestion(ctx context.Context, subID id.SubQuestionID) error
	SetSubQuestionPositions(ctx context.Context, questionID id.QuestionID, positions map[id.SubQuestionID]int) error
}

// Store is the structure store seen inside a transaction.
type Store interface {
	FormStore
	SectionStore
	QuestionStore
	SubQuestionStore
}

// StoreTx runs fn in one all-or-nothing transaction. Implementations wrap a
// database transaction or, in memory, a lock with rollback.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(store Store) error) error
}

// FrozenCache remembers forms that already have answers. A form never thaws,
// so only positive results are cached.
type FrozenCache interface {
	IsFrozen(ctx context.Context, formID id.FormID) (bool, error)
	MarkFrozen(ctx context.Context, formID id.FormID) error
}

// Auditor receives a record of every committed structural change.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service enforces the structural invariants of forms.
type Service struct {
	store    Store
	tx       StoreTx
	pipeline *pipeline.Pipeline
	frozen   FrozenCache
	auditor  Auditor
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFrozenCache puts a cache in front of the "has answers" check.
func WithFrozenCache(c FrozenCache) Option {
	return func(s *Service) {
		s.frozen = c
	}
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithPipeline sets the pipeline used to check validation definitions.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(s *Service) {
		s.pipeline = p
	}
}

// New constructs a Service. store serves reads outside transactions; tx wraps
// every mutation.
func New(store Store, tx StoreTx, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tx:     tx,
		tracer: otel.Tracer("form"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = pipeline.New(validation.NewRegistry())
	}
	return s
}

// mutate runs one structural edit: a span, a transaction that first locks the
// form and rejects frozen forms, then fn. Metrics and the audit log record the
// outcome.
func (s *Service) mutate(ctx context.Context, op string, formID id.FormID, fn func(ctx context.Context, st Store, form *models.Form) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "form."+op, trace.WithAttributes(
		attribute.String("form_id", formID.String()),
	))
	defer span.End()

	err := s.tx.RunInTx(ctx, func(st Store) error {
		form, err := st.LockForm(ctx, formID)
		if err != nil {
			return translate(err, "form")
		}
		if err := s.ensureEditable(ctx, st, form.ID); err != nil {
			return err
		}
		return fn(ctx, st, form)
	})

	s.observe(op, err, start)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, op+" failed")
		}
		return err
	}
	return nil
}

func (s *Service) observe(op string, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case dErrors.HasCode(err, dErrors.CodeImmutable):
		outcome = "frozen"
	case dErrors.CodeOf(err) == dErrors.CodeInternal:
		outcome = "error"
	default:
		outcome = "rejected"
	}
	s.metrics.ObserveMutation(op, outcome, start)
}

// ensureEditable rejects edits to a form that has answers. It must run after
// LockForm so no answer can slip in between the check and the write.
func (s *Service) ensureEditable(ctx context.Context, st Store, formID id.FormID) error {
	if s.frozen != nil {
		frozen, err := s.frozen.IsFrozen(ctx, formID)
		if err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "frozen cache lookup failed",
				"form_id", formID,
				"error", err,
			)
		}
		if frozen {
			return errFrozen
		}
	}

	has, err := st.FormHasAnswers(ctx, formID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check answers")
	}
	if !has {
		return nil
	}
	if s.frozen != nil {
		if err := s.frozen.MarkFrozen(ctx, formID); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "frozen cache update failed",
				"form_id", formID,
				"error", err,
			)
		}
	}
	return errFrozen
}

var errFrozen = dErrors.New(dErrors.CodeImmutable, "form already has answers and can no longer be changed")

// translate maps store sentinels onto coded errors.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, entity+" conflicts with an existing "+entity)
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+entity)
	}
}

// asValidation reports model invariant violations as validation errors, keeping
// the field-naming message.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return err
}

// logAudit logs a committed change and hands it to the auditor. kv must
// carry "form_id".
func (s *Service) logAudit(ctx context.Context, action audit.Action, kv ...any) {
	if s.logger != nil {
		args := append(kv, "request_id", requestcontext.RequestID(ctx))
		s.logger.InfoContext(ctx, string(action), args...)
	}
	if s.auditor == nil {
		return
	}
	formID, _ := attrs.Extract[id.FormID](kv, "form_id")
	s.auditor.Emit(ctx, audit.Event{
		Action: action,
		FormID: formID,
		Detail: attrs.Strings(kv, "form_id"),
	})
}
