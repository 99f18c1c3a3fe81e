package display

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
)

// LinkReader answers the two reverse lookups the resolver merges.
type LinkReader interface {
	SectionsLinkedTo(ctx context.Context, questionID id.QuestionID) ([]models.Section, error)
	QuestionsLinkedTo(ctx context.Context, questionID id.QuestionID) ([]models.Question, error)
}

// Dependent is one section or question gated on a question's answer.
type Dependent struct {
	TargetID       uuid.UUID                `json:"target_id"`
	TargetKind     Kind                     `json:"target_kind"`
	StructuralRule models.DisplayRule       `json:"display_rule"`
	Condition      models.AnswerDisplayRule `json:"answer_display_rule"`
	ConditionValue *string                  `json:"answer_display_value,omitempty"`
}

// Ref returns the graph reference of the dependent.
func (d Dependent) Ref() Ref {
	return Ref{Kind: d.TargetKind, ID: d.TargetID}
}

// Visible evaluates the dependent's gate against an answer.
func (d Dependent) Visible(answer string) (bool, error) {
	return IsVisible(answer, d.StructuralRule, d.Condition, d.ConditionValue)
}

// Resolver finds the direct dependents of a question.
type Resolver struct {
	links LinkReader
}

func NewResolver(links LinkReader) *Resolver {
	return &Resolver{links: links}
}

// FindDependents merges the section and question lookups into one list,
// sections first, with each target listed once.
func (r *Resolver) FindDependents(ctx context.Context, questionID id.QuestionID) ([]Dependent, error) {
	ctx, span := otel.Tracer("form").Start(ctx, "display.FindDependents")
	defer span.End()
	span.SetAttributes(attribute.String("question_id", questionID.String()))

	var (
		sections  []models.Section
		questions []models.Question
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sections, err = r.links.SectionsLinkedTo(gctx, questionID)
		if err != nil {
			return fmt.Errorf("sections linked to question: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		questions, err = r.links.QuestionsLinkedTo(gctx, questionID)
		if err != nil {
			return fmt.Errorf("questions linked to question: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dependency lookup failed")
		return nil, err
	}

	seen := make(map[Ref]bool, len(sections)+len(questions))
	out := make([]Dependent, 0, len(sections)+len(questions))
	add := func(d Dependent) {
		if seen[d.Ref()] {
			return
		}
		seen[d.Ref()] = true
		out = append(out, d)
	}
	for _, s := range sections {
		add(dependentOf(KindSection, uuid.UUID(s.ID), s.Gate))
	}
	for _, q := range questions {
		add(dependentOf(KindQuestion, uuid.UUID(q.ID), q.Gate))
	}

	span.SetAttributes(attribute.Int("dependents", len(out)))
	return out, nil
}

func dependentOf(kind Kind, targetID uuid.UUID, g models.Gate) Dependent {
	cond, value := g.Condition()
	return Dependent{
		TargetID:       targetID,
		TargetKind:     kind,
		StructuralRule: g.Rule,
		Condition:      cond,
		ConditionValue: value,
	}
}
