package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/display"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// Structure is a form with its ordered sections, questions and sub-questions.
type Structure struct {
	Form     models.Form      `json:"form"`
	Sections []models.Section `json:"sections"`
}

// snapshot is the gate-relevant view of one form: sections with their
// questions, both ordered. Proposed edits are applied to a snapshot and
// checked before anything is written.
type snapshot struct {
	sections []models.Section
}

func loadSnapshot(ctx context.Context, st Store, formID id.FormID) (*snapshot, error) {
	sections, err := st.ListSections(ctx, formID)
	if err != nil {
		return nil, translate(err, "section")
	}
	questions, err := st.ListFormQuestions(ctx, formID)
	if err != nil {
		return nil, translate(err, "question")
	}

	bySection := make(map[id.SectionID][]models.Question, len(sections))
	for _, q := range questions {
		bySection[q.SectionID] = append(bySection[q.SectionID], q)
	}
	for i := range sections {
		qs := bySection[sections[i].ID]
		sort.Slice(qs, func(a, b int) bool { return qs[a].Order < qs[b].Order })
		sections[i].Questions = qs
	}
	sort.Slice(sections, func(a, b int) bool { return sections[a].Order < sections[b].Order })
	return &snapshot{sections: sections}, nil
}

func (s *snapshot) section(sid id.SectionID) *models.Section {
	for i := range s.sections {
		if s.sections[i].ID == sid {
			return &s.sections[i]
		}
	}
	return nil
}

func (s *snapshot) question(qid id.QuestionID) *models.Question {
	for i := range s.sections {
		for j := range s.sections[i].Questions {
			if s.sections[i].Questions[j].ID == qid {
				return &s.sections[i].Questions[j]
			}
		}
	}
	return nil
}

// insertSection places sec at its order, shifting later siblings.
func (s *snapshot) insertSection(sec models.Section) {
	for i := range s.sections {
		if s.sections[i].Order >= sec.Order {
			s.sections[i].Order++
		}
	}
	s.sections = append(s.sections, sec)
}

func (s *snapshot) insertQuestion(q models.Question) {
	sec := s.section(q.SectionID)
	for i := range sec.Questions {
		if sec.Questions[i].Order >= q.Order {
			sec.Questions[i].Order++
		}
	}
	sec.Questions = append(sec.Questions, q)
}

// check validates every display link of the snapshot: edges point forward,
// the graph is acyclic and numeric conditions read numeric questions.
func (s *snapshot) check() (*display.Graph, error) {
	g, err := display.Build(s.sections)
	if err != nil {
		return nil, asValidation(err)
	}
	if _, err := g.TopologicalOrder(); err != nil {
		return nil, asValidation(err)
	}
	for _, sec := range s.sections {
		if err := s.checkNumeric("section", sec.ID.String(), sec.Gate); err != nil {
			return nil, err
		}
		for _, q := range sec.Questions {
			if err := s.checkNumeric("question", q.ID.String(), q.Gate); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func (s *snapshot) checkNumeric(kind, nodeID string, gate models.Gate) error {
	if !gate.Rule.IsGated() || gate.AnswerRule == nil || !gate.AnswerRule.IsNumeric() {
		return nil
	}
	linked := s.question(*gate.LinkQuestionID)
	if linked == nil || linked.Type.CarriesNumbers() {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
		"%s %s: answer_display_rule %s cannot compare answers of %s questions",
		kind, nodeID, *gate.AnswerRule, linked.Type))
}

// describe renders graph nodes for rejection messages.
func describe(refs []display.Ref) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = string(r.Kind) + " " + r.ID.String()
	}
	return strings.Join(parts, ", ")
}

// GetFormStructure returns the full ordered tree of a form.
func (s *Service) GetFormStructure(ctx context.Context, formID id.FormID) (*Structure, error) {
	form, err := s.store.FindForm(ctx, formID)
	if err != nil {
		return nil, translate(err, "form")
	}
	snap, err := loadSnapshot(ctx, s.store, formID)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListFormSubQuestions(ctx, formID)
	if err != nil {
		return nil, translate(err, "sub-question")
	}

	byQuestion := make(map[id.QuestionID][]models.SubQuestion)
	for _, sq := range subs {
		byQuestion[sq.QuestionID] = append(byQuestion[sq.QuestionID], sq)
	}
	for i := range snap.sections {
		for j := range snap.sections[i].Questions {
			q := &snap.sections[i].Questions[j]
			list := byQuestion[q.ID]
			sort.Slice(list, func(a, b int) bool { return list[a].Position < list[b].Position })
			q.SubQuestions = list
		}
	}
	return &Structure{Form: *form, Sections: snap.sections}, nil
}
