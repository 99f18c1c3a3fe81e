package display

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// Kind distinguishes section nodes from question nodes.
type Kind string

const (
	KindSection  Kind = "section"
	KindQuestion Kind = "question"
)

// Ref identifies a node of the dependency graph.
type Ref struct {
	Kind Kind      `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func SectionRef(sid id.SectionID) Ref    { return Ref{Kind: KindSection, ID: uuid.UUID(sid)} }
func QuestionRef(qid id.QuestionID) Ref { return Ref{Kind: KindQuestion, ID: uuid.UUID(qid)} }

// position orders nodes through the form: a section sits before its own
// questions, which are numbered from 1.
type position struct {
	section  int
	question int
}

func (p position) before(o position) bool {
	if p.section != o.section {
		return p.section < o.section
	}
	return p.question < o.question
}

type node struct {
	ref  Ref
	pos  position
	gate models.Gate
}

// Graph is the dependency graph of one form: an edge runs from the question
// whose answer is read to every section or question gated on it. Build
// rejects any edge that does not point forward, so the graph is acyclic by
// construction; TopologicalOrder re-derives that from the edges alone.
type Graph struct {
	nodes map[Ref]*node
	out   map[Ref][]Ref
	in    map[Ref]int
	// questionSection records which section holds each question.
	questionSection map[uuid.UUID]uuid.UUID
}

// Build constructs the graph from sections whose Questions are populated.
// Orders are read as given, so callers can validate a proposed reorder by
// building from a copy with the new orders applied.
func Build(sections []models.Section) (*Graph, error) {
	g := &Graph{
		nodes:           make(map[Ref]*node),
		out:             make(map[Ref][]Ref),
		in:              make(map[Ref]int),
		questionSection: make(map[uuid.UUID]uuid.UUID),
	}
	for _, s := range sections {
		ref := SectionRef(s.ID)
		g.nodes[ref] = &node{ref: ref, pos: position{section: s.Order}, gate: s.Gate}
		for _, q := range s.Questions {
			qref := QuestionRef(q.ID)
			g.nodes[qref] = &node{ref: qref, pos: position{section: s.Order, question: q.Order}, gate: q.Gate}
			g.questionSection[uuid.UUID(q.ID)] = uuid.UUID(s.ID)
		}
	}

	// Deterministic edge order keeps messages and traversal stable.
	refs := make([]Ref, 0, len(g.nodes))
	for ref := range g.nodes {
		refs = append(refs, ref)
	}
	sortRefs(refs, g.nodes)

	for _, ref := range refs {
		n := g.nodes[ref]
		if !n.gate.Rule.IsGated() || n.gate.LinkQuestionID == nil {
			continue
		}
		if err := g.addEdge(n); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Graph) addEdge(target *node) error {
	src := QuestionRef(*target.gate.LinkQuestionID)
	from, ok := g.nodes[src]
	if !ok {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("%s %s: question_display_link references a question outside this form", target.ref.Kind, target.ref.ID))
	}
	if link := target.gate.LinkSectionID; link != nil && uuid.UUID(*link) != g.questionSection[src.ID] {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("%s %s: question_display_link does not belong to display_link_section_id", target.ref.Kind, target.ref.ID))
	}
	if !from.pos.before(target.pos) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("%s %s: question_display_link must reference a question placed before it", target.ref.Kind, target.ref.ID))
	}
	g.out[src] = append(g.out[src], target.ref)
	g.in[target.ref]++
	return nil
}

// TopologicalOrder returns every node such that each dependency precedes its
// dependents. It fails if the edges contain a cycle.
func (g *Graph) TopologicalOrder() ([]Ref, error) {
	indegree := make(map[Ref]int, len(g.nodes))
	for ref := range g.nodes {
		indegree[ref] = g.in[ref]
	}

	var ready []Ref
	for ref, d := range indegree {
		if d == 0 {
			ready = append(ready, ref)
		}
	}
	sortRefs(ready, g.nodes)

	order := make([]Ref, 0, len(g.nodes))
	for len(ready) > 0 {
		ref := ready[0]
		ready = ready[1:]
		order = append(order, ref)

		var released []Ref
		for _, next := range g.out[ref] {
			indegree[next]--
			if indegree[next] == 0 {
				released = append(released, next)
			}
		}
		sortRefs(released, g.nodes)
		ready = append(ready, released...)
	}

	if len(order) != len(g.nodes) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "display links form a cycle")
	}
	return order, nil
}

// Dependents lists the nodes gated directly on a question's answer.
func (g *Graph) Dependents(qid id.QuestionID) []Ref {
	deps := g.out[QuestionRef(qid)]
	out := make([]Ref, len(deps))
	copy(out, deps)
	return out
}

// Closure lists every node reachable from a question, following gated
// questions onward: the full cascade a changed answer can affect.
func (g *Graph) Closure(qid id.QuestionID) []Ref {
	start := QuestionRef(qid)
	seen := map[Ref]bool{start: true}
	queue := []Ref{start}
	var out []Ref
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		for _, next := range g.out[ref] {
			if seen[next] {
				continue
			}
			seen[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	sortRefs(out, g.nodes)
	return out
}

// ReferencesTo lists nodes whose gate points at a section, either through
// display_link_section_id or through a question inside it.
func (g *Graph) ReferencesTo(sid id.SectionID) []Ref {
	target := uuid.UUID(sid)
	var out []Ref
	for ref, n := range g.nodes {
		if ref == SectionRef(sid) || !n.gate.Rule.IsGated() {
			continue
		}
		if ref.Kind == KindQuestion && g.questionSection[ref.ID] == target {
			continue
		}
		if n.gate.LinkSectionID != nil && uuid.UUID(*n.gate.LinkSectionID) == target {
			out = append(out, ref)
			continue
		}
		if n.gate.LinkQuestionID != nil && g.questionSection[uuid.UUID(*n.gate.LinkQuestionID)] == target {
			out = append(out, ref)
		}
	}
	sortRefs(out, g.nodes)
	return out
}

func sortRefs(refs []Ref, nodes map[Ref]*node) {
	sort.Slice(refs, func(i, j int) bool {
		a, b := nodes[refs[i]], nodes[refs[j]]
		if a.pos != b.pos {
			return a.pos.before(b.pos)
		}
		return refs[i].ID.String() < refs[j].ID.String()
	})
}
