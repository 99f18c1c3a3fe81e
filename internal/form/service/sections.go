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

type CreateSectionRequest struct {
	Title string
	Order int
	Gate  models.Gate
}

type UpdateSectionRequest struct {
	Title string
	Gate  models.Gate
}

// CreateSection inserts a section at Order, shifting later sections down.
func (s *Service) CreateSection(ctx context.Context, formID id.FormID, req CreateSectionRequest) (*models.Section, error) {
	var created *models.Section
	err := s.mutate(ctx, "create_section", formID, func(ctx context.Context, st Store, form *models.Form) error {
		snap, err := loadSnapshot(ctx, st, form.ID)
		if err != nil {
			return err
		}
		if err := models.ValidateInsertOrder(req.Order, len(snap.sections), "order"); err != nil {
			return asValidation(err)
		}
		section, err := models.NewSection(id.NewSectionID(), form.ID, req.Title, req.Order, req.Gate, requestcontext.Now(ctx))
		if err != nil {
			return asValidation(err)
		}

		snap.insertSection(*section)
		if _, err := snap.check(); err != nil {
			return err
		}
		if err := st.InsertSection(ctx, section); err != nil {
			return translate(err, "section")
		}
		created = section
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionSectionCreated,
		"form_id", formID,
		"section_id", created.ID,
		"order", created.Order,
	)
	return created, nil
}

func (s *Service) UpdateSection(ctx context.Context, sectionID id.SectionID, req UpdateSectionRequest) (*models.Section, error) {
	formID, err := s.sectionForm(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	var updated *models.Section
	err = s.mutate(ctx, "update_section", formID, func(ctx context.Context, st Store, form *models.Form) error {
		current, err := st.FindSection(ctx, sectionID)
		if err != nil {
			return translate(err, "section")
		}
		next, err := models.NewSection(current.ID, current.FormID, req.Title, current.Order, req.Gate, requestcontext.Now(ctx))
		if err != nil {
			return asValidation(err)
		}
		next.CreatedAt = current.CreatedAt

		snap, err := loadSnapshot(ctx, st, form.ID)
		if err != nil {
			return err
		}
		target := snap.section(sectionID)
		target.Title, target.Gate = next.Title, next.Gate
		if _, err := snap.check(); err != nil {
			return err
		}
		if err := st.UpdateSection(ctx, next); err != nil {
			return translate(err, "section")
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionSectionUpdated, "form_id", formID, "section_id", sectionID)
	return updated, nil
}

// DeleteSection removes a section and its questions, then closes the order
// gap. Sections whose questions drive other display rules cannot be deleted.
func (s *Service) DeleteSection(ctx context.Context, sectionID id.SectionID) error {
	formID, err := s.sectionForm(ctx, sectionID)
	if err != nil {
		return err
	}

	err = s.mutate(ctx, "delete_section", formID, func(ctx context.Context, st Store, form *models.Form) error {
		snap, err := loadSnapshot(ctx, st, form.ID)
		if err != nil {
			return err
		}
		section := snap.section(sectionID)
		if section == nil {
			return dErrors.New(dErrors.CodeNotFound, "section not found")
		}
		g, err := snap.check()
		if err != nil {
			return err
		}
		if refs := g.ReferencesTo(sectionID); len(refs) > 0 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
				"section %s is referenced by the display rules of %s", sectionID, describe(refs)))
		}
		if form.EmailQuestionID != nil {
			for _, q := range section.Questions {
				if q.ID == *form.EmailQuestionID {
					return dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
						"section %s holds the form's email_question_id", sectionID))
				}
			}
		}
		if err := st.DeleteSection(ctx, sectionID); err != nil {
			return translate(err, "section")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, audit.ActionSectionDeleted, "form_id", formID, "section_id", sectionID)
	return nil
}

// ReorderSections applies a full permutation of section orders. The result
// must keep every display link pointing backwards.
func (s *Service) ReorderSections(ctx context.Context, formID id.FormID, changes []models.OrderChange[id.SectionID]) error {
	err := s.mutate(ctx, "reorder_sections", formID, func(ctx context.Context, st Store, form *models.Form) error {
		snap, err := loadSnapshot(ctx, st, form.ID)
		if err != nil {
			return err
		}
		current := make([]id.SectionID, len(snap.sections))
		for i, sec := range snap.sections {
			current[i] = sec.ID
		}
		orders, err := models.ValidatePermutation(current, changes, "section")
		if err != nil {
			return asValidation(err)
		}

		for i := range snap.sections {
			snap.sections[i].Order = orders[snap.sections[i].ID]
		}
		if _, err := snap.check(); err != nil {
			return err
		}
		if err := st.SetSectionOrders(ctx, form.ID, orders); err != nil {
			return translate(err, "section")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, audit.ActionSectionsReordered, "form_id", formID, "count", len(changes))
	return nil
}

func (s *Service) GetSection(ctx context.Context, sectionID id.SectionID) (*models.Section, error) {
	section, err := s.store.FindSection(ctx, sectionID)
	if err != nil {
		return nil, translate(err, "section")
	}
	return section, nil
}

// sectionForm resolves the owning form so the mutation can lock it.
func (s *Service) sectionForm(ctx context.Context, sectionID id.SectionID) (id.FormID, error) {
	section, err := s.store.FindSection(ctx, sectionID)
	if err != nil {
		return id.FormID{}, translate(err, "section")
	}
	return section.FormID, nil
}
