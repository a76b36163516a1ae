package template

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/validation"
)

var errNotFound = apperr.New(apperr.KindNotFound, "template not found")

// Service manages draft and published template content.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a template service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a template whose content starts as a draft.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (Template, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validation.Struct(input); err != nil {
		return Template{}, err
	}
	now := s.now().UTC()
	t := Template{
		ID:                 uuid.NewString(),
		OwnerID:            ownerID,
		DraftedTitle:       input.Title,
		DraftedDescription: strings.TrimSpace(input.Description),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Template{}, apperr.Internal(err)
	}
	return t, nil
}

// Get returns a template owned by ownerID. Templates of other owners are
// reported as missing.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Template, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Template{}, errNotFound
		}
		return Template{}, apperr.Internal(err)
	}
	if t.OwnerID != ownerID {
		return Template{}, errNotFound
	}
	return t, nil
}

// Update applies the provided fields only.
func (s *Service) Update(ctx context.Context, ownerID string, input UpdateInput) (Template, error) {
	if err := validation.Struct(input); err != nil {
		return Template{}, err
	}
	t, err := s.Get(ctx, ownerID, input.TemplateID)
	if err != nil {
		return Template{}, err
	}
	input.apply(&t)
	return s.save(ctx, t)
}

// Publish promotes drafts to the published fields and clears them.
func (s *Service) Publish(ctx context.Context, ownerID, id string) (Template, error) {
	t, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return Template{}, err
	}
	t.publish()
	return s.save(ctx, t)
}

func (s *Service) save(ctx context.Context, t Template) (Template, error) {
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, t); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Template{}, errNotFound
		}
		return Template{}, apperr.Internal(err)
	}
	return t, nil
}
