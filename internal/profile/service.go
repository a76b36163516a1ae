package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/validation"
)

// Service manages the advanced-profile sections of a user.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a profile service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Add validates input and stores a new entry under category.
func (s *Service) Add(ctx context.Context, userID string, category Category, input EntryInput) (Entry, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validation.Struct(input); err != nil {
		return Entry{}, err
	}
	if input.StartedOn != nil && input.EndedOn != nil && input.EndedOn.Before(*input.StartedOn) {
		return Entry{}, apperr.New(apperr.KindValidation, "ended_on must not be before started_on")
	}

	entry := Entry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Category:     category,
		Title:        input.Title,
		Organization: strings.TrimSpace(input.Organization),
		Description:  strings.TrimSpace(input.Description),
		StartedOn:    input.StartedOn,
		EndedOn:      input.EndedOn,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Add(ctx, entry); err != nil {
		return Entry{}, apperr.Internal(err)
	}
	return entry, nil
}

// List returns the entries of one category.
func (s *Service) List(ctx context.Context, userID string, category Category) ([]Entry, error) {
	entries, err := s.repo.List(ctx, userID, category)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Delete removes an entry owned by userID.
func (s *Service) Delete(ctx context.Context, userID string, category Category, id string) error {
	if err := s.repo.Delete(ctx, userID, category, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "profile entry not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// Source is a read-only view of one category used as eligibility evidence.
type Source struct {
	repo     Repository
	category Category
}

// Source returns the evidence view for category.
func (s *Service) Source(category Category) *Source {
	return &Source{repo: s.repo, category: category}
}

// Sources returns evidence views for every category.
func (s *Service) Sources() []*Source {
	out := make([]*Source, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, s.Source(c))
	}
	return out
}

// Name identifies the category in logs and errors.
func (src *Source) Name() string { return string(src.category) }

// Count returns how many entries userID has in the category.
func (src *Source) Count(ctx context.Context, userID string) (int, error) {
	return src.repo.Count(ctx, userID, src.category)
}
