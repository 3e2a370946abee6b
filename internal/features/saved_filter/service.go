package saved_filter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/features/filter"
	"go-crm-funnel/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrInvalidFilter = errors.New("invalid saved filter")
	ErrWrongModule   = errors.New("saved filter belongs to another module")
)

type SavedFilterService interface {
	CreateFilter(ctx context.Context, filter *SavedFilter) error
	GetFilter(ctx context.Context, id string) (*SavedFilter, error)
	DeleteFilter(ctx context.Context, id string) error
	ListFilters(ctx context.Context, moduleName string) ([]SavedFilter, error)
	// Criteria resolves a filter for a list endpoint; it satisfies
	// filter.SavedLookup.
	Criteria(ctx context.Context, id, moduleName string, facetNames []string) (filter.Criteria, error)
}

type SavedFilterServiceImpl struct {
	FilterRepo SavedFilterRepository
	Now        func() time.Time
}

func NewSavedFilterService(filterRepo SavedFilterRepository) SavedFilterService {
	return &SavedFilterServiceImpl{
		FilterRepo: filterRepo,
		Now:        time.Now,
	}
}

func currentUser(ctx context.Context) (string, error) {
	claims, ok := utils.ClaimsFromContext(ctx)
	if !ok || claims.UserID == "" {
		return "", common_models.ErrForbidden
	}
	return claims.UserID, nil
}

func (s *SavedFilterServiceImpl) CreateFilter(ctx context.Context, f *SavedFilter) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}

	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFilter)
	}
	if !slices.Contains(Modules, f.ModuleName) {
		return fmt.Errorf("%w: unknown module %q", ErrInvalidFilter, f.ModuleName)
	}
	// Dates are validated now so a stored filter can always be applied
	if _, err := filter.ParseQuery(f.Values(), nil); err != nil {
		return err
	}

	now := s.Now().UTC()
	f.ID = uuid.NewString()
	f.Slug = utils.Slugify(f.Name)
	f.UserID = userID
	f.CreatedAt = now
	f.UpdatedAt = now
	return s.FilterRepo.Create(ctx, f)
}

func (s *SavedFilterServiceImpl) GetFilter(ctx context.Context, id string) (*SavedFilter, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.FilterRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Private filters of other users are reported as missing
	if !f.VisibleTo(userID) {
		return nil, common_models.ErrNotFound
	}
	return f, nil
}

func (s *SavedFilterServiceImpl) DeleteFilter(ctx context.Context, id string) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	f, err := s.GetFilter(ctx, id)
	if err != nil {
		return err
	}
	if f.UserID != userID {
		return common_models.ErrForbidden
	}
	return s.FilterRepo.Delete(ctx, id)
}

func (s *SavedFilterServiceImpl) ListFilters(ctx context.Context, moduleName string) ([]SavedFilter, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.FilterRepo.FindVisible(ctx, userID, moduleName)
}

func (s *SavedFilterServiceImpl) Criteria(ctx context.Context, id, moduleName string, facetNames []string) (filter.Criteria, error) {
	f, err := s.GetFilter(ctx, id)
	if err != nil {
		return filter.Criteria{}, err
	}
	if f.ModuleName != moduleName {
		return filter.Criteria{}, fmt.Errorf("%w: %s", ErrWrongModule, f.ModuleName)
	}
	return filter.ParseQuery(f.Values(), facetNames)
}
