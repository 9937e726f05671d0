package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jmichels/tripflow/internal/domain"
	"github.com/jmichels/tripflow/internal/repo"
)

// PlanService implements business logic for plan CRUD.
type PlanService struct {
	repo repo.PlanRepo
}

// NewPlanService constructs a PlanService backed by the provided PlanRepo.
func NewPlanService(r repo.PlanRepo) *PlanService {
	return &PlanService{repo: r}
}

// Create validates and persists a new plan.
// Returns domain.ErrValidation if input violates business rules.
func (s *PlanService) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	if err := validatePlan(plan); err != nil {
		return domain.Plan{}, err
	}
	result, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single plan by ID.
// Returns domain.ErrNotFound if no plan with that ID exists.
func (s *PlanService) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	result, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.GetByID: %w", err)
	}
	return result, nil
}

// validatePlan enforces the plan invariants:
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Day numbers must be unique and contiguous from 1, in order.
//   - Activity costs must not be negative.
func validatePlan(plan domain.Plan) error {
	if strings.TrimSpace(plan.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	for i, day := range plan.Days {
		if day.Number != i+1 {
			return fmt.Errorf("%w: day numbers must be contiguous from 1", domain.ErrValidation)
		}
		for _, a := range day.Activities {
			if a.Cost < 0 {
				return fmt.Errorf("%w: activity cost must not be negative", domain.ErrValidation)
			}
		}
	}
	return nil
}
