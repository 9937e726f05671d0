package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmichels/tripflow/internal/domain"
	"github.com/jmichels/tripflow/internal/service"
)

func validPlan() domain.Plan {
	return domain.Plan{
		Name: "Porto Getaway",
		Days: []domain.Day{
			{Number: 1, Activities: []domain.Activity{{Name: "Ribeira walk"}}},
			{Number: 2, Activities: []domain.Activity{}},
		},
	}
}

func TestPlanService_Create_OK(t *testing.T) {
	svc := service.NewPlanService(newMockPlanRepo())

	got, err := svc.Create(context.Background(), validPlan())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
}

func TestPlanService_Create_NameRequired(t *testing.T) {
	svc := service.NewPlanService(newMockPlanRepo())

	plan := validPlan()
	plan.Name = "   "

	_, err := svc.Create(context.Background(), plan)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanService_Create_NonContiguousDays(t *testing.T) {
	svc := service.NewPlanService(newMockPlanRepo())

	plan := validPlan()
	plan.Days[1].Number = 5

	_, err := svc.Create(context.Background(), plan)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanService_Create_NegativeCost(t *testing.T) {
	svc := service.NewPlanService(newMockPlanRepo())

	plan := validPlan()
	plan.Days[0].Activities[0].Cost = -1

	_, err := svc.Create(context.Background(), plan)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanService_GetByID_OK(t *testing.T) {
	repoMock := newMockPlanRepo()
	created, err := repoMock.CreatePlan(context.Background(), validPlan())
	require.NoError(t, err)

	svc := service.NewPlanService(repoMock)

	got, err := svc.GetByID(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestPlanService_GetByID_NotFound(t *testing.T) {
	svc := service.NewPlanService(newMockPlanRepo())

	_, err := svc.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
