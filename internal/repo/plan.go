// Package repo contains all database access logic for the TripFlow API.
// The itinerary is persisted as a single jsonb document per plan: the core
// reads the whole plan once per turn and writes it once per confirmed batch,
// so there is nothing to gain from normalizing days and activities into rows.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jmichels/tripflow/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PlanRepo defines the persistence operations for plans. The service layer
// depends on this interface, not the concrete Postgres implementation, which
// allows the service to be unit-tested with a mock.
type PlanRepo interface {
	// CreatePlan inserts a new plan and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// GetPlan retrieves a single plan by its UUID primary key.
	// Returns domain.ErrNotFound if no plan with that ID exists.
	GetPlan(ctx context.Context, id uuid.UUID) (domain.Plan, error)

	// PutPlan overwrites the mutable fields of an existing plan.
	// Returns domain.ErrNotFound if no plan with that ID exists.
	PutPlan(ctx context.Context, plan domain.Plan) error
}

// pgPlanRepo is the Postgres implementation of PlanRepo.
type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

func (r *pgPlanRepo) CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	const q = `
		INSERT INTO trip_plans (name, days, estimated_cost)
		VALUES (@name, @days, @estimated_cost)
		RETURNING id, name, days, estimated_cost, created_at, updated_at`

	days, err := marshalDays(plan.Days)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.CreatePlan: %w", err)
	}

	args := pgx.NamedArgs{
		"name":           plan.Name,
		"days":           days,
		"estimated_cost": plan.EstimatedCost,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanPlan(row)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.CreatePlan: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) GetPlan(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	const q = `
		SELECT id, name, days, estimated_cost, created_at, updated_at
		FROM trip_plans
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanPlan(row)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetPlan: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) PutPlan(ctx context.Context, plan domain.Plan) error {
	const q = `
		UPDATE trip_plans
		SET name           = @name,
		    days           = @days,
		    estimated_cost = @estimated_cost,
		    updated_at     = now()
		WHERE id = @id`

	days, err := marshalDays(plan.Days)
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.PutPlan: %w", err)
	}

	args := pgx.NamedArgs{
		"id":             plan.ID,
		"name":           plan.Name,
		"days":           days,
		"estimated_cost": plan.EstimatedCost,
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.PutPlan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlanRepo.PutPlan: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanPlan to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanPlan maps a single database row into a domain.Plan, unmarshalling the
// jsonb days document.
func scanPlan(s scanner) (domain.Plan, error) {
	var (
		p    domain.Plan
		id   pgtype.UUID
		days []byte
	)

	err := s.Scan(&id, &p.Name, &days, &p.EstimatedCost, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Plan{}, domain.ErrNotFound
		}
		return domain.Plan{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	if len(days) > 0 {
		if err := json.Unmarshal(days, &p.Days); err != nil {
			return domain.Plan{}, fmt.Errorf("unmarshal days: %w", err)
		}
	}
	if p.Days == nil {
		p.Days = []domain.Day{}
	}

	return p, nil
}

func marshalDays(days []domain.Day) ([]byte, error) {
	if days == nil {
		days = []domain.Day{}
	}
	b, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("marshal days: %w", err)
	}
	return b, nil
}
