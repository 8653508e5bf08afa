package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"projectboard/models"
)

// ProjectStore is the CRUD collaborator behind the dashboard. Update and
// Delete report ErrNotFound when the id does not exist, so a stale edit
// form cannot silently do nothing.
type ProjectStore interface {
	GetAll(ctx context.Context) ([]models.Project, error)
	GetByID(ctx context.Context, id int) (*models.Project, error)
	Create(ctx context.Context, p models.Project) error
	Update(ctx context.Context, id int, p models.Project) error
	Delete(ctx context.Context, id int) error
}

type PgProjectStore struct {
	DB *pgxpool.Pool
}

func (s *PgProjectStore) GetAll(ctx context.Context) ([]models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "SELECT id, name, description, leader, budget, start_date, end_date, completed FROM projects ORDER BY id;"
	rows, err := s.DB.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: listing projects: %v", ErrPersistence, err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Leader, &p.Budget, &p.StartDate, &p.EndDate, &p.Completed); err != nil {
			return nil, fmt.Errorf("%w: scanning project row: %v", ErrPersistence, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading project rows: %v", ErrPersistence, err)
	}
	return projects, nil
}

func (s *PgProjectStore) GetByID(ctx context.Context, id int) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "SELECT id, name, description, leader, budget, start_date, end_date, completed FROM projects WHERE id = $1;"
	row := s.DB.QueryRow(ctx, stmt, id)

	var p models.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Leader, &p.Budget, &p.StartDate, &p.EndDate, &p.Completed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching project %d: %v", ErrPersistence, id, err)
	}
	return &p, nil
}

func (s *PgProjectStore) Create(ctx context.Context, p models.Project) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := `INSERT INTO projects (name, description, leader, budget, start_date, end_date, completed)
	         VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := s.DB.Exec(ctx, stmt, p.Name, p.Description, p.Leader, p.Budget, p.StartDate, p.EndDate, p.Completed)
	if err != nil {
		return fmt.Errorf("%w: inserting project: %v", ErrPersistence, err)
	}
	return nil
}

func (s *PgProjectStore) Update(ctx context.Context, id int, p models.Project) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := `UPDATE projects
	         SET name = $1, description = $2, leader = $3, budget = $4, start_date = $5, end_date = $6, completed = $7
	         WHERE id = $8;`
	tag, err := s.DB.Exec(ctx, stmt, p.Name, p.Description, p.Leader, p.Budget, p.StartDate, p.EndDate, p.Completed, id)
	if err != nil {
		return fmt.Errorf("%w: updating project %d: %v", ErrPersistence, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgProjectStore) Delete(ctx context.Context, id int) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := s.DB.Exec(ctx, "DELETE FROM projects WHERE id = $1;", id)
	if err != nil {
		return fmt.Errorf("%w: deleting project %d: %v", ErrPersistence, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
