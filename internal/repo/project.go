package repo

import (
	"context"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

func (r *TrackerRepo) CreateProject(ctx context.Context, p model.NewProject) (model.Project, error) {
	var out model.Project
	err := r.pool.QueryRow(ctx, `
		INSERT INTO projects (name, key, category, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, key, category, description, created_at
	`, p.Name, p.Key, p.Category, p.Description).Scan(
		&out.ID, &out.Name, &out.Key, &out.Category, &out.Description, &out.CreatedAt,
	)
	return out, r.mapError(err)
}

func (r *TrackerRepo) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, key, category, description, created_at
		FROM projects
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Key, &p.Category, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
