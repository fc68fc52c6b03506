package repo

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

type TrackerRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTrackerRepo(pool *pgxpool.Pool) *TrackerRepo {
	return &TrackerRepo{
		pool: pool,
	}
}

const issueColumns = `
	i.id, p.key || '-' || i.seq, i.title, i.type, i.status,
	i.assignee, i.reporter, i.priority, i.created_at`

func scanIssue(row pgx.Row) (model.Task, error) {
	var (
		t  model.Task
		id int64
	)
	err := row.Scan(&id, &t.Key, &t.Title, &t.Type, &t.Status, &t.Assignee, &t.Reporter, &t.Priority, &t.CreatedAt)
	t.ID = strconv.FormatInt(id, 10)
	return t, err
}

func (r *TrackerRepo) ListIssues(ctx context.Context, projectKey string) ([]model.Task, error) {
	var projectID int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM projects WHERE key = $1`, projectKey).Scan(&projectID)
	if err == pgx.ErrNoRows {
		return nil, ErrorNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+issueColumns+`
		FROM issues i
		JOIN projects p ON p.id = i.project_id
		WHERE i.project_id = $1
		ORDER BY i.id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateIssue takes the next sequence number of the project and inserts the
// issue in one transaction, so keys never repeat or go backwards.
func (r *TrackerRepo) CreateIssue(ctx context.Context, projectKey string, t model.NewTask) (model.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Task{}, err
	}
	defer tx.Rollback(ctx)

	var projectID, seq int64
	err = tx.QueryRow(ctx, `
		UPDATE projects SET issue_seq = issue_seq + 1
		WHERE key = $1
		RETURNING id, issue_seq
	`, projectKey).Scan(&projectID, &seq)
	if err == pgx.ErrNoRows {
		return model.Task{}, ErrorNotFound
	}
	if err != nil {
		return model.Task{}, err
	}

	task, err := scanIssue(tx.QueryRow(ctx, `
		WITH i AS (
			INSERT INTO issues (project_id, seq, title, type, status, assignee, reporter, priority)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		)
		SELECT `+issueColumns+`
		FROM i JOIN projects p ON p.id = i.project_id
	`, projectID, seq, t.Title, t.Type, t.Status, t.Assignee, t.Reporter, t.Priority))
	if err != nil {
		return model.Task{}, r.mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (r *TrackerRepo) UpdateIssueStatus(ctx context.Context, id int64, status string) (model.Task, error) {
	task, err := scanIssue(r.pool.QueryRow(ctx, `
		WITH i AS (
			UPDATE issues
			SET status = $2, version = version + 1, updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+issueColumns+`
		FROM i JOIN projects p ON p.id = i.project_id
	`, id, status))

	if err == pgx.ErrNoRows {
		return task, ErrorNotFound
	}
	return task, err
}

func (r *TrackerRepo) DeleteIssue(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM issues WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TrackerRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}
