package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/google/uuid"
)

// SQLiteRepository implements todo storage for the embedded file store.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	id := uuid.NewString()
	createdAt := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, user_id, title, completed, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, todo.UserID, todo.Title, todo.Completed, createdAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	todo.ID = id
	todo.CreatedAt = createdAt
	return todo, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Todo, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, completed, created_at FROM todos WHERE id = ?`, id)

	todo, err := scanSQLiteTodo(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]*models.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, completed, created_at FROM todos
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select todos: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Todo, 0)
	for rows.Next() {
		todo, err := scanSQLiteTodo(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, completed = ? WHERE id = ?`,
		todo.Title, todo.Completed, todo.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return nil, err
	}
	return r.Get(ctx, todo.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func scanSQLiteTodo(scan func(dest ...any) error) (*models.Todo, error) {
	todo := &models.Todo{}
	var createdAt int64
	if err := scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Completed, &createdAt); err != nil {
		return nil, err
	}
	todo.CreatedAt = time.Unix(0, createdAt).UTC()
	return todo, nil
}
