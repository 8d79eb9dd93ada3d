package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Todo is a single list entry. ParentID links it under another todo;
// nil means top-level.
type Todo struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Done        bool    `json:"done" db:"done"`
	Description *string `json:"description" db:"description"`
	Date        *string `json:"date" db:"date"`
	ParentID    *int64  `json:"parent_id" db:"parent_id"`
}

// ListFilter restricts ListTodos to an inclusive date range. Todos without
// a date are excluded by either bound.
type ListFilter struct {
	DateLess *string
	DateMore *string
}

const todoColumns = "id, name, done, description, date, parent_id"

// CreateTodo inserts a new todo with done=false and returns the stored row.
func (s *Store) CreateTodo(ctx context.Context, t Todo) (Todo, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return Todo{}, ErrNameRequired
	}
	date, err := normalizeDate(t.Date)
	if err != nil {
		return Todo{}, err
	}

	if t.ParentID != nil {
		var exists bool
		err := s.db.GetContext(ctx, &exists,
			s.db.Rebind("SELECT EXISTS(SELECT 1 FROM todos WHERE id = ?)"), *t.ParentID)
		if err != nil {
			return Todo{}, fmt.Errorf("checking parent %d: %w", *t.ParentID, err)
		}
		if !exists {
			return Todo{}, fmt.Errorf("parent %d: %w", *t.ParentID, ErrNotFound)
		}
	}

	var created Todo
	err = s.db.GetContext(ctx, &created,
		s.db.Rebind(`INSERT INTO todos (name, description, date, parent_id)
			VALUES (?, ?, ?, ?) RETURNING `+todoColumns),
		t.Name, t.Description, date, t.ParentID)
	if err != nil {
		return Todo{}, fmt.Errorf("creating todo: %w", err)
	}
	return created, nil
}

// ListTodos returns all todos (optionally date-filtered) ordered by id, so
// insertion order is stable across reads.
func (s *Store) ListTodos(ctx context.Context, filter ListFilter) ([]Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos"
	var conds []string
	var args []any

	if filter.DateMore != nil {
		more, err := normalizeDate(filter.DateMore)
		if err != nil {
			return nil, err
		}
		if more != nil {
			conds = append(conds, "date >= ?")
			args = append(args, *more)
		}
	}
	if filter.DateLess != nil {
		less, err := normalizeDate(filter.DateLess)
		if err != nil {
			return nil, err
		}
		if less != nil {
			conds = append(conds, "date <= ?")
			args = append(args, *less)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	var todos []Todo
	if err := s.db.SelectContext(ctx, &todos, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	return todos, nil
}

// ToggleTodo flips done on exactly one todo and returns the new state.
// Children are left untouched; each todo's completion is independent.
func (s *Store) ToggleTodo(ctx context.Context, id int64) (bool, error) {
	var done bool
	err := s.db.GetContext(ctx, &done,
		s.db.Rebind("UPDATE todos SET done = NOT done WHERE id = ? RETURNING done"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("toggling todo %d: %w", id, err)
	}
	return done, nil
}

// DeleteTodo removes a todo. Descendants go with it via the parent_id
// ON DELETE CASCADE.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return nil
}

// normalizeDate trims the date and validates it as YYYY-MM-DD. An empty
// string collapses to nil (the HTML date input submits "" when cleared).
func normalizeDate(date *string) (*string, error) {
	if date == nil {
		return nil, nil
	}
	d := strings.TrimSpace(*date)
	if d == "" {
		return nil, nil
	}
	if _, err := time.Parse("2006-01-02", d); err != nil {
		return nil, fmt.Errorf("%q: %w", d, ErrBadDate)
	}
	return &d, nil
}
