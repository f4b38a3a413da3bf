// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"go-task-api/backend/internal/models"
)

var (
	// ErrTaskNotFound は指定IDのタスクが存在しない場合のエラーです。
	ErrTaskNotFound = errors.New("task not found")
	// ErrCommitFailed はコミットに失敗し、ロールバックした場合のエラーです。
	ErrCommitFailed = errors.New("failed to commit transaction")
)

const selectTaskSQL = "SELECT task_id, task, completed, due_date, priority, duration FROM tasks"

// TaskRepository は tasks テーブルを操作します。
type TaskRepository struct {
	DB  *sql.DB
	log logrus.FieldLogger
}

// NewTaskRepository は新しいTaskRepositoryインスタンスを作成します。
func NewTaskRepository(db *sql.DB, log logrus.FieldLogger) *TaskRepository {
	return &TaskRepository{DB: db, log: log}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*models.Task, error) {
	var (
		t        models.Task
		task     sql.NullString
		dueDate  sql.NullTime
		priority sql.NullString
		duration sql.NullInt64
	)
	if err := s.Scan(&t.TaskID, &task, &t.Completed, &dueDate, &priority, &duration); err != nil {
		return nil, err
	}
	if task.Valid {
		t.Task = &task.String
	}
	if dueDate.Valid {
		d := models.NewDate(dueDate.Time.Year(), dueDate.Time.Month(), dueDate.Time.Day())
		t.DueDate = &d
	}
	if priority.Valid {
		t.Priority = &priority.String
	}
	if duration.Valid {
		v := int(duration.Int64)
		t.Duration = &v
	}
	return &t, nil
}

func findByID(ctx context.Context, q queryer, id int) (*models.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, selectTaskSQL+" WHERE task_id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) list(ctx context.Context, where string, args ...any) ([]*models.Task, error) {
	rows, err := r.DB.QueryContext(ctx, selectTaskSQL+where+" ORDER BY task_id", args...)
	if err != nil {
		r.log.WithError(err).Error("Failed to query tasks")
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.log.WithError(err).Error("Failed to scan task")
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// ListAll はすべてのタスクを task_id 順に取得します。
func (r *TaskRepository) ListAll(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, "")
}

// ListCompleted は completed が true のタスクのみを取得します。
func (r *TaskRepository) ListCompleted(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, " WHERE completed = ?", true)
}

// FindByID は指定IDのタスクを取得します。
func (r *TaskRepository) FindByID(ctx context.Context, id int) (*models.Task, error) {
	return findByID(ctx, r.DB, id)
}

// withTx は fn を1つのトランザクション内で実行します。
// fn がエラーを返した場合、またはコミットに失敗した場合はロールバックします。
func (r *TaskRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.WithError(rbErr).Error("Failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.log.WithError(rbErr).Error("Failed to roll back transaction")
		}
		r.log.WithError(err).Error("Failed to commit transaction")
		return fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	return nil
}

// Create は新しいタスクを挿入し、採番された task_id を含むタスクを返します。
func (r *TaskRepository) Create(ctx context.Context, in *models.TaskInput) (*models.Task, error) {
	t := in.NewTask()
	query := "INSERT INTO tasks (task, completed, due_date, priority, duration) VALUES (?, ?, ?, ?, ?)"

	var created *models.Task
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, t.Task, t.Completed, t.DueDate, t.Priority, t.Duration)
		if err != nil {
			r.log.WithError(err).Error("Failed to insert task")
			return fmt.Errorf("could not insert task: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("could not get last insert ID: %w", err)
		}
		created, err = findByID(ctx, tx, int(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Replace は PUT の更新を行います。
// リクエストに含まれるキーはすべて書き込み (null はクリア)、含まれないキーは変更しません。
func (r *TaskRepository) Replace(ctx context.Context, id int, in *models.TaskInput) (*models.Task, error) {
	return r.update(ctx, id, assignments(in, false))
}

// Patch は部分更新を行います。null または未指定のキーは変更しません。
func (r *TaskRepository) Patch(ctx context.Context, id int, in *models.TaskInput) (*models.Task, error) {
	return r.update(ctx, id, assignments(in, true))
}

func (r *TaskRepository) update(ctx context.Context, id int, sets []assignment) (*models.Task, error) {
	var updated *models.Task
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := findByID(ctx, tx, id); err != nil {
			return err
		}

		if len(sets) > 0 {
			clauses := make([]string, 0, len(sets))
			args := make([]any, 0, len(sets)+1)
			for _, s := range sets {
				clauses = append(clauses, s.column+" = ?")
				args = append(args, s.value)
			}
			args = append(args, id)

			query := "UPDATE tasks SET " + strings.Join(clauses, ", ") + " WHERE task_id = ?"
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				r.log.WithError(err).WithField("task_id", id).Error("Failed to update task")
				return fmt.Errorf("could not update task: %w", err)
			}
		}

		var err error
		updated, err = findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は指定IDのタスクを削除します。削除対象がない場合は ErrTaskNotFound を返します。
func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE task_id = ?", id)
		if err != nil {
			r.log.WithError(err).WithField("task_id", id).Error("Failed to delete task")
			return fmt.Errorf("could not delete task: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("could not get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// assignment は UPDATE 文の1つの "column = ?" です。
type assignment struct {
	column string
	value  any
}

// assignments はリクエストで指定された項目を UPDATE の代入に変換します。
// skipNull が true の場合は null の項目を無視します (PATCH)。
func assignments(in *models.TaskInput, skipNull bool) []assignment {
	var out []assignment
	out = appendField(out, "task", in.Task, skipNull, nil)
	// completed は NOT NULL なので null はデフォルト値の false に戻す
	out = appendField(out, "completed", in.Completed, skipNull, false)
	out = appendField(out, "due_date", in.DueDate, skipNull, nil)
	out = appendField(out, "priority", in.Priority, skipNull, nil)
	out = appendField(out, "duration", in.Duration, skipNull, nil)
	return out
}

func appendField[T any](out []assignment, column string, f models.Field[T], skipNull bool, nullValue any) []assignment {
	if !f.Set {
		return out
	}
	if f.Null {
		if skipNull {
			return out
		}
		return append(out, assignment{column: column, value: nullValue})
	}
	return append(out, assignment{column: column, value: f.Value})
}
