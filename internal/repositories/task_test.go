package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-api/backend/internal/models"
	"go-task-api/backend/internal/repositories"
	"go-task-api/backend/testutil"
)

func newRepo(t *testing.T) *repositories.TaskRepository {
	db := testutil.SetupTestDB(t)
	return repositories.NewTaskRepository(db, testutil.NewTestLogger())
}

func fullInput() *models.TaskInput {
	return &models.TaskInput{
		Task:      models.Some("write report"),
		Completed: models.Some(false),
		DueDate:   models.Some(models.NewDate(2025, time.February, 10)),
		Priority:  models.Some("high"),
		Duration:  models.Some(120),
	}
}

func TestTaskRepository_CreateAndFind(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, fullInput())
	require.NoError(t, err)
	require.NotZero(t, created.TaskID)

	found, err := repo.FindByID(ctx, created.TaskID)
	require.NoError(t, err)
	assert.Equal(t, created, found)
	require.NotNil(t, found.DueDate)
	assert.Equal(t, "2025-02-10", found.DueDate.String())
	assert.Equal(t, "high", *found.Priority)
	assert.Equal(t, 120, *found.Duration)
}

func TestTaskRepository_CreateDefaults(t *testing.T) {
	repo := newRepo(t)

	created, err := repo.Create(context.Background(), &models.TaskInput{})
	require.NoError(t, err)
	assert.False(t, created.Completed)
	assert.Nil(t, created.Task)
	assert.Nil(t, created.DueDate)
	assert.Nil(t, created.Priority)
	assert.Nil(t, created.Duration)
}

func TestTaskRepository_IDsAreNotReused(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, fullInput())
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, first.TaskID))

	second, err := repo.Create(ctx, fullInput())
	require.NoError(t, err)
	assert.Greater(t, second.TaskID, first.TaskID)
}

func TestTaskRepository_Patch(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, fullInput())
	require.NoError(t, err)

	// null と未指定のキーは変更しない
	patched, err := repo.Patch(ctx, created.TaskID, &models.TaskInput{
		Completed: models.Some(true),
		Priority:  models.Null[string](),
	})
	require.NoError(t, err)

	assert.True(t, patched.Completed)
	assert.Equal(t, created.Task, patched.Task)
	assert.Equal(t, created.DueDate, patched.DueDate)
	assert.Equal(t, created.Priority, patched.Priority)
	assert.Equal(t, created.Duration, patched.Duration)
}

func TestTaskRepository_Replace(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, fullInput())
	require.NoError(t, err)

	replaced, err := repo.Replace(ctx, created.TaskID, &models.TaskInput{
		Task:      models.Some("rewrite report"),
		Completed: models.Null[bool](),
		Priority:  models.Null[string](),
	})
	require.NoError(t, err)

	require.NotNil(t, replaced.Task)
	assert.Equal(t, "rewrite report", *replaced.Task)
	assert.False(t, replaced.Completed)
	assert.Nil(t, replaced.Priority, "明示的な null はクリアされる")
	assert.Equal(t, created.DueDate, replaced.DueDate, "未指定のキーは変更されない")
	assert.Equal(t, created.Duration, replaced.Duration)
}

func TestTaskRepository_EmptyUpdateReturnsCurrentRow(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, fullInput())
	require.NoError(t, err)

	patched, err := repo.Patch(ctx, created.TaskID, &models.TaskInput{})
	require.NoError(t, err)
	assert.Equal(t, created, patched)
}

func TestTaskRepository_NotFound(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 404)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)

	_, err = repo.Replace(ctx, 404, fullInput())
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)

	_, err = repo.Patch(ctx, 404, fullInput())
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)

	err = repo.Delete(ctx, 404)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
}

func TestTaskRepository_DeleteThenFind(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, fullInput())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.TaskID))

	_, err = repo.FindByID(ctx, created.TaskID)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
}

func TestTaskRepository_ListAllAndCompleted(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all, "空でも nil ではなく空スライスを返す")
	assert.Empty(t, all)

	var doneIDs []int
	for i, completed := range []bool{true, false, true, false} {
		in := fullInput()
		in.Completed = models.Some(completed)
		in.Duration = models.Some(i)
		created, err := repo.Create(ctx, in)
		require.NoError(t, err)
		if completed {
			doneIDs = append(doneIDs, created.TaskID)
		}
	}

	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].TaskID, all[i].TaskID, "task_id の昇順で返す")
	}

	completed, err := repo.ListCompleted(ctx)
	require.NoError(t, err)
	var gotIDs []int
	for _, task := range completed {
		assert.True(t, task.Completed)
		gotIDs = append(gotIDs, task.TaskID)
	}
	assert.Equal(t, doneIDs, gotIDs)
}

func TestTaskRepository_ClosedDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repositories.NewTaskRepository(db, testutil.NewTestLogger())
	require.NoError(t, db.Close())

	_, err := repo.Create(context.Background(), fullInput())
	require.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrTaskNotFound)

	_, err = repo.ListAll(context.Background())
	require.Error(t, err)
}

func TestTaskRepository_CommitFailureRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repositories.NewTaskRepository(db, testutil.NewTestLogger())
	ctx := context.Background()

	created, err := repo.Create(ctx, fullInput())
	require.NoError(t, err)

	testutil.FailCommitOnUpdate(t, db)

	_, err = repo.Patch(ctx, created.TaskID, &models.TaskInput{Task: models.Some("changed")})
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrCommitFailed)

	_, err = repo.Replace(ctx, created.TaskID, &models.TaskInput{Completed: models.Some(true)})
	assert.ErrorIs(t, err, repositories.ErrCommitFailed)

	// 失敗した更新は一切反映されない
	stored, err := repo.FindByID(ctx, created.TaskID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}
