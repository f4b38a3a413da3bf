package services

import (
	"context"

	"go-task-api/backend/internal/models"
	"go-task-api/backend/internal/repositories"
)

// TaskService はTask関連のビジネスロジックを扱います。
type TaskService struct {
	taskRepo *repositories.TaskRepository
}

// NewTaskService は新しいTaskServiceを作成します。
func NewTaskService(taskRepo *repositories.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// GetTasks はすべてのタスクを取得します。
func (s *TaskService) GetTasks(ctx context.Context) ([]*models.Task, error) {
	return s.taskRepo.ListAll(ctx)
}

// GetCompletedTasks は完了済みのタスクを取得します。
func (s *TaskService) GetCompletedTasks(ctx context.Context) ([]*models.Task, error) {
	return s.taskRepo.ListCompleted(ctx)
}

// GetTaskByID は指定IDのタスクを取得します。
func (s *TaskService) GetTaskByID(ctx context.Context, id int) (*models.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

// CreateTask は新しいタスクを作成します。
func (s *TaskService) CreateTask(ctx context.Context, in *models.TaskInput) (*models.Task, error) {
	return s.taskRepo.Create(ctx, in)
}

// ReplaceTask は指定された項目をすべて書き込みます (PUT)。
func (s *TaskService) ReplaceTask(ctx context.Context, id int, in *models.TaskInput) (*models.Task, error) {
	return s.taskRepo.Replace(ctx, id, in)
}

// PatchTask は null でない項目のみを更新します (PATCH)。
func (s *TaskService) PatchTask(ctx context.Context, id int, in *models.TaskInput) (*models.Task, error) {
	return s.taskRepo.Patch(ctx, id, in)
}

// DeleteTask はタスクを削除します。
func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	return s.taskRepo.Delete(ctx, id)
}
