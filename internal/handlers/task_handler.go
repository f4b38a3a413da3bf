package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-task-api/backend/internal/logger"
	"go-task-api/backend/internal/models"
	"go-task-api/backend/internal/repositories"
	"go-task-api/backend/internal/services"
	"go-task-api/backend/internal/validator"
)

// TaskHandler はTask関連のハンドラーを管理します。
type TaskHandler struct {
	taskService *services.TaskService
	validator   *validator.Validator
	log         logrus.FieldLogger
}

// NewTaskHandler は新しいTaskHandlerを作成します。
func NewTaskHandler(taskService *services.TaskService, v *validator.Validator, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{taskService: taskService, validator: v, log: log}
}

type taskURI struct {
	ID int `uri:"id"`
}

// bindID はパスの {id} を整数として取り出します。失敗した場合は 422 を返します。
func (h *TaskHandler) bindID(c *gin.Context) (int, bool) {
	var uri taskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []validator.FieldError{
			{Field: "task_id", Message: "value is not a valid integer"},
		}})
		return 0, false
	}
	return uri.ID, true
}

// bindTask はボディを検証してデコードします。失敗した場合は 422 を返します。
func (h *TaskHandler) bindTask(c *gin.Context) (*models.TaskInput, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Could not read request body"})
		return nil, false
	}
	in, err := h.validator.DecodeTask(body)
	if err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": ve.Errors})
			return nil, false
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return nil, false
	}
	return in, true
}

// respondError はリポジトリのエラーをHTTPステータスに変換します。
func (h *TaskHandler) respondError(c *gin.Context, err error, message string) {
	if errors.Is(err, repositories.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
		return
	}
	logger.WithRequestID(h.log, c.GetString(logger.RequestIDKey)).WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": message})
}

// GetTasksHandler はすべてのタスクを返します。
func (h *TaskHandler) GetTasksHandler(c *gin.Context) {
	tasks, err := h.taskService.GetTasks(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetCompletedTasksHandler は完了済みのタスクを返します。
func (h *TaskHandler) GetCompletedTasksHandler(c *gin.Context) {
	tasks, err := h.taskService.GetCompletedTasks(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch completed tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTaskByIDHandler は指定IDのタスクを返します。
func (h *TaskHandler) GetTaskByIDHandler(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	task, err := h.taskService.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTaskHandler は新しいタスクを作成します。
func (h *TaskHandler) CreateTaskHandler(c *gin.Context) {
	in, ok := h.bindTask(c)
	if !ok {
		return
	}
	task, err := h.taskService.CreateTask(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTaskHandler は PUT でタスクを更新します。
func (h *TaskHandler) UpdateTaskHandler(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	in, ok := h.bindTask(c)
	if !ok {
		return
	}
	task, err := h.taskService.ReplaceTask(c.Request.Context(), id, in)
	if err != nil {
		h.respondError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// PatchTaskHandler は PATCH でタスクを部分更新します。
func (h *TaskHandler) PatchTaskHandler(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	in, ok := h.bindTask(c)
	if !ok {
		return
	}
	task, err := h.taskService.PatchTask(c.Request.Context(), id, in)
	if err != nil {
		h.respondError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTaskHandler はタスクを削除します。
func (h *TaskHandler) DeleteTaskHandler(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
