package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-api/backend/internal/models"
)

func TestTaskInput_TriState(t *testing.T) {
	var in models.TaskInput
	err := json.Unmarshal([]byte(`{"task": "buy milk", "priority": null, "unknown": 1}`), &in)
	require.NoError(t, err)

	v, ok := in.Task.Get()
	assert.True(t, ok)
	assert.Equal(t, "buy milk", v)

	assert.True(t, in.Priority.Set, "null のキーは指定ありとして扱う")
	assert.True(t, in.Priority.Null)
	_, ok = in.Priority.Get()
	assert.False(t, ok)

	assert.False(t, in.Completed.Set, "存在しないキーは未指定")
	assert.False(t, in.Duration.Set)
	assert.False(t, in.DueDate.Set)
}

func TestTaskInput_Coercion(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		completed bool
		duration  int
		task      string
	}{
		{"native types", `{"completed": true, "duration": 30, "task": "a"}`, true, 30, "a"},
		{"string bool and int", `{"completed": "yes", "duration": "45", "task": "b"}`, true, 45, "b"},
		{"numeric bool", `{"completed": 0, "duration": 15.0, "task": "c"}`, false, 15, "c"},
		{"number as text", `{"completed": "OFF", "duration": " 7 ", "task": 12}`, false, 7, "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in models.TaskInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))

			completed, ok := in.Completed.Get()
			require.True(t, ok)
			assert.Equal(t, tt.completed, completed)

			duration, ok := in.Duration.Get()
			require.True(t, ok)
			assert.Equal(t, tt.duration, duration)

			task, ok := in.Task.Get()
			require.True(t, ok)
			assert.Equal(t, tt.task, task)
		})
	}
}

func TestTaskInput_CoercionErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bool from word", `{"completed": "maybe"}`, "completed"},
		{"bool from number", `{"completed": 2}`, "completed"},
		{"int from fraction", `{"duration": 1.5}`, "duration"},
		{"int from text", `{"duration": "ten"}`, "duration"},
		{"int overflow", `{"duration": 9223372036854775808}`, "duration"},
		{"int overflow from text", `{"duration": "9223372036854775808"}`, "duration"},
		{"int overflow as float", `{"duration": 9.3e18}`, "duration"},
		{"date format", `{"due_date": "15/01/2025"}`, "due_date"},
		{"string from object", `{"task": {"a": 1}}`, "task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in models.TaskInput
			err := json.Unmarshal([]byte(tt.body), &in)
			require.Error(t, err)

			var fe *models.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var in models.TaskInput
	require.NoError(t, json.Unmarshal([]byte(`{"due_date": "2025-01-15"}`), &in))

	d, ok := in.DueDate.Get()
	require.True(t, ok)
	assert.Equal(t, models.NewDate(2025, time.January, 15), d)

	out, err := json.Marshal(models.Task{TaskID: 1, DueDate: &d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"task_id":1,"task":null,"completed":false,"due_date":"2025-01-15","priority":null,"duration":null}`, string(out))
}

func TestTaskInput_NewTask(t *testing.T) {
	in := models.TaskInput{
		Task:      models.Some("write report"),
		Completed: models.Null[bool](),
		Duration:  models.Some(90),
	}

	task := in.NewTask()
	require.NotNil(t, task.Task)
	assert.Equal(t, "write report", *task.Task)
	assert.False(t, task.Completed, "null の completed はデフォルトの false")
	require.NotNil(t, task.Duration)
	assert.Equal(t, 90, *task.Duration)
	assert.Nil(t, task.Priority)
	assert.Nil(t, task.DueDate)
}
