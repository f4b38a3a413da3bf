package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-api/backend/internal/validator"
)

func newValidator(t *testing.T) *validator.Validator {
	t.Helper()
	v, err := validator.New()
	require.NoError(t, err)
	return v
}

func TestDecodeTask_Valid(t *testing.T) {
	v := newValidator(t)

	in, err := v.DecodeTask([]byte(`{"task":"buy milk","priority":"low","due_date":"2025-03-01","duration":"20","completed":"true","extra":[1,2]}`))
	require.NoError(t, err)

	task, _ := in.Task.Get()
	assert.Equal(t, "buy milk", task)
	priority, _ := in.Priority.Get()
	assert.Equal(t, "low", priority)
	due, ok := in.DueDate.Get()
	require.True(t, ok)
	assert.Equal(t, "2025-03-01", due.String())
	duration, _ := in.Duration.Get()
	assert.Equal(t, 20, duration)
	completed, _ := in.Completed.Get()
	assert.True(t, completed)
}

func TestDecodeTask_EmptyObject(t *testing.T) {
	v := newValidator(t)

	in, err := v.DecodeTask([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, in.Task.Set)
	assert.False(t, in.Completed.Set)
}

func TestDecodeTask_IgnoresTaskID(t *testing.T) {
	v := newValidator(t)

	// task_id はクライアントから受け付けないので未知のキーとして無視される
	in, err := v.DecodeTask([]byte(`{"task_id": 99, "task": "x"}`))
	require.NoError(t, err)
	task, _ := in.Task.Get()
	assert.Equal(t, "x", task)
}

func TestDecodeTask_Invalid(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"not json", `{"task":`, []string{"body"}},
		{"not an object", `["task"]`, []string{"body"}},
		{"bad bool", `{"completed": "perhaps"}`, []string{"completed"}},
		{"bad date", `{"due_date": "2025-13-40"}`, []string{"due_date"}},
		{"bad duration", `{"duration": "1h"}`, []string{"duration"}},
		{"duration out of range", `{"duration": 9223372036854775808}`, []string{"duration"}},
		{"multiple fields", `{"completed": [], "duration": false}`, []string{"completed", "duration"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.DecodeTask([]byte(tt.body))
			require.Error(t, err)

			var ve *validator.ValidationError
			require.ErrorAs(t, err, &ve)

			fields := make([]string, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}
