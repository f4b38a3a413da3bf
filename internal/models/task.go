// Package modelsはTaskを定義します。
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout は due_date の JSON / DB 表現 (YYYY-MM-DD) です。
const DateLayout = "2006-01-02"

// Task は tasks テーブルの1行を表します。
// 任意項目はポインタで保持し、未設定の場合は JSON で null になります。
type Task struct {
	TaskID    int     `json:"task_id"`   // 主キー (サーバー採番)
	Task      *string `json:"task"`      // タスクの内容
	Completed bool    `json:"completed"` // 完了状態 (デフォルト false)
	DueDate   *Date   `json:"due_date"`  // 期限日
	Priority  *string `json:"priority"`  // 優先度ラベル
	Duration  *int    `json:"duration"`  // 所要時間
}

// Date は時刻を持たない暦日です。
type Date struct {
	time.Time
}

// NewDate は年月日から Date を作成します。
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate は "YYYY-MM-DD" 形式の文字列を Date に変換します。
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON は Date を "YYYY-MM-DD" として出力します。
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Value は Date を "YYYY-MM-DD" 文字列としてデータベースに渡します。
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// UnmarshalJSON は "YYYY-MM-DD" 形式の文字列を読み込みます。
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TaskInput はクライアントから送られるタスクのペイロードです。
// task_id はクライアントから受け付けないため含みません。未知のキーは無視されます。
type TaskInput struct {
	Task      Field[string] `json:"task"`
	Completed Field[bool]   `json:"completed"`
	DueDate   Field[Date]   `json:"due_date"`
	Priority  Field[string] `json:"priority"`
	Duration  Field[int]    `json:"duration"`
}

// FieldError は特定のフィールドの型変換に失敗したことを表します。
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UnmarshalJSON はキーごとにデコードし、失敗したフィールド名を FieldError で返します。
func (in *TaskInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &FieldError{Field: "body", Message: "must be a JSON object"}
	}

	fields := []struct {
		name   string
		target json.Unmarshaler
	}{
		{"task", &in.Task},
		{"completed", &in.Completed},
		{"due_date", &in.DueDate},
		{"priority", &in.Priority},
		{"duration", &in.Duration},
	}
	for _, f := range fields {
		value, ok := raw[f.name]
		if !ok {
			continue
		}
		if err := f.target.UnmarshalJSON(value); err != nil {
			return &FieldError{Field: f.name, Message: err.Error()}
		}
	}
	return nil
}

// NewTask は TaskInput の値から新規作成用の Task を組み立てます。
// null と未指定はどちらも「指定なし」として扱い、completed は false になります。
func (in *TaskInput) NewTask() *Task {
	t := &Task{}
	if v, ok := in.Task.Get(); ok {
		t.Task = &v
	}
	if v, ok := in.Completed.Get(); ok {
		t.Completed = v
	}
	if v, ok := in.DueDate.Get(); ok {
		t.DueDate = &v
	}
	if v, ok := in.Priority.Get(); ok {
		t.Priority = &v
	}
	if v, ok := in.Duration.Get(); ok {
		t.Duration = &v
	}
	return t
}
