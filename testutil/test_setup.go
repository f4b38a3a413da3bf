package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"go-task-api/backend/internal/config"
	"go-task-api/backend/internal/database"
	"go-task-api/backend/internal/models"
	"go-task-api/backend/internal/repositories"
	"go-task-api/backend/internal/routes"
)

// TestOrigin はテスト用ルーターで許可されるオリジンです。
const TestOrigin = "http://localhost:5173"

// NewTestLogger はテスト出力を汚さないロガーを返します。
func NewTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetupTestDB はテストごとに一時ディレクトリへ SQLite のデータベースを作成し、テーブルを用意します。
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "todos_test.db"),
	}
	db, err := database.InitDB(context.Background(), cfg, NewTestLogger())
	require.NoError(t, err, "テスト用データベースの初期化に失敗しました")

	t.Cleanup(func() { db.Close() })
	return db
}

// SetupTestRouter はテスト用のGinルーターとリポジトリをセットアップします。
func SetupTestRouter(t *testing.T) (*sql.DB, *gin.Engine, *repositories.TaskRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := SetupTestDB(t)

	cfg := config.Default()
	cfg.GinMode = gin.TestMode
	cfg.CORS.AllowOrigin = TestOrigin

	router, err := routes.SetupRouter(db, cfg, NewTestLogger())
	require.NoError(t, err)

	return db, router, repositories.NewTaskRepository(db, NewTestLogger())
}

// DoJSON は body を JSON としてリクエストを送信し、レスポンスを返します。
// body が string の場合はそのまま送信します。
func DoJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestTask は API 経由でタスクを作成し、作成されたタスクを返します。
func CreateTestTask(t *testing.T, router http.Handler, payload map[string]any) *models.Task {
	t.Helper()

	resp := DoJSON(t, router, http.MethodPost, "/tasks/", payload)
	require.Equal(t, http.StatusCreated, resp.Code, "タスク作成に失敗しました: %s", resp.Body.String())

	var created models.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}

// DecodeTask はレスポンスボディを Task として読み込みます。
func DecodeTask(t *testing.T, resp *httptest.ResponseRecorder) *models.Task {
	t.Helper()

	var task models.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task), resp.Body.String())
	return &task
}

// DecodeTasks はレスポンスボディを Task の配列として読み込みます。
func DecodeTasks(t *testing.T, resp *httptest.ResponseRecorder) []*models.Task {
	t.Helper()

	var tasks []*models.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tasks), resp.Body.String())
	return tasks
}

// FailCommitOnUpdate は tasks の UPDATE を含むトランザクションがコミット時に失敗するようにします。
// 遅延評価の外部キー制約に違反する行をトリガーで挿入するため、エラーは COMMIT で初めて発生します。
// SetupTestDB の接続は1本なので PRAGMA はその接続に対して有効になります。
func FailCommitOnUpdate(t *testing.T, db *sql.DB) {
	t.Helper()

	stmts := []string{
		"PRAGMA foreign_keys = ON",
		"CREATE TABLE task_owners (id INTEGER PRIMARY KEY)",
		`CREATE TABLE task_audits (
			task_id INTEGER,
			owner_id INTEGER REFERENCES task_owners(id) DEFERRABLE INITIALLY DEFERRED
		)`,
		`CREATE TRIGGER tasks_audit_update AFTER UPDATE ON tasks
		BEGIN
			INSERT INTO task_audits (task_id, owner_id) VALUES (NEW.task_id, -1);
		END`,
	}
	for _, stmt := range stmts {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err, "コミット失敗用のスキーマ作成に失敗しました")
	}
}
