// Package routesはroutingを行います。
package routes

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"go-task-api/backend/internal/config"
	"go-task-api/backend/internal/handlers"
	"go-task-api/backend/internal/repositories"
	"go-task-api/backend/internal/services"
	"go-task-api/backend/internal/validator"
)

// CORSConfig は設定されたオリジンからのアクセスのみを許可する CORS 設定を返します。
func CORSConfig(origin string) cors.Config {
	return cors.Config{
		AllowOrigins: []string{origin},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Access-Control-Allow-Origin",
			"Access-Control-Allow-Methods",
			"Access-Control-Allow-Headers",
			"Access-Control-Allow-Credentials",
		},
		ExposeHeaders:    []string{"*"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(db *sql.DB, cfg *config.Config, log logrus.FieldLogger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(log))
	r.Use(MetricsMiddleware())
	r.Use(cors.New(CORSConfig(cfg.CORS.AllowOrigin)))

	// バリデーター
	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("failed to set up validator: %w", err)
	}

	// リポジトリ
	taskRepo := repositories.NewTaskRepository(db, log)

	// サービス
	taskService := services.NewTaskService(taskRepo)

	// ハンドラー
	taskHandler := handlers.NewTaskHandler(taskService, v, log)

	// ルーティング
	r.GET("/api/hello", HelloHandler)
	r.GET("/api/dbcheck", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Database connection failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tasks := r.Group("/tasks")
	{
		tasks.GET("/", taskHandler.GetTasksHandler)
		tasks.POST("/", taskHandler.CreateTaskHandler)
		// 静的な completed は /tasks/:id より優先してマッチする
		tasks.GET("/completed/", taskHandler.GetCompletedTasksHandler)
		tasks.GET("/completed", taskHandler.GetCompletedTasksHandler)
		tasks.GET("/:id", taskHandler.GetTaskByIDHandler)
		tasks.PUT("/:id/", taskHandler.UpdateTaskHandler)
		tasks.PATCH("/:id/", taskHandler.PatchTaskHandler)
		tasks.DELETE("/:id", taskHandler.DeleteTaskHandler)
	}

	return r, nil
}

func HelloHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from Go Backend!"})
}
