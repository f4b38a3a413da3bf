// Package logger は構造化ログ (logrus) を初期化します。
package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestIDKey は gin.Context にリクエストIDを保存するキーです。
const RequestIDKey = "request_id"

// New は JSON 形式で出力する logrus.Logger を作成します。
// level が解釈できない場合は info レベルになります。
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// WithRequestID はリクエストIDを付与したエントリを返します。
func WithRequestID(l logrus.FieldLogger, requestID string) *logrus.Entry {
	if requestID == "" {
		return l.WithFields(logrus.Fields{})
	}
	return l.WithField(RequestIDKey, requestID)
}
