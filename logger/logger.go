package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the package-level logrus logger. An empty file logs to stderr.
func Setup(level, file string) error {
	if file != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    32, // megabytes
			MaxBackups: 2,
			MaxAge:     28, // days
			Compress:   true,
		})
	} else {
		log.SetOutput(os.Stderr)
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("unknown logging level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	log.SetFormatter(&log.TextFormatter{
		PadLevelText:    true,
		DisableColors:   file != "",
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	return nil
}

// GinLogger replaces gin's default access log with structured logrus entries.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		if uid, ok := c.Get("user_id"); ok {
			entry = entry.WithField("user_id", uid)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request")
		}
	}
}
