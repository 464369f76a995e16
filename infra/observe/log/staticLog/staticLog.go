// 进程级日志, logrus + lumberjack 滚动文件
package staticLog

import (
	"io"
	"os"
	"strings"
	"sync"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`        // 为空则只写 stderr
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxBackups int    `yaml:"max_backups"` // 保留文件数
	MaxAge     int    `yaml:"max_age"`     // days
	Compress   bool   `yaml:"compress"`
}

var (
	mu     sync.Mutex
	logger = newLogger()
	roller *lumberjack.Logger
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

// Init 按配置重置日志级别和输出
func Init(cfg LogConfig) error {
	level := logrus.InfoLevel
	if s := strings.TrimSpace(cfg.Level); s != "" {
		lv, err := logrus.ParseLevel(s)
		if err != nil {
			return errorx.Wrap(err, errCode.CONFIG_ERROR, "invalid log level")
		}
		level = lv
	}

	mu.Lock()
	defer mu.Unlock()

	if roller != nil {
		roller.Close()
		roller = nil
	}
	var out io.Writer = os.Stderr
	if cfg.File != "" {
		roller = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(os.Stderr, roller)
	}
	logger.SetOutput(out)
	logger.SetLevel(level)
	return nil
}

// Close 关闭滚动文件
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if roller == nil {
		return nil
	}
	err := roller.Close()
	roller = nil
	return err
}

func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

func SetLevel(level logrus.Level) { logger.SetLevel(level) }

func Logger() *logrus.Logger { return logger }

func WithField(key string, value any) *logrus.Entry { return logger.WithField(key, value) }

func WithFields(fields logrus.Fields) *logrus.Entry { return logger.WithFields(fields) }

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
