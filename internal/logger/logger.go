package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// Log доступен сразу после импорта, Init лишь перенастраивает его.
var Log = logrus.New()

var fileSink *lumberjack.Logger

// Init инициализирует структурированный логгер. Если file не пуст, логи
// дублируются в файл с ротацией.
func Init(level, file string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})

	if file == "" {
		Log.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	fileSink = &lumberjack.Logger{
		Filename:   file,
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // дней
		Compress:   true,
	}
	Log.SetOutput(io.MultiWriter(os.Stdout, fileSink))
	return nil
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Close закрывает файл логов, если он был открыт.
func Close() error {
	if fileSink == nil {
		return nil
	}
	return fileSink.Close()
}
