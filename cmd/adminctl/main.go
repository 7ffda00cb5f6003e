// Command adminctl — служебные операции без HTTP: миграции и создание
// первого администратора.
package main

import (
	"os"

	"github.com/ignatzorin/binhminh-backend/internal/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Log.WithError(err).Error("adminctl")
		os.Exit(1)
	}
}
