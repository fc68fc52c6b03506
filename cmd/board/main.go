package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/config"
)

func main() {
	logger, _ := zap.NewDevelopment(zap.IncreaseLevel(zap.WarnLevel))
	defer logger.Sync()

	root := newRootCmd(&app{cfg: config.Load(), logger: logger})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
