package main

import (
	"testing"

	"github.com/wailsapp/wails/v2/pkg/logger"
)

func TestWailsLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug": logger.DEBUG,
		"info":  logger.INFO,
		"warn":  logger.WARNING,
		"error": logger.ERROR,
		"":      logger.INFO,
	}
	for level, want := range tests {
		if got := wailsLogLevel(level); got != want {
			t.Errorf("wailsLogLevel(%q) = %v, want %v", level, got, want)
		}
	}
}
