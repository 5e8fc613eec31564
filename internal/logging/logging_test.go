package logging

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/infrachat/internal/config"
)

func TestNewLevelAndFormat(t *testing.T) {
	logger := New(config.LogConfig{Level: "debug", Format: config.LogFormatJSON})
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", logger.Formatter)
	}
}

func TestNewInvalidLevelFallsBack(t *testing.T) {
	logger := New(config.LogConfig{Level: "nope", Format: config.LogFormatText})
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level fallback, got %s", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("expected text formatter, got %T", logger.Formatter)
	}
}
