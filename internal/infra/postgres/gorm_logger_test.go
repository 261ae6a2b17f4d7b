package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestZapGormLogger_Trace(t *testing.T) {
	stmt := func() (string, int64) { return "SELECT 1", 1 }

	tests := []struct {
		name     string
		level    gormlogger.LogLevel
		begin    time.Time
		err      error
		expected string
	}{
		{"failed statement", gormlogger.Warn, time.Now(), errors.New("syntax error"), "sql statement failed"},
		{"record not found is quiet", gormlogger.Warn, time.Now(), gorm.ErrRecordNotFound, ""},
		{"slow statement", gormlogger.Warn, time.Now().Add(-time.Second), nil, "slow sql statement"},
		{"fast statement at warn", gormlogger.Warn, time.Now(), nil, ""},
		{"fast statement at info", gormlogger.Info, time.Now(), nil, "sql statement"},
		{"silent", gormlogger.Silent, time.Now(), errors.New("syntax error"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			l := newZapGormLogger(zap.New(core), tt.level, DefaultSlowQuery)

			l.Trace(context.Background(), tt.begin, stmt, tt.err)

			if tt.expected == "" {
				assert.Zero(t, logs.Len())
				return
			}
			if assert.Equal(t, 1, logs.Len()) {
				entry := logs.All()[0]
				assert.Equal(t, tt.expected, entry.Message)
				assert.Equal(t, "SELECT 1", entry.ContextMap()["sql"])
			}
		})
	}
}

func TestZapGormLogger_LogMode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := newZapGormLogger(zap.New(core), gormlogger.Warn, DefaultSlowQuery)

	silent := base.LogMode(gormlogger.Silent)
	silent.Error(context.Background(), "dropped %s", "message")
	assert.Zero(t, logs.Len())

	base.Error(context.Background(), "kept %s", "message")
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept message", logs.All()[0].Message)
}
