package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM sales_orders":                         "SELECT",
		"  insert into fraud_review_events (id) values (1)":  "INSERT",
		"WITH x AS (SELECT 1) UPDATE sales_invoices SET a=1": "SELECT",
		"":                    "UNKNOWN",
		"PRAGMA foreign_keys": "UNKNOWN",
	}
	for sql, want := range cases {
		assert.Equal(t, want, operationFromSQL(sql), sql)
	}
}

func TestTableFromSQL(t *testing.T) {
	cases := map[string]string{
		`SELECT * FROM "sales_orders" WHERE increment_id = ?`: "sales_orders",
		"INSERT INTO fraud_review_events (id) VALUES (1)":     "fraud_review_events",
		"update sales_invoices set state = ?":                 "sales_invoices",
		"SELECT 1":                                            "",
	}
	for sql, want := range cases {
		assert.Equal(t, want, tableFromSQL(sql), sql)
	}
}

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestTraceSkipsRecordNotFound(t *testing.T) {
	logs := observe(t)
	l := NewGormLogger(DefaultGormLoggerConfig(true))

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM sales_orders", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Zero(t, logs.Len())
}

func TestTraceLevels(t *testing.T) {
	logs := observe(t)
	l := NewGormLogger(GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: time.Millisecond})
	stmt := func() (string, int64) { return "UPDATE sales_orders SET status = ?", 1 }

	l.Trace(context.Background(), time.Now(), stmt, nil)
	l.Trace(context.Background(), time.Now().Add(-time.Second), stmt, nil)
	l.Trace(context.Background(), time.Now(), stmt, errors.New("deadlock"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "sales_orders", entries[1].ContextMap()["db.table"])
}

func TestParamsFilterDropsValues(t *testing.T) {
	sql, params := NewGormLogger(GormLoggerConfig{}).ParamsFilter(context.Background(), "SELECT ?", "secret")
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)
}
