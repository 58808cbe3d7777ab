package utils

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogInterceptor(t *testing.T) {
	var out bytes.Buffer
	li := NewLogInterceptor(&out)

	n, err := li.Write([]byte("first\nsec"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, "line=1 first\n", out.String())

	_, err = li.Write([]byte("ond\r\nthird"))
	require.NoError(t, err)
	assert.Equal(t, "line=1 first\nline=2 second\n", out.String())

	require.NoError(t, li.Close())
	assert.Equal(t, "line=1 first\nline=2 second\nline=3 third\n", out.String())
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("disk full")
}

func TestMultiLogHandler(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer
	debug := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	info := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiLogHandler(debug, info)).With("run", 1).WithGroup("sync")
	logger.Debug("only debug", "name", "a.pdf")
	logger.Info("both", "name", "b.pdf")

	assert.Contains(t, debugBuf.String(), "only debug")
	assert.Contains(t, debugBuf.String(), "sync.name=b.pdf")
	assert.NotContains(t, infoBuf.String(), "only debug")
	assert.Equal(t, 1, strings.Count(infoBuf.String(), "\n"))
	assert.Contains(t, infoBuf.String(), "run=1")

	h := NewMultiLogHandler(failingHandler{info}, debug)
	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))
	assert.Error(t, err)
}
