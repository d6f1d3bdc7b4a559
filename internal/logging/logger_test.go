package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := GetLogLevel()
	SetOutput(&buf)
	SetLogLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLogLevel(prev.String())
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t, "warn")

	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warnf("warn %d", 3)
	Errorf("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, `level=WARN msg="warn 3"`)
	assert.Contains(t, out, `level=ERROR msg="error 4"`)
}

func TestSetLogLevel(t *testing.T) {
	captureLogs(t, "info")

	assert.True(t, SetLogLevel(" DEBUG "))
	assert.Equal(t, LevelDebug, GetLogLevel())
	assert.True(t, SetLogLevel("warning"))
	assert.Equal(t, LevelWarn, GetLogLevel())
	assert.False(t, SetLogLevel("verbose"))
	assert.Equal(t, LevelWarn, GetLogLevel())
}

func TestComponentAttrs(t *testing.T) {
	buf := captureLogs(t, "debug")

	Component("Controller", "0123456789abcdef").Infof("cycle %s", "started")
	Component("Server", "").Debugf("ready")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `level=INFO msg="cycle started" component=Controller id=01234567`)
	assert.Contains(t, lines[1], "level=DEBUG msg=ready component=Server")
	assert.NotContains(t, lines[1], "id=")
}
