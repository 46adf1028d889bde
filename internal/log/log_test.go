package log

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Info(CatImport, "loaded", "rows", 3, "cols", 2)

	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2} \[INFO\] \[import\] loaded rows=3 cols=2\n$`)
	assert.Regexp(t, re, buf.String())
}

func TestErrorErrAndOddFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	ErrorErr(CatClipboard, "read failed", errors.New("no xclip"), "op", "paste")
	assert.Contains(t, buf.String(), "[ERROR] [clipboard] read failed op=paste error=no xclip\n")

	buf.Reset()
	Warn(CatClipboard, "odd", "orphan")
	assert.Contains(t, buf.String(), "odd orphan=<missing>\n")
}

func TestMinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	SetMinLevel(LevelWarn)
	Debug(CatUI, "hidden")
	Warn(CatUI, "shown")
	require.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), "hidden")

	buf.Reset()
	SetEnabled(false)
	Error(CatUI, "off")
	assert.Empty(t, buf.String())
}

func TestNoLoggerIsSilent(t *testing.T) {
	SetOutput(nil)
	assert.NotPanics(t, func() { Debug(CatGrid, "nothing") })
}
