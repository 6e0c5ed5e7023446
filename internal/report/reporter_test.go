package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_ProgressBar(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "epochs")

	c.Progress(5, 10, map[string]float64{"loss": 0.5, "roc_auc": 0.9})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\repochs:"))
	assert.Contains(t, out, " 50%")
	assert.Contains(t, out, "5/10")
	// Metrics render sorted by name.
	assert.Contains(t, out, "loss=0.5000 roc_auc=0.9000")
	assert.NotContains(t, out, "\n")
}

func TestConsole_CompletionEndsLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "epochs")

	c.Progress(10, 10, nil)

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.False(t, c.barActive)
}

func TestConsole_EventBreaksActiveBar(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "epochs")

	c.Progress(1, 10, nil)
	c.Eventf("fold %d/%d", 2, 5)

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "1/10")
	assert.Equal(t, "fold 2/5", lines[1])
	assert.Empty(t, lines[2])
}

func TestConsole_ZeroTotalIgnored(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "epochs")

	c.Progress(0, 0, nil)

	assert.Empty(t, buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", formatDuration(0))
	assert.Equal(t, "01:05", formatDuration(65e9))
	assert.Equal(t, "12:34", formatDuration(754e9))
}
