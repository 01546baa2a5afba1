package reembed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lastLine returns the most recent self-overwritten progress line.
func lastLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\r")
	return lines[len(lines)-1]
}

func TestProgressTracker_Units(t *testing.T) {
	for _, unit := range []string{"chunks", "concepts"} {
		t.Run(unit, func(t *testing.T) {
			var buf bytes.Buffer
			tracker := NewProgressTracker(&buf, unit, 40, 20)

			tracker.Start()
			tracker.Increment(20)

			line := lastLine(&buf)
			assert.True(t, strings.HasPrefix(line, "Progress: 20/40 (50.0%) - "), line)
			assert.True(t, strings.HasSuffix(line, " "+unit+"/s"), line)
		})
	}
}

func TestProgressTracker_IntervalClamp(t *testing.T) {
	for _, interval := range []int{0, -5} {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, "chunks", 3, interval)
		tracker.Start()

		// Every increment reports once the interval is clamped to 1
		for i := 1; i <= 3; i++ {
			buf.Reset()
			tracker.Increment(1)
			assert.Contains(t, buf.String(), "/3 ", "interval %d, step %d", interval, i)
		}
	}
}

func TestProgressTracker_ReportsOnlyAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "concepts", 300, 100)
	tracker.Start()

	tracker.Update(99)
	assert.Empty(t, buf.String())

	tracker.Update(150)
	assert.Contains(t, lastLine(&buf), "150/300")

	// Next report is due 100 past the last one, not at the next multiple
	buf.Reset()
	tracker.Update(200)
	assert.Empty(t, buf.String())
	tracker.Update(250)
	assert.Contains(t, lastLine(&buf), "250/300")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "chunks", 10, 1)
	tracker.Start()

	tracker.Increment(25)
	assert.Contains(t, lastLine(&buf), "10/10 (100.0%)")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "chunks", 8, 100)
	tracker.Start()
	tracker.Update(3)
	require.Empty(t, buf.String())

	tracker.Finish()
	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Contains(t, out, "8/8 (100.0%)")
}

func TestProgressTracker_EmptyTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "concepts", 0, 10)
	tracker.Start()
	time.Sleep(time.Millisecond)
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0 (0.0%)")
}

func TestProgressTracker_IgnoredBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "chunks", 10, 1)

	tracker.Increment(5)
	tracker.Update(7)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_StartResets(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "chunks", 10, 5)
	tracker.Start()
	tracker.Update(6)

	tracker.Start()
	buf.Reset()
	tracker.Increment(4)
	assert.Empty(t, buf.String(), "counter should restart from zero")

	tracker.Increment(1)
	assert.Contains(t, lastLine(&buf), "5/10")
	assert.Greater(t, tracker.Elapsed(), time.Duration(0))
}
