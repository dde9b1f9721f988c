package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture(t *testing.T) {
	t.Run("records messages and attributes", func(t *testing.T) {
		logger, logs := NewTestLogger(t)
		logger.Info("export parsed", slog.String("file", "wip_1.txt"), slog.Int("records", 3))
		logger.Error("workbook unreadable")

		records := logs.GetRecords()
		require.Len(t, records, 2)
		assert.Equal(t, "export parsed", records[0].Message)
		assert.Equal(t, int64(3), records[0].Attrs["records"])
		assert.True(t, logs.ContainsMessage("unreadable"))
		assert.True(t, logs.ContainsAttr("file", "wip_1.txt"))
		assert.False(t, logs.ContainsAttr("file", "wip_2.txt"))
	})

	t.Run("keeps bound attributes and groups", func(t *testing.T) {
		logger, logs := NewTestLogger(t)
		logger.With(slog.String("component", "wipmerge")).
			WithGroup("batch").
			Info("merged", slog.Int("files", 8))

		AssertLogAttr(t, logs, "component", "wipmerge")
		AssertLogAttr(t, logs, "batch.files", int64(8))
	})

	t.Run("derived loggers share records", func(t *testing.T) {
		logger, logs := NewTestLogger(t)
		logger.With("handler", "workflow").Info("one")
		logger.Info("two")
		assert.Equal(t, 2, logs.Count())

		logs.Clear()
		assert.Zero(t, logs.Count())
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, logs := NewTestLogger(t)
		logger.Debug("debug")
		logger.Info("info")
		logger.Warn("history rolled over")

		assert.Len(t, logs.GetRecordsByLevel(slog.LevelInfo), 1)
		AssertLogContains(t, logs, slog.LevelWarn, "rolled over")
		AssertNoErrors(t, logs)
	})

	t.Run("concurrent logging", func(t *testing.T) {
		logger, logs := NewTestLogger(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("concurrent", slog.Int("n", n))
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 10, logs.Count())
	})
}
