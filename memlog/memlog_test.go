package memlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wilhasse/goslice/mem"
	"github.com/wilhasse/goslice/slice"
)

func TestAllocatorLogsOperations(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := New[int64](nil, zap.New(core))

	buf := a.Alloc(4)
	buf = a.Realloc(buf, 8)
	a.Free(buf)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "alloc", entries[0].Message)
	assert.Equal(t, "alloc", entries[0].LoggerName)
	assert.Equal(t, int64(4), entries[0].ContextMap()["count"])
	assert.Equal(t, "realloc", entries[1].Message)
	assert.Equal(t, int64(4), entries[1].ContextMap()["old_count"])
	assert.Equal(t, int64(8), entries[1].ContextMap()["count"])
	assert.Equal(t, "free", entries[2].Message)
	assert.Equal(t, uintptr(8), entries[2].ContextMap()["elem_size"])
}

func TestAllocatorWarnsOnRefusal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := New[int](mem.NewLimitAllocator[int](nil, 2), zap.New(core))

	assert.Nil(t, a.Alloc(3))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "alloc", entry.ContextMap()["op"])
}

func TestSliceGrowthIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := slice.MakeWith[int](New[int](nil, zap.New(core)), 2)
	for i := 0; i < 5; i++ {
		s.Append(i)
	}
	s.Destroy()

	assert.Equal(t, 1, logs.FilterMessage("alloc").Len())
	assert.Equal(t, 2, logs.FilterMessage("realloc").Len())
	assert.Equal(t, 1, logs.FilterMessage("free").Len())
}

func TestNilLoggerIsSilent(t *testing.T) {
	a := New[byte](nil, nil)
	assert.Len(t, a.Alloc(3), 3)
}
