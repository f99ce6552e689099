package common

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferSink struct {
	lines   []string
	flushes int
}

func (b *bufferSink) Writeln(content ...interface{}) {
	b.lines = append(b.lines, fmt.Sprint(content...))
}

func (b *bufferSink) Flush() {
	b.flushes++
}

func TestSSEWriter(t *testing.T) {
	sink := &bufferSink{}
	w := NewSSEWriter(sink)

	w.Start()
	w.WriteText("[LOGS] - Rephrasing user query")
	require.NoError(t, w.WriteJSON(map[string]string{"type": "answer", "content": "42"}))
	w.WriteText("")
	w.Done()

	require.Len(t, sink.lines, 4)
	assert.Equal(t, "data:[START]\n", sink.lines[0])
	assert.Equal(t, "data:[LOGS] - Rephrasing user query\n", sink.lines[1])
	assert.True(t, strings.HasPrefix(sink.lines[2], "data:{"))
	assert.Contains(t, sink.lines[2], `"type":"answer"`)
	assert.Equal(t, "data:[DONE]\n", sink.lines[3])
	assert.Equal(t, 4, sink.flushes)
}
