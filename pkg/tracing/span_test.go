package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "run", "trace-1")
	countCtx, count := StartChildSpan(ctx, "count")
	_, read := StartChildSpan(countCtx, "read")
	read.End()
	count.SetAttr("chunks", 3)
	count.End()
	root.End()

	require.Len(t, root.Children, 1)
	assert.Equal(t, "count", root.Children[0].Name)
	assert.Equal(t, "trace-1", root.Children[0].Children[0].TraceID)
	assert.Same(t, root, SpanFromContext(ctx))

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "msg=span"))
	assert.Contains(t, out, "chunks=3")
}

func TestChildWithoutParent(t *testing.T) {
	_, span := StartChildSpan(context.Background(), "orphan")
	assert.Empty(t, span.TraceID)
	assert.Nil(t, SpanFromContext(context.Background()))
}
