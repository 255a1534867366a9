package handler

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadlineRecorder 支持写超时续期的 ResponseWriter，记录每次设置的超时
type deadlineRecorder struct {
	*httptest.ResponseRecorder
	deadlines []time.Time
}

func (r *deadlineRecorder) SetWriteDeadline(t time.Time) error {
	r.deadlines = append(r.deadlines, t)
	return nil
}

func TestCopyStreamExtendsDeadlinePerChunk(t *testing.T) {
	// 3.5 块大小的内容要续期 4 次以上
	payload := bytes.Repeat([]byte("v"), streamCopyChunk*3+streamCopyChunk/2)
	w := &deadlineRecorder{ResponseRecorder: httptest.NewRecorder()}

	err := copyStream(w, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, w.Body.Bytes())

	// 每写一块续期一次，转发大文件不会撞上全局写超时
	assert.GreaterOrEqual(t, len(w.deadlines), 4)
	for _, d := range w.deadlines {
		assert.WithinDuration(t, time.Now().Add(streamWriteTimeout), d, 5*time.Second)
	}
}

func TestCopyStreamWithoutDeadlineSupport(t *testing.T) {
	// ResponseRecorder 不支持 SetWriteDeadline，退化为普通转发但数据不能丢
	payload := bytes.Repeat([]byte("v"), streamCopyChunk+17)
	w := httptest.NewRecorder()

	err := copyStream(w, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, w.Body.Bytes())
}
