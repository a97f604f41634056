package backend

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docassist/internal/canned"
	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/upload"
)

func instantSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

type typingHandler struct {
	*recordingHandler
	typing chan bool
}

func (h *typingHandler) OnTyping(active bool) { h.typing <- active }

func newLocal(opts ...LocalOption) *LocalBackend {
	base := []LocalOption{
		WithSleep(instantSleep),
		WithSessionIDs(func() string { return "DOC-ABC123" }),
		WithExplainer(func(name string) models.Explanation {
			return models.Explanation{FileName: name, DocumentType: "Service Agreement", Explanation: "A\n\nB"}
		}),
	}
	return NewLocalBackend(LocalDelays{ReplyMin: time.Second, ReplyMax: 3 * time.Second}, append(base, opts...)...)
}

func TestLocalBackend_flow(t *testing.T) {
	b := newLocal(WithResponder(canned.FixedResponder("canned answer")))
	ctx := context.Background()

	res, err := b.Upload(ctx, upload.FromBytes("contract.pdf", make([]byte, 2048)))
	require.NoError(t, err)
	assert.Equal(t, "DOC-ABC123", res.SessionID)
	assert.Equal(t, int64(2048), res.FileSize)
	assert.Equal(t, 1, b.Sessions())

	e, err := b.Explain(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "DOC-ABC123", e.SessionID)
	assert.Equal(t, "contract.pdf", e.FileName)

	_, err = b.CreateChat(ctx, res.SessionID)
	require.NoError(t, err)

	h := &typingHandler{recordingHandler: newRecordingHandler(), typing: make(chan bool, 4)}
	conn, err := b.Dial(ctx, res.SessionID, h)
	require.NoError(t, err)
	require.NoError(t, conn.Send("hello"))
	assert.Equal(t, "canned answer", h.next(t))
	assert.True(t, <-h.typing)
	assert.False(t, <-h.typing)

	require.NoError(t, conn.Close())
	var connErr *models.ConnectionError
	assert.True(t, errors.As(conn.Send("again"), &connErr))

	require.NoError(t, b.DeleteSession(ctx, res.SessionID))
	assert.Equal(t, 0, b.Sessions())
	require.NoError(t, b.DeleteSession(ctx, "unknown"))
}

func TestLocalBackend_unknownSession(t *testing.T) {
	b := newLocal()
	_, err := b.Explain(context.Background(), "DOC-NOPE")
	var reqErr *models.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, "File not found", models.UserMessage(err))

	_, err = b.CreateChat(context.Background(), "DOC-NOPE")
	assert.True(t, errors.As(err, &reqErr))
}

func TestLocalBackend_dialRequiresChat(t *testing.T) {
	b := newLocal()
	res, err := b.Upload(context.Background(), upload.FromBytes("a.pdf", nil))
	require.NoError(t, err)
	_, err = b.Dial(context.Background(), res.SessionID, newRecordingHandler())
	var connErr *models.ConnectionError
	assert.True(t, errors.As(err, &connErr))
}

func TestLocalBackend_uploadHonorsContext(t *testing.T) {
	b := NewLocalBackend(LocalDelays{Upload: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := b.Upload(ctx, upload.FromBytes("a.pdf", nil))
	var reqErr *models.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 0, b.Sessions())
}

func TestLocalBackend_closeDropsPendingReply(t *testing.T) {
	b := newLocal()
	res, err := b.Upload(context.Background(), upload.FromBytes("a.pdf", nil))
	require.NoError(t, err)
	_, err = b.CreateChat(context.Background(), res.SessionID)
	require.NoError(t, err)

	h := newRecordingHandler()
	conn, err := b.Dial(context.Background(), res.SessionID, h)
	require.NoError(t, err)

	b.sleep = func(ctx context.Context, _ time.Duration) error {
		<-ctx.Done()
		return ctx.Err()
	}
	require.NoError(t, conn.Send("who?"))
	require.NoError(t, conn.Close())

	select {
	case m := <-h.messages:
		t.Fatalf("reply %q delivered after close", m)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUniformJitter(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := uniformJitter(time.Second, 3*time.Second)
		if d < time.Second || d >= 3*time.Second {
			t.Fatalf("jitter %s outside [1s, 3s)", d)
		}
	}
	assert.Equal(t, time.Second, uniformJitter(time.Second, time.Second))
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}
