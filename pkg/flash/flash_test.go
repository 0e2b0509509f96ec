package flash_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/scaffold/pkg/flash"
	"github.com/dmitrymomot/scaffold/pkg/session"
)

func TestSink(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	sink := flash.New(sess)

	sink.Add("saved", flash.Success)
	sink.AddMany([]string{"bad title", "bad body"}, flash.Error)
	sink.Add("unknown type", flash.Type("purple"))

	want := []flash.Message{
		{Text: "saved", Type: flash.Success},
		{Text: "bad title", Type: flash.Danger},
		{Text: "bad body", Type: flash.Danger},
		{Text: "unknown type", Type: flash.Info},
	}
	assert.Equal(t, want, sink.Messages())

	raw, ok := sess.GetValue(flash.SessionKey)
	assert.True(t, ok)
	assert.IsType(t, "", raw)

	assert.Equal(t, want, sink.Drain())
	assert.Empty(t, sink.Drain())

	_, ok = sess.GetValue(flash.SessionKey)
	assert.False(t, ok)
}

func TestSinkSharedSession(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	flash.New(sess).Add("from request one", flash.Info)

	got := flash.New(sess).Drain()
	assert.Equal(t, []flash.Message{{Text: "from request one", Type: flash.Info}}, got)
}

func TestNilStore(t *testing.T) {
	t.Parallel()

	sink := flash.New(nil)
	sink.Add("dropped", flash.Info)
	assert.Nil(t, sink.Messages())
	assert.Nil(t, sink.Drain())
}

func TestByType(t *testing.T) {
	t.Parallel()

	got := flash.ByType([]flash.Message{
		{Text: "a", Type: flash.Success},
		{Text: "b", Type: flash.Danger},
		{Text: "c", Type: flash.Success},
	})
	assert.Equal(t, []string{"a", "c"}, got[flash.Success])
	assert.Equal(t, []string{"b"}, got[flash.Danger])
}

func TestParseType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, flash.Danger, flash.ParseType("error"))
	assert.Equal(t, flash.Warning, flash.ParseType("warning"))
	assert.Equal(t, flash.Info, flash.ParseType(""))
}
