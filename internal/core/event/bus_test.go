package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlushDeliversInEmitOrder(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e ItemSkipped) { got = append(got, "skip:"+e.Name) })
	Subscribe(b, func(e RecordFailed) { got = append(got, "fail:"+e.Key) })

	Emit(b, ItemSkipped{Name: "a"})
	Emit(b, RecordFailed{Key: "0x000801", Err: errors.New("x")})
	Emit(b, ItemSkipped{Name: "b"})
	Emit(b, CriticalError{}) // nobody listens

	assert.Equal(t, 4, b.Pending())
	assert.Empty(t, got, "nothing is delivered before Flush")
	assert.Equal(t, 4, b.Flush())
	assert.Equal(t, []string{"skip:a", "fail:0x000801", "skip:b"}, got)
	assert.Equal(t, 0, b.Pending())
	assert.Equal(t, 0, b.Flush())
}

func TestEmitFromHandlerWaitsForNextFlush(t *testing.T) {
	b := NewBus()
	n := 0
	Subscribe(b, func(e ItemSkipped) {
		n++
		if e.Name == "first" {
			Emit(b, ItemSkipped{Name: "second"})
		}
	})
	Emit(b, ItemSkipped{Name: "first"})
	b.Flush()
	assert.Equal(t, 1, n)
	b.Flush()
	assert.Equal(t, 2, n)
}

func TestNilBus(t *testing.T) {
	var b *Bus
	Emit(b, ItemSkipped{})
	assert.Equal(t, 0, b.Pending())
	assert.Equal(t, 0, b.Flush())
}
