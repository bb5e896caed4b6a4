package toast

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueue_PushDrain(t *testing.T) {
	q := NewQueue()
	q.Success("table.msg.created", "Committee")
	q.Error("Please fill in all fields")
	q.Warning("")
	q.Info("Loaded")
	q.Loading("Saving")

	want := []Toast{
		{Level: LevelSuccess, Message: "table.msg.created", Args: []any{"Committee"}},
		{Level: LevelError, Message: "Please fill in all fields"},
		{Level: LevelInfo, Message: "Loaded"},
		{Level: LevelLoading, Message: "Saving"},
	}
	if diff := cmp.Diff(want, q.Drain()); diff != "" {
		t.Errorf("Drain() (-want +got):\n%s", diff)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d после Drain", q.Len())
	}
}

func TestQueue_Bounded(t *testing.T) {
	q := NewQueue()
	for i := 0; i < maxQueued+5; i++ {
		q.Info(fmt.Sprintf("msg-%d", i))
	}

	got := q.Drain()
	if len(got) != maxQueued {
		t.Fatalf("len = %d, ожидается %d", len(got), maxQueued)
	}
	if got[0].Message != "msg-5" {
		t.Errorf("первое сообщение = %q, ожидается msg-5", got[0].Message)
	}
}
