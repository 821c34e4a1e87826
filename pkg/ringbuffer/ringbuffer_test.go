package ringbuffer

import "testing"

func TestPushPopOrder(t *testing.T) {
	rb := New[int](3, "test")

	for i := 1; i <= 3; i++ {
		if !rb.Push(i) {
			t.Fatalf("Push(%d) refused", i)
		}
	}
	for want := 1; want <= 3; want++ {
		got, ok := rb.Pop()
		if !ok || got != want {
			t.Fatalf("Pop = %d,%v want %d", got, ok, want)
		}
	}
	if _, ok := rb.Pop(); ok {
		t.Error("Pop on empty buffer succeeded")
	}
}

func TestBackpressure(t *testing.T) {
	rb := New[[]byte](2, "frames")
	rb.Push([]byte{1})
	rb.Push([]byte{2})

	if rb.Push([]byte{3}) {
		t.Fatal("Push into full buffer succeeded")
	}
	if rb.Len() != 2 || !rb.IsFull() || rb.Free() != 0 {
		t.Fatalf("Len=%d Full=%v Free=%d", rb.Len(), rb.IsFull(), rb.Free())
	}

	first, _ := rb.Pop()
	second, _ := rb.Pop()
	if first[0] != 1 || second[0] != 2 {
		t.Errorf("contents changed after refused push: %v %v", first, second)
	}
}

func TestWrapAround(t *testing.T) {
	rb := New[int](3, "wrap")
	for i := 0; i < 10; i++ {
		if !rb.Push(i) {
			t.Fatalf("Push(%d) refused", i)
		}
		if v, ok := rb.Peek(); !ok || v != i {
			t.Fatalf("Peek = %d, want %d", v, i)
		}
		if v, _ := rb.Pop(); v != i {
			t.Fatalf("Pop = %d, want %d", v, i)
		}
	}
	if !rb.IsEmpty() {
		t.Error("buffer not empty")
	}
}

func TestClear(t *testing.T) {
	rb := New[string](4, "clear")
	rb.Push("a")
	rb.Push("b")
	rb.Clear()

	if rb.Len() != 0 || rb.Free() != 4 || rb.Cap() != 4 {
		t.Errorf("after Clear: Len=%d Free=%d Cap=%d", rb.Len(), rb.Free(), rb.Cap())
	}
	if rb.Name() != "clear" {
		t.Errorf("Name = %q", rb.Name())
	}
}

func TestZeroCapacityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	New[int](0, "bad")
}
