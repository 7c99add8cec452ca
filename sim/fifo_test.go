package sim

import "testing"

func TestFIFOPushPopOrder(t *testing.T) {
	f := NewFIFO(4)
	for i := 0; i < 4; i++ {
		if !f.Push(byte(i)) {
			t.Fatalf("push %d rejected", i)
		}
	}
	if !f.Full() {
		t.Fatal("expected full at depth")
	}
	if f.Push(99) {
		t.Fatal("push into full FIFO accepted")
	}
	for i := 0; i < 4; i++ {
		b, ok := f.Pop()
		if !ok || b != byte(i) {
			t.Fatalf("pop %d: got %d ok=%v", i, b, ok)
		}
	}
	if _, ok := f.Pop(); ok {
		t.Fatal("pop from empty FIFO succeeded")
	}
}

func TestFIFOWrapAround(t *testing.T) {
	f := NewFIFO(3)
	for round := 0; round < 10; round++ {
		b := byte(round)
		if !f.Push(b) {
			t.Fatalf("round %d: push rejected at len %d", round, f.Len())
		}
		got, ok := f.Pop()
		if !ok || got != b {
			t.Fatalf("round %d: got %d ok=%v", round, got, ok)
		}
	}
	if f.Len() != 0 {
		t.Fatalf("expected empty, len=%d", f.Len())
	}
}

func TestFIFOClear(t *testing.T) {
	f := NewFIFO(4)
	f.Push(1)
	f.Push(2)
	f.Clear()
	if !f.Empty() || f.Len() != 0 {
		t.Fatalf("clear left len=%d", f.Len())
	}
	if !f.Push(7) {
		t.Fatal("push after clear rejected")
	}
	if b, _ := f.Pop(); b != 7 {
		t.Fatalf("got %d want 7", b)
	}
}
