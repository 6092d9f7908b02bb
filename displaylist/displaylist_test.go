package displaylist

import (
	"bytes"
	"testing"
)

func TestDisplayList_CreateAndRead(t *testing.T) {
	dl := New(make([]byte, 16))

	rec := dl.Create(6)
	if rec == nil {
		t.Fatal("Create(6) = nil")
	}
	copy(rec, "abcdef")
	if !dl.CreateWord(0x04030201) {
		t.Fatal("CreateWord failed")
	}
	if dl.Size() != 10 || dl.FreeSpace() != 6 || dl.Capacity() != 16 {
		t.Errorf("Size/FreeSpace/Capacity = %d/%d/%d", dl.Size(), dl.FreeSpace(), dl.Capacity())
	}

	if got := dl.LookAhead(3); string(got) != "abc" {
		t.Errorf("LookAhead(3) = %q", got)
	}
	if got := dl.GetNext(6); string(got) != "abcdef" {
		t.Errorf("GetNext(6) = %q", got)
	}
	w, ok := dl.GetNextWord()
	if !ok || w != 0x04030201 {
		t.Errorf("GetNextWord() = %#x, %v", w, ok)
	}
	if !dl.AtEnd() {
		t.Error("AtEnd() = false after reading everything")
	}
}

func TestDisplayList_AtEndUsesWriteCursor(t *testing.T) {
	dl := New(make([]byte, 64))
	if !dl.AtEnd() {
		t.Error("empty list is not at end")
	}
	dl.Create(4)
	if dl.AtEnd() {
		t.Error("AtEnd() = true with unread bytes")
	}
	dl.GetNext(4)
	if !dl.AtEnd() {
		t.Error("AtEnd() = false at the write cursor")
	}
}

func TestDisplayList_CreateOverflowLeavesSize(t *testing.T) {
	dl := New(make([]byte, 8))
	dl.Create(5)
	if rec := dl.Create(4); rec != nil {
		t.Error("Create(4) succeeded with 3 bytes free")
	}
	if dl.Size() != 5 {
		t.Errorf("Size() = %d after rejected Create, want 5", dl.Size())
	}
	if dl.CreateWord(1) {
		t.Error("CreateWord succeeded with 3 bytes free")
	}
	if dl.Size() != 5 {
		t.Errorf("Size() = %d after rejected CreateWord, want 5", dl.Size())
	}
	if dl.Create(-1) != nil {
		t.Error("Create(-1) succeeded")
	}
}

func TestDisplayList_CreateZeroes(t *testing.T) {
	buf := bytes.Repeat([]byte{0xFF}, 8)
	dl := New(buf)
	rec := dl.Create(8)
	for i, b := range rec {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, b)
		}
	}
}

func TestDisplayList_ReadBeyondWrite(t *testing.T) {
	dl := New(make([]byte, 32))
	dl.Create(4)
	if dl.GetNext(8) != nil {
		t.Error("GetNext read past the write cursor")
	}
	if dl.LookAhead(5) != nil {
		t.Error("LookAhead read past the write cursor")
	}
	if _, ok := dl.GetNextWord(); !ok {
		t.Error("GetNextWord failed on a written word")
	}
	if _, ok := dl.GetNextWord(); ok {
		t.Error("GetNextWord succeeded at end")
	}
}

func TestDisplayList_ClearTruncateLoad(t *testing.T) {
	dl := New(make([]byte, 32))
	dl.Create(12)
	dl.GetNext(8)

	dl.Truncate(4)
	if dl.Size() != 4 || !dl.AtEnd() {
		t.Errorf("after Truncate(4): Size = %d, AtEnd = %v", dl.Size(), dl.AtEnd())
	}
	dl.Truncate(20)
	if dl.Size() != 4 {
		t.Errorf("Truncate beyond size changed Size to %d", dl.Size())
	}

	dl.Clear()
	if !dl.Empty() || dl.Size() != 0 {
		t.Error("Clear did not empty the list")
	}

	dl.Load(16)
	if dl.Size() != 16 || dl.AtEnd() || len(dl.Bytes()) != 16 {
		t.Errorf("Load(16): Size = %d", dl.Size())
	}
	dl.Load(100)
	if dl.Size() != 32 {
		t.Errorf("Load(100) on 32 byte region: Size = %d", dl.Size())
	}

	dl.GetNext(4)
	dl.Rewind()
	if got := dl.LookAhead(32); got == nil {
		t.Error("Rewind did not reset the read cursor")
	}
}

func TestDoubleBuffer_Swap(t *testing.T) {
	d := NewDoubleBuffer("a", "b")
	if d.Back() != "a" || d.Front() != "b" || d.BackIndex() != 0 || d.FrontIndex() != 1 {
		t.Fatalf("initial back/front = %s/%s", d.Back(), d.Front())
	}
	d.Swap()
	if d.Back() != "b" || d.Front() != "a" || d.BackIndex() != 1 {
		t.Errorf("after swap back/front = %s/%s", d.Back(), d.Front())
	}
	d.Swap()
	if d.Back() != "a" {
		t.Errorf("after two swaps back = %s", d.Back())
	}
}
