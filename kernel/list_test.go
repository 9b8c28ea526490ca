package kernel

import "testing"

func TestProcessListPopEmpty(t *testing.T) {
	var l ProcessList

	if _, ok := l.Pop(); ok {
		t.Fatalf("Pop() ok = true, want false")
	}
	if _, ok := l.Head(); ok {
		t.Fatalf("Head() ok = true, want false")
	}
	if !l.IsEmpty() {
		t.Fatalf("IsEmpty() = false, want true")
	}
}

func TestProcessListFIFO(t *testing.T) {
	var l ProcessList
	for _, pid := range []PID{3, 1, 2} {
		if !l.Push(pid) {
			t.Fatalf("Push(%d) = false, want true", pid)
		}
	}
	if got := l.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	if head, _ := l.Head(); head != 3 {
		t.Fatalf("Head() = %d, want 3", head)
	}

	for _, want := range []PID{3, 1, 2} {
		got, ok := l.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = %d, %v, want %d, true", got, ok, want)
		}
	}
	if _, ok := l.Pop(); ok {
		t.Fatalf("Pop() after drain ok = true, want false")
	}
}

func TestProcessListFull(t *testing.T) {
	var l ProcessList
	for i := 0; i < MaxProcesses; i++ {
		if !l.Push(PID(i)) {
			t.Fatalf("Push() = false at slot %d, want true", i)
		}
	}
	if l.Push(0) {
		t.Fatalf("Push() when full = true, want false")
	}

	// Wrap the ring a few times.
	for round := 0; round < 3*MaxProcesses; round++ {
		pid, ok := l.Pop()
		if !ok {
			t.Fatalf("Pop() ok = false in round %d", round)
		}
		if !l.Push(pid) {
			t.Fatalf("Push(%d) = false in round %d", pid, round)
		}
	}
	if head, _ := l.Head(); head != PID(3*MaxProcesses%MaxProcesses) {
		t.Fatalf("Head() = %d after rotation, want %d", head, 3*MaxProcesses%MaxProcesses)
	}
}

func TestProcessListJoin(t *testing.T) {
	var a, b ProcessList
	a.Push(0)
	a.Push(1)
	b.Push(4)
	b.Push(2)

	a.Join(&b)

	if !b.IsEmpty() {
		t.Fatalf("other.IsEmpty() = false after Join, want true")
	}
	var got []PID
	for {
		pid, ok := a.Pop()
		if !ok {
			break
		}
		got = append(got, pid)
	}
	want := []PID{0, 1, 4, 2}
	if len(got) != len(want) {
		t.Fatalf("Join() order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Join() order = %v, want %v", got, want)
		}
	}
}

func TestProcessListJoinSelfAndNil(t *testing.T) {
	var l ProcessList
	l.Push(5)
	l.Join(&l)
	l.Join(nil)
	if got := l.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}

func TestProcessListContains(t *testing.T) {
	var l ProcessList
	l.Push(2)
	l.Push(6)
	if !l.Contains(6) {
		t.Fatalf("Contains(6) = false, want true")
	}
	if l.Contains(1) {
		t.Fatalf("Contains(1) = true, want false")
	}
}
