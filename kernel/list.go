package kernel

// ProcessList is a FIFO of PIDs backed by a fixed ring.
//
// Capacity equals MaxProcesses, so as long as a PID is never in two lists no
// push can fail.
type ProcessList struct {
	head  uint8
	tail  uint8
	slots [MaxProcesses]PID
}

// Push appends pid at the tail. It returns false if the list is full.
func (l *ProcessList) Push(pid PID) bool {
	if l.head-l.tail >= MaxProcesses {
		return false
	}
	l.slots[l.head%MaxProcesses] = pid
	l.head++
	return true
}

// Pop removes and returns the head.
func (l *ProcessList) Pop() (PID, bool) {
	if l.tail == l.head {
		return 0, false
	}
	pid := l.slots[l.tail%MaxProcesses]
	l.tail++
	return pid, true
}

// Head returns the head without removing it.
func (l *ProcessList) Head() (PID, bool) {
	if l.tail == l.head {
		return 0, false
	}
	return l.slots[l.tail%MaxProcesses], true
}

func (l *ProcessList) IsEmpty() bool { return l.tail == l.head }

func (l *ProcessList) Len() int { return int(l.head - l.tail) }

// Contains reports whether pid is queued in l.
func (l *ProcessList) Contains(pid PID) bool {
	for i := l.tail; i != l.head; i++ {
		if l.slots[i%MaxProcesses] == pid {
			return true
		}
	}
	return false
}

// Join moves every item of other, in order, to the tail of l. other is left empty.
func (l *ProcessList) Join(other *ProcessList) {
	if other == nil || other == l {
		return
	}
	if l.Len()+other.Len() > MaxProcesses {
		panic("kernel: process list overflow (pid queued twice)")
	}
	for {
		pid, ok := other.Pop()
		if !ok {
			return
		}
		l.Push(pid)
	}
}
