package kernel

// ExecResult reports whether ExecCurrentProc ran anything.
type ExecResult uint8

const (
	ExecNothing ExecResult = iota
	ExecExecuted
)

func (r ExecResult) String() string {
	switch r {
	case ExecNothing:
		return "nothing"
	case ExecExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// Scheduler is a cooperative round-robin over an active and a waiting list.
//
// It is not safe for concurrent use; only the kernel loop touches it.
type Scheduler struct {
	procs *Table
	cpu   Switcher

	active  ProcessList
	waiting ProcessList
}

// NewScheduler returns a scheduler over procs that switches with cpu.
func NewScheduler(procs *Table, cpu Switcher) *Scheduler {
	return &Scheduler{procs: procs, cpu: cpu}
}

// CurrentProc returns the process at the head of the active list.
func (s *Scheduler) CurrentProc() (*Process, bool) {
	pid, ok := s.active.Head()
	if !ok {
		return nil, false
	}
	p := s.procs.Get(pid)
	return p, p != nil
}

// PopCurrentProc removes the head of the active list.
func (s *Scheduler) PopCurrentProc() (PID, bool) {
	return s.active.Pop()
}

// ExecCurrentProc switches into the current process and returns once it traps.
func (s *Scheduler) ExecCurrentProc() (ExecResult, Trap) {
	p, ok := s.CurrentProc()
	if !ok {
		return ExecNothing, Trap{}
	}
	return ExecExecuted, s.cpu.SwitchTo(p)
}

// ScheduleNext moves the current process to the tail of the active list.
func (s *Scheduler) ScheduleNext() {
	if pid, ok := s.active.Pop(); ok {
		s.active.Push(pid)
	}
}

// ResumeList moves every process in l to the active list.
func (s *Scheduler) ResumeList(l *ProcessList) {
	s.active.Join(l)
}

// Push admits pid to the active list.
func (s *Scheduler) Push(pid PID) {
	if !s.active.Push(pid) {
		panic("kernel: active list full")
	}
}

// PushWait parks pid on the waiting list.
func (s *Scheduler) PushWait(pid PID) {
	if !s.waiting.Push(pid) {
		panic("kernel: waiting list full")
	}
}

// ResumeWaiting moves the whole waiting list to the active list.
func (s *Scheduler) ResumeWaiting() {
	s.active.Join(&s.waiting)
}

// Contains reports whether pid is on the active or the waiting list.
func (s *Scheduler) Contains(pid PID) bool {
	return s.active.Contains(pid) || s.waiting.Contains(pid)
}

// Runnable returns the number of processes on the active list.
func (s *Scheduler) Runnable() int { return s.active.Len() }
