package lock

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

// Mock Process
type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int {
	return m.pid
}

func (m *mockProcess) PPid() int {
	return 0
}

func (m *mockProcess) Executable() string {
	return m.executable
}

func withProcesses(t *testing.T, self int, procs map[int]string) {
	t.Helper()
	oldFind, oldPid := findProcessFunc, getpidFunc
	t.Cleanup(func() {
		findProcessFunc = oldFind
		getpidFunc = oldPid
	})
	getpidFunc = func() int { return self }
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := procs[pid]
		if !ok {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
}

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 100, map[int]string{100: "roadplan"})

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if holder, _ := Holder(dir); holder != 100 {
		t.Errorf("Holder() = %d, want 100", holder)
	}

	// Re-acquiring from the same process is allowed.
	if _, err := Acquire(dir); err != nil {
		t.Errorf("re-Acquire() error = %v", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(Path(dir)); !os.IsNotExist(err) {
		t.Error("lockfile still present after release")
	}
}

func TestAcquireHeldByOtherProcess(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 200, map[int]string{100: "roadplan", 200: "roadplan"})
	if err := os.WriteFile(Path(dir), []byte("100|roadplan"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Acquire(dir)
	if !errors.Is(err, ErrHeld) {
		t.Fatalf("Acquire() error = %v, want ErrHeld", err)
	}
}

func TestAcquireTakesOverStaleLock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		procs   map[int]string
	}{
		{"dead process", "100|roadplan", map[int]string{}},
		{"reused pid", "100|roadplan", map[int]string{100: "bash"}},
		{"malformed", "garbage", map[int]string{}},
		{"bad pid", "abc|roadplan", map[int]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			withProcesses(t, 200, tt.procs)
			if err := os.WriteFile(Path(dir), []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			l, err := Acquire(dir)
			if err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
			if l.pid != 200 {
				t.Errorf("lock pid = %d, want 200", l.pid)
			}
		})
	}
}

func TestReleaseLeavesForeignLock(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 100, map[int]string{100: "roadplan"})
	l, err := Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(Path(dir), []byte("300|roadplan"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(Path(dir)); err != nil {
		t.Error("Release() removed a lockfile owned by another process")
	}
}

func TestAcquireLosesRaceToLiveHolder(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 200, map[int]string{100: "roadplan", 200: "roadplan"})

	oldLink := linkFunc
	t.Cleanup(func() { linkFunc = oldLink })
	// Another process takes the lock right before this one links its file.
	linkFunc = func(oldname, newname string) error {
		linkFunc = oldLink
		if err := os.WriteFile(newname, []byte("100|roadplan"), 0600); err != nil {
			return err
		}
		return oldLink(oldname, newname)
	}

	_, err := Acquire(dir)
	if !errors.Is(err, ErrHeld) {
		t.Fatalf("Acquire() error = %v, want ErrHeld", err)
	}
	content, err := os.ReadFile(Path(dir))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "100|roadplan" {
		t.Errorf("lockfile = %q, want the live holder's", content)
	}
}

func TestAcquireConcurrent(t *testing.T) {
	dir := t.TempDir()
	procs := make(map[int]string)
	for i := 0; i < 20; i++ {
		procs[1000+i] = "roadplan"
	}
	withProcesses(t, 1, procs)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			l, err := acquire(dir, pid)
			if err != nil {
				if !errors.Is(err, ErrHeld) {
					t.Errorf("acquire(%d) error = %v", pid, err)
				}
				return
			}
			mu.Lock()
			winners = append(winners, l.pid)
			mu.Unlock()
		}(1000 + i)
	}
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("got %d lock holders, want 1: %v", len(winners), winners)
	}
	content, err := os.ReadFile(Path(dir))
	if err != nil {
		t.Fatal(err)
	}
	if want := fmt.Sprintf("%d|roadplan", winners[0]); string(content) != want {
		t.Errorf("lockfile = %q, want %q", content, want)
	}
}

func TestTakeOverRestoresReplacedLock(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 200, map[int]string{100: "roadplan"})
	path := Path(dir)
	// The stale file seen earlier was replaced by a live holder.
	if err := os.WriteFile(path, []byte("100|roadplan"), 0600); err != nil {
		t.Fatal(err)
	}

	err := takeOver(path, "999|roadplan", 200)
	if !errors.Is(err, ErrHeld) {
		t.Fatalf("takeOver() error = %v, want ErrHeld", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("lockfile missing after takeOver: %v", err)
	}
	if string(content) != "100|roadplan" {
		t.Errorf("lockfile = %q, want 100|roadplan", content)
	}
	if _, err := os.Stat(path + ".200.stale"); !os.IsNotExist(err) {
		t.Error("aside file left behind")
	}
}
