package launcher

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

// fakeSpawner records every spawn and terminate in order
type fakeSpawner struct {
	calls   []string
	args    [][]string
	fail    map[string]error
	nextPid int
}

type fakeProcess struct {
	name    string
	pid     int
	spawner *fakeSpawner
	termErr error
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Terminate() error {
	p.spawner.calls = append(p.spawner.calls, "terminate "+p.name)
	return p.termErr
}

func newFakeSpawner() *fakeSpawner {
	return &fakeSpawner{fail: map[string]error{}, nextPid: 100}
}

func (f *fakeSpawner) Spawn(path string, args []string) (Process, error) {
	if err, ok := f.fail[path]; ok {
		f.calls = append(f.calls, "fail "+path)
		return nil, err
	}
	f.calls = append(f.calls, "spawn "+path)
	f.args = append(f.args, args)
	f.nextPid++
	return &fakeProcess{name: path, pid: f.nextPid, spawner: f}, nil
}

func TestStartTwiceTerminatesFirst(t *testing.T) {
	spawner := newFakeSpawner()
	s := NewSupervisor(spawner, zerolog.Nop())

	if _, err := s.Start("A", 5244); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Start("B", 5244); err != nil {
		t.Fatal(err)
	}

	want := []string{"spawn A", "terminate A", "spawn B"}
	if !reflect.DeepEqual(spawner.calls, want) {
		t.Errorf("calls = %v, want %v", spawner.calls, want)
	}
	if info := s.Running(); info == nil || info.Path != "B" {
		t.Errorf("Running() = %+v, want B", info)
	}
}

func TestStartPassesServerArgs(t *testing.T) {
	spawner := newFakeSpawner()
	s := NewSupervisor(spawner, zerolog.Nop())

	info, err := s.Start("/opt/alist/alist", 8080)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"server", "--port", "8080"}
	if !reflect.DeepEqual(spawner.args[0], want) {
		t.Errorf("args = %v, want %v", spawner.args[0], want)
	}
	if info.Port != 8080 || info.PID != 101 {
		t.Errorf("info = %+v", info)
	}
	if info.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a run ID")
	}
}

func TestStartFailureLeavesNoHandle(t *testing.T) {
	spawner := newFakeSpawner()
	spawner.fail["broken"] = errors.New("exec format error")
	s := NewSupervisor(spawner, zerolog.Nop())

	if _, err := s.Start("A", 5244); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Start("broken", 5244); err == nil {
		t.Fatal("expected spawn error")
	}

	if s.Running() != nil {
		t.Error("expected no handle after a failed start")
	}
	want := []string{"spawn A", "terminate A", "fail broken"}
	if !reflect.DeepEqual(spawner.calls, want) {
		t.Errorf("calls = %v, want %v", spawner.calls, want)
	}
}

func TestStartIgnoresTerminateError(t *testing.T) {
	spawner := newFakeSpawner()
	s := NewSupervisor(spawner, zerolog.Nop())

	if _, err := s.Start("A", 5244); err != nil {
		t.Fatal(err)
	}
	s.proc.(*fakeProcess).termErr = fmt.Errorf("already exited")

	if _, err := s.Start("B", 5244); err != nil {
		t.Fatalf("Start should not fail on terminate error: %v", err)
	}
	if info := s.Running(); info == nil || info.Path != "B" {
		t.Errorf("Running() = %+v", info)
	}
}

func TestStop(t *testing.T) {
	spawner := newFakeSpawner()
	s := NewSupervisor(spawner, zerolog.Nop())

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop without process: %v", err)
	}

	if _, err := s.Start("A", 5244); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	want := []string{"spawn A", "terminate A"}
	if !reflect.DeepEqual(spawner.calls, want) {
		t.Errorf("calls = %v, want %v", spawner.calls, want)
	}
	if s.Running() != nil {
		t.Error("expected no handle after Stop")
	}
}

func TestRunningReturnsCopy(t *testing.T) {
	s := NewSupervisor(newFakeSpawner(), zerolog.Nop())
	if _, err := s.Start("A", 5244); err != nil {
		t.Fatal(err)
	}

	info := s.Running()
	info.Port = 1
	if s.Running().Port != 5244 {
		t.Error("Running() exposed internal state")
	}
}

func TestExecSpawnerMissingExecutable(t *testing.T) {
	spawner := NewExecSpawner(zerolog.Nop())

	if _, err := spawner.Spawn("/definitely/not/here/alist", Args(5244)); err == nil {
		t.Error("expected error for missing executable")
	}
	if _, err := spawner.Spawn(t.TempDir(), Args(5244)); err == nil {
		t.Error("expected error for a directory")
	}
}
