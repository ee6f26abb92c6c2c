package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ExecSpawner starts real processes with os/exec
type ExecSpawner struct {
	log zerolog.Logger
}

// NewExecSpawner creates a spawner for the host OS
func NewExecSpawner(log zerolog.Logger) *ExecSpawner {
	return &ExecSpawner{log: log.With().Str("component", "spawner").Logger()}
}

// Spawn starts path in its own directory without waiting for it
func (e *ExecSpawner) Spawn(path string, args []string) (Process, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("executable not found: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("executable is a directory: %s", path)
	}

	cmd := exec.Command(path, args...)
	cmd.Dir = filepath.Dir(path)
	cmd.SysProcAttr = backgroundAttr()

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	proc := &execProcess{cmd: cmd}

	// Reap the child so it never lingers as a zombie. This does not feed
	// back into the supervisor's handle.
	go func() {
		err := cmd.Wait()
		e.log.Debug().Err(err).Int("pid", cmd.Process.Pid).Msg("process exited")
	}()

	return proc, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Terminate() error {
	return terminate(p.cmd.Process)
}
