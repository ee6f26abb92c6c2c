package launcher

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Process is a spawned child the supervisor can terminate
type Process interface {
	Pid() int
	Terminate() error
}

// Spawner starts background processes
type Spawner interface {
	Spawn(path string, args []string) (Process, error)
}

// RunInfo describes the process currently held by the supervisor
type RunInfo struct {
	ID        uuid.UUID
	PID       int
	Path      string
	Port      int
	StartedAt time.Time
}

// Args builds the AList command line for port
func Args(port int) []string {
	return []string{"server", "--port", strconv.Itoa(port)}
}

// Supervisor owns at most one live child process. It never polls the
// child: a process that exits on its own keeps its handle until the next
// Start or Stop.
type Supervisor struct {
	spawner Spawner
	proc    Process
	info    *RunInfo
	log     zerolog.Logger
}

// NewSupervisor creates a supervisor using spawner
func NewSupervisor(spawner Spawner, log zerolog.Logger) *Supervisor {
	return &Supervisor{
		spawner: spawner,
		log:     log.With().Str("component", "supervisor").Logger(),
	}
}

// Start terminates any held process and spawns a new one. On failure no
// handle is held.
func (s *Supervisor) Start(path string, port int) (*RunInfo, error) {
	s.terminateHeld()

	proc, err := s.spawner.Spawn(path, Args(port))
	if err != nil {
		s.log.Error().Err(err).Str("executable", path).Int("port", port).Msg("spawn failed")
		return nil, fmt.Errorf("start %s: %w", path, err)
	}

	s.proc = proc
	s.info = &RunInfo{
		ID:        uuid.New(),
		PID:       proc.Pid(),
		Path:      path,
		Port:      port,
		StartedAt: time.Now(),
	}

	s.log.Info().
		Str("run_id", s.info.ID.String()).
		Int("pid", s.info.PID).
		Str("executable", path).
		Int("port", port).
		Msg("service started")

	info := *s.info
	return &info, nil
}

// Stop terminates the held process, if any
func (s *Supervisor) Stop() error {
	if s.proc == nil {
		return nil
	}

	proc, info := s.proc, s.info
	s.proc, s.info = nil, nil

	if err := proc.Terminate(); err != nil {
		s.log.Warn().Err(err).Str("run_id", info.ID.String()).Msg("terminate failed")
		return fmt.Errorf("terminate pid %d: %w", info.PID, err)
	}
	s.log.Info().Str("run_id", info.ID.String()).Int("pid", info.PID).Msg("service stopped")
	return nil
}

// Running returns a copy of the held process info, or nil
func (s *Supervisor) Running() *RunInfo {
	if s.info == nil {
		return nil
	}
	info := *s.info
	return &info
}

// terminateHeld is the best-effort replace step of Start; errors are
// logged and the handle is dropped regardless
func (s *Supervisor) terminateHeld() {
	if s.proc == nil {
		return
	}
	if err := s.Stop(); err != nil {
		s.log.Debug().Err(err).Msg("ignoring terminate error before restart")
	}
}
