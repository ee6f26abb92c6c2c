//go:build !windows

package launcher

import (
	"errors"
	"os"
	"syscall"
)

func backgroundAttr() *syscall.SysProcAttr {
	return nil
}

func terminate(p *os.Process) error {
	err := p.Signal(syscall.SIGTERM)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
