//go:build windows

package launcher

import (
	"errors"
	"os"
	"syscall"
)

// createNoWindow keeps the server from opening a console window
const createNoWindow = 0x08000000

func backgroundAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: createNoWindow,
	}
}

func terminate(p *os.Process) error {
	err := p.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
