package launcher

import (
	"os"
	"os/exec"
	"testing"
)

func TestTerminateExitedProcess(t *testing.T) {
	cmd := exec.Command(os.Args[0], "-test.run=^$")
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Wait(); err != nil {
		t.Fatal(err)
	}

	if err := terminate(cmd.Process); err != nil {
		t.Errorf("terminate after exit = %v, want nil", err)
	}
}
