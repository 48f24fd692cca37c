package platform

import (
	"fmt"
	"os/exec"
	"runtime"
)

// ShutdownCommandName is the binary used on every supported OS
const ShutdownCommandName = "shutdown"

// ShutdownCommand returns the command that powers the machine off on goos
func ShutdownCommand(goos string) (*exec.Cmd, error) {
	switch goos {
	case OSWindows:
		return exec.Command(ShutdownCommandName, "/s", "/t", "60"), nil
	case OSDarwin:
		return exec.Command(ShutdownCommandName, "-h", "+1"), nil
	case OSLinux:
		return exec.Command(ShutdownCommandName, "-h", "+1"), nil
	default:
		return nil, fmt.Errorf("shutdown is not supported on %s", goos)
	}
}

// Shutdown schedules a machine shutdown on the current OS
func Shutdown() error {
	cmd, err := ShutdownCommand(runtime.GOOS)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to schedule shutdown: %w", err)
	}
	return nil
}
