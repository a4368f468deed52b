//go:build !unix

package procexec

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
