//go:build !unix

package cli

import "os/exec"

// configureProcessGroup keeps the default cancellation, which kills only the
// direct child.
func configureProcessGroup(cmd *exec.Cmd) {}
