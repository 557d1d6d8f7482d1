// Package shell wraps the filesystem and process operations exposed to
// task bodies: copy, move, remove, and shell execution. The wrappers are
// thin; they exist so task packs share one spelling of each operation.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/vk/cogs/internal/ctxlog"
)

// Copy duplicates a regular file, preserving its permission bits.
func Copy(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy %s: not a regular file", src)
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// Move renames a file, falling back to copy-and-remove across filesystems.
func Move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := Copy(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// Remove deletes a path recursively. With force, a missing path is not an
// error.
func Remove(path string, force bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && force {
			return nil
		}
		return err
	}
	return os.RemoveAll(path)
}

// Exec runs a command line through the system shell, streaming output to
// the given writers. The returned error preserves the exit status.
func Exec(ctx context.Context, command string, stdout, stderr io.Writer) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executing shell command.", "command", command)
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}
