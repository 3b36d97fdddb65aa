package cmdrunner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner executes external tools. Tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	logger.Debug("command_start", slog.String("cmd_line", strings.Join(append([]string{name}, args...), " ")))

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)
	if err != nil {
		logger.Error("command_failed",
			slog.String("cmd", name),
			slog.Int64("duration_ms", dur.Milliseconds()),
			slog.String("error", err.Error()),
			slog.String("stderr", Truncate(errb.String(), 8<<10)),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%s: %w", name, ctxErr)
		}
	} else {
		logger.Debug("command_ok",
			slog.String("cmd", name),
			slog.Int64("duration_ms", dur.Milliseconds()),
			slog.Int("stdout_bytes", out.Len()),
			slog.Int("stderr_bytes", errb.Len()),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// TempFile writes data to a new file and returns its path with a cleanup func.
func TempFile(pattern string, data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}

func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
