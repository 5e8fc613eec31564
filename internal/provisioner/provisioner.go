// Package provisioner is the boundary to the external provisioning CLI.
// Each invocation is a single blocking call with captured output.
package provisioner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUnsupportedOperation is returned for operations outside the allow list.
var ErrUnsupportedOperation = errors.New("unsupported provisioning operation")

// Operations the CLI may be invoked with.
var Operations = map[string]bool{
	"init": true, "validate": true, "plan": true, "apply": true, "destroy": true,
	"fmt": true, "show": true, "output": true, "version": true,
}

// Result is the captured outcome of one invocation. A non-zero exit is a
// Result with Success false, not an error.
type Result struct {
	Success    bool   `json:"success"`
	ReturnCode int    `json:"return_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
}

// Invoker runs provisioning operations.
type Invoker interface {
	Invoke(ctx context.Context, operation string, args []string) (Result, error)
}

// CLI invokes a provisioning binary such as terraform.
type CLI struct {
	binary  string
	workDir string
	log     logrus.FieldLogger
}

// NewCLI creates an invoker for binary, run from workDir.
func NewCLI(binary, workDir string, log logrus.FieldLogger) *CLI {
	return &CLI{binary: binary, workDir: workDir, log: log}
}

// WorkDir returns the directory operations run in.
func (c *CLI) WorkDir() string { return c.workDir }

// Invoke runs `<binary> <operation> <args...>`.
func (c *CLI) Invoke(ctx context.Context, operation string, args []string) (Result, error) {
	if !Operations[operation] {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedOperation, operation)
	}

	cmd := exec.CommandContext(ctx, c.binary, append([]string{operation}, args...)...)
	cmd.Dir = c.workDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.Success = true
	case errors.As(err, &exitErr):
		res.ReturnCode = exitErr.ExitCode()
	default:
		return Result{}, fmt.Errorf("running %s %s: %w", c.binary, operation, err)
	}

	c.log.WithFields(logrus.Fields{
		"binary":      c.binary,
		"operation":   operation,
		"return_code": res.ReturnCode,
		"duration":    time.Since(start).Round(time.Millisecond),
	}).Info("provisioning operation finished")
	return res, nil
}
