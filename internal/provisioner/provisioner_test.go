package provisioner

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/ziadkadry99/infrachat/internal/logging"
)

func requireBinary(t *testing.T, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
	return path
}

func TestInvokeSuccess(t *testing.T) {
	cli := NewCLI(requireBinary(t, "echo"), t.TempDir(), logging.Discard())
	res, err := cli.Invoke(context.Background(), "version", []string{"-json"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !res.Success || res.ReturnCode != 0 {
		t.Errorf("res = %+v", res)
	}
	if strings.TrimSpace(res.Stdout) != "version -json" {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestInvokeNonZeroExit(t *testing.T) {
	cli := NewCLI(requireBinary(t, "false"), t.TempDir(), logging.Discard())
	res, err := cli.Invoke(context.Background(), "plan", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Success || res.ReturnCode == 0 {
		t.Errorf("res = %+v, want failure with non-zero code", res)
	}
}

func TestInvokeUnsupported(t *testing.T) {
	cli := NewCLI("terraform", t.TempDir(), logging.Discard())
	_, err := cli.Invoke(context.Background(), "rm", []string{"-rf"})
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("err = %v, want ErrUnsupportedOperation", err)
	}
}

func TestInvokeMissingBinary(t *testing.T) {
	cli := NewCLI("definitely-not-a-provisioner-binary", t.TempDir(), logging.Discard())
	if _, err := cli.Invoke(context.Background(), "init", nil); err == nil {
		t.Error("expected error for a missing binary")
	}
}
