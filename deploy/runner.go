package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Runner abstracts subprocess execution so the pipeline can be tested
// without the stellar binary.
type Runner interface {
	// Run executes the command and returns its trimmed stdout.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// LookPath reports where the binary lives, or an error if absent.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec, streaming stderr to the operator.
type ExecRunner struct {
	logger *logrus.Logger
}

func NewExecRunner(logger *logrus.Logger) *ExecRunner {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	r.logger.WithFields(logrus.Fields{
		"command": name,
		"args":    strings.Join(args, " "),
	}).Debug("running command")

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %v", name, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
