package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/algoprep/backend/internal/domain"
)

// ProcessExecutor runs submissions as plain host processes via os/exec. It
// honors deadlines and keeps each submission in its own scratch directory but
// provides no real isolation; it exists for development and CI environments
// without a Docker daemon.
type ProcessExecutor struct{}

// NewProcessExecutor creates a host-process execution engine
func NewProcessExecutor() *ProcessExecutor {
	return &ProcessExecutor{}
}

// Start writes the source into a scratch directory and compiles it when the
// language requires a compile step.
func (e *ProcessExecutor) Start(ctx context.Context, code string, language domain.Language) (Session, error) {
	spec, err := specFor(language)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "judge-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	sourcePath := filepath.Join(dir, spec.sourceFile)
	if err := os.WriteFile(sourcePath, []byte(code), 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write source file: %w", err)
	}

	session := &processSession{dir: dir, language: language, sourcePath: sourcePath}

	switch language {
	case domain.LanguageCPP:
		binary := filepath.Join(dir, "solution")
		if err := compileLocal(ctx, dir, "g++", "-std=c++20", "-O2", "-o", binary, sourcePath); err != nil {
			os.RemoveAll(dir)
			return nil, err
		}
		session.binaryPath = binary
	case domain.LanguageJava:
		if err := compileLocal(ctx, dir, "javac", sourcePath); err != nil {
			os.RemoveAll(dir)
			return nil, err
		}
	}

	return session, nil
}

func compileLocal(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &CompileError{Output: string(output)}
	}
	return nil
}

type processSession struct {
	dir        string
	language   domain.Language
	sourcePath string
	binaryPath string
}

func (s *processSession) command(ctx context.Context) *exec.Cmd {
	switch s.language {
	case domain.LanguageJavaScript:
		return exec.CommandContext(ctx, "node", s.sourcePath)
	case domain.LanguagePython:
		return exec.CommandContext(ctx, "python3", s.sourcePath)
	case domain.LanguageJava:
		return exec.CommandContext(ctx, "java", "-cp", s.dir, "Solution")
	default:
		return exec.CommandContext(ctx, s.binaryPath)
	}
}

func (s *processSession) Run(ctx context.Context, input string) (string, error) {
	cmd := s.command(ctx)
	cmd.Dir = s.dir
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ErrTimeLimit
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &RunError{ExitCode: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return "", fmt.Errorf("failed to run submission: %w", err)
	}
	return stdout.String(), nil
}

func (s *processSession) Close() error {
	return os.RemoveAll(s.dir)
}
