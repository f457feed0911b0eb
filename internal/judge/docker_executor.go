package judge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/image"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
	"go.uber.org/zap"

	"github.com/algoprep/backend/internal/domain"
)

const (
	containerWorkDir  = "/code"
	containerPidLimit = int64(128)
)

// DockerExecutor runs submissions inside throwaway containers: one container
// per test case, network disabled, memory and pid limits applied, SIGKILL on
// deadline. This is the default execution engine.
type DockerExecutor struct {
	cli           *client.Client
	memoryLimitMB int64
	logger        *zap.Logger
}

// NewDockerExecutor creates an executor backed by the local Docker daemon
func NewDockerExecutor(memoryLimitMB int64, logger *zap.Logger) (*DockerExecutor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &DockerExecutor{
		cli:           cli,
		memoryLimitMB: memoryLimitMB,
		logger:        logger,
	}, nil
}

// PullImages pre-pulls the per-language runtime images so the first
// submission does not pay the pull latency. Pull failures are logged, not
// fatal: the daemon may already have the image locally.
func (e *DockerExecutor) PullImages(ctx context.Context) {
	for _, name := range Images() {
		e.logger.Info("Pulling judge image", zap.String("image", name))
		rc, err := e.cli.ImagePull(ctx, name, image.PullOptions{})
		if err != nil {
			e.logger.Warn("Failed to pull judge image", zap.String("image", name), zap.Error(err))
			continue
		}
		io.Copy(io.Discard, rc)
		rc.Close()
	}
}

// Start writes the submission's source into a scratch directory and runs the
// compile step for compiled languages. Compilation happens once per
// submission, not once per test case.
func (e *DockerExecutor) Start(ctx context.Context, code string, language domain.Language) (Session, error) {
	spec, err := specFor(language)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "judge-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, spec.sourceFile), []byte(code), 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write source file: %w", err)
	}

	if spec.compileCmd != nil {
		if err := e.compile(ctx, dir, spec); err != nil {
			os.RemoveAll(dir)
			return nil, err
		}
	}

	return &dockerSession{executor: e, dir: dir, spec: spec}, nil
}

// compile runs the language's compile command in a container with the scratch
// directory mounted read-write so artifacts land next to the source.
func (e *DockerExecutor) compile(ctx context.Context, dir string, spec languageSpec) error {
	cfg := &container.Config{
		Image:      spec.image,
		Cmd:        spec.compileCmd,
		WorkingDir: containerWorkDir,
	}
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: dir, Target: containerWorkDir},
		},
		NetworkMode: "none",
		Resources:   container.Resources{Memory: 1 << 30},
		SecurityOpt: []string{"no-new-privileges"},
	}

	name := fmt.Sprintf("judge-compile-%d", time.Now().UnixNano())
	resp, err := e.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if err != nil {
		return fmt.Errorf("failed to create compile container: %w", err)
	}
	defer e.remove(resp.ID)

	if err := e.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start compile container: %w", err)
	}

	statusCh, errCh := e.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("compile container error: %w", err)
		}
	case status := <-statusCh:
		if status.StatusCode != 0 {
			output, _ := e.readLogs(ctx, resp.ID, true, true)
			return &CompileError{Output: output}
		}
	}
	return nil
}

// remove force-removes a container using a background context so cleanup
// still happens after the run context is cancelled.
func (e *DockerExecutor) remove(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		e.logger.Warn("Failed to remove judge container", zap.String("container", id), zap.Error(err))
	}
}

// readLogs collects the demultiplexed container log streams
func (e *DockerExecutor) readLogs(ctx context.Context, id string, stdout, stderr bool) (string, error) {
	logs, err := e.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: stdout,
		ShowStderr: stderr,
	})
	if err != nil {
		return "", err
	}
	defer logs.Close()
	return demux(logs)
}

// demux strips the 8-byte stream headers Docker prefixes to each log frame
func demux(r io.Reader) (string, error) {
	var out strings.Builder
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return "", err
		}
		size := int(header[4])<<24 | int(header[5])<<16 | int(header[6])<<8 | int(header[7])
		if _, err := io.CopyN(&out, r, int64(size)); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

// dockerSession is a prepared submission. Each Run spins up a fresh container
// so test cases share no mutable state or filesystem leakage: the scratch
// directory is mounted read-only during runs.
type dockerSession struct {
	executor *DockerExecutor
	dir      string
	spec     languageSpec
}

func (s *dockerSession) Run(ctx context.Context, input string) (string, error) {
	e := s.executor

	cfg := &container.Config{
		Image:        s.spec.image,
		Cmd:          s.spec.runCmd,
		WorkingDir:   containerWorkDir,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		OpenStdin:    true,
		StdinOnce:    true,
	}
	pids := containerPidLimit
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: s.dir, Target: containerWorkDir, ReadOnly: true},
		},
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:    e.memoryLimitMB << 20,
			PidsLimit: &pids,
		},
		SecurityOpt: []string{"no-new-privileges"},
	}

	name := fmt.Sprintf("judge-run-%d", time.Now().UnixNano())
	resp, err := e.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("failed to create run container: %w", err)
	}
	defer e.remove(resp.ID)

	attach, err := e.cli.ContainerAttach(ctx, resp.ID, container.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to attach to run container: %w", err)
	}
	defer attach.Close()

	if err := e.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start run container: %w", err)
	}

	go func() {
		defer attach.CloseWrite()
		io.WriteString(attach.Conn, input)
	}()

	statusCh, errCh := e.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)

	var exitCode int64
	select {
	case err := <-errCh:
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				s.kill(resp.ID)
				return "", ErrTimeLimit
			}
			return "", fmt.Errorf("run container wait error: %w", err)
		}
	case status := <-statusCh:
		exitCode = status.StatusCode
	case <-ctx.Done():
		s.kill(resp.ID)
		return "", ErrTimeLimit
	}

	readCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if exitCode != 0 {
		stderr, _ := e.readLogs(readCtx, resp.ID, false, true)
		return "", &RunError{ExitCode: int(exitCode), Stderr: strings.TrimSpace(stderr)}
	}

	stdout, err := e.readLogs(readCtx, resp.ID, true, false)
	if err != nil {
		return "", fmt.Errorf("failed to read run output: %w", err)
	}
	return stdout, nil
}

// kill SIGKILLs a timed-out container; removal happens in the deferred remove
func (s *dockerSession) kill(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.executor.cli.ContainerKill(ctx, id, "SIGKILL"); err != nil {
		s.executor.logger.Warn("Failed to kill timed-out container", zap.String("container", id), zap.Error(err))
	}
}

func (s *dockerSession) Close() error {
	return os.RemoveAll(s.dir)
}
