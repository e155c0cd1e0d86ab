package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-units"

	"interview-prep-bot/internal/config"
)

const defaultTimeout = 10 * time.Second

// DockerExecutor запускает код в одноразовом контейнере без сети
type DockerExecutor struct {
	client *client.Client
	memory int64
}

// NewDockerExecutor подключается к Docker из окружения и проверяет доступность демона
func NewDockerExecutor(ctx context.Context, cfg config.SandboxConfig) (*DockerExecutor, error) {
	memory, err := units.RAMInBytes(cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("некорректный SANDBOX_MEMORY %q: %w", cfg.Memory, err)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Docker: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(pingCtx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("Docker недоступен: %w", err)
	}

	return &DockerExecutor{client: cli, memory: memory}, nil
}

func (d *DockerExecutor) Close() error {
	return d.client.Close()
}

// Exec создает контейнер, ждет завершения и собирает stdout и stderr
func (d *DockerExecutor) Exec(ctx context.Context, imageName string, cmd []string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if err := d.ensureImage(ctx, imageName); err != nil {
		return Result{}, fmt.Errorf("образ %s недоступен: %w", imageName, err)
	}

	containerConfig := &container.Config{
		Image:           imageName,
		Cmd:             cmd,
		User:            "1000:1000",
		Env:             []string{"HOME=/tmp"},
		WorkingDir:      "/tmp",
		NetworkDisabled: true,
	}
	hostConfig := &container.HostConfig{
		Resources: container.Resources{
			Memory:    d.memory,
			NanoCPUs:  1e9,
			PidsLimit: ptr(int64(64)),
			Ulimits: []*units.Ulimit{
				{Name: "nofile", Soft: 256, Hard: 256},
			},
		},
		SecurityOpt:    []string{"no-new-privileges"},
		CapDrop:        []string{"ALL"},
		ReadonlyRootfs: true,
		Tmpfs: map[string]string{
			"/tmp": "rw,noexec,nosuid,size=16m",
		},
	}

	created, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "")
	if err != nil {
		return Result{}, fmt.Errorf("ошибка создания контейнера: %w", err)
	}
	id := created.ID

	defer func() {
		removeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.client.ContainerRemove(removeCtx, id, container.RemoveOptions{Force: true})
	}()

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := d.client.ContainerStart(execCtx, id, container.StartOptions{}); err != nil {
		return Result{}, fmt.Errorf("ошибка запуска контейнера: %w", err)
	}

	statusCh, errCh := d.client.ContainerWait(execCtx, id, container.WaitConditionNotRunning)

	var exitCode int64
	select {
	case <-execCtx.Done():
		killCtx, killCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer killCancel()
		_ = d.client.ContainerKill(killCtx, id, "SIGKILL")
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return Result{Code: 1, TimedOut: true}, execCtx.Err()
		}
		return Result{}, execCtx.Err()
	case err := <-errCh:
		if err != nil {
			return Result{}, fmt.Errorf("ошибка ожидания контейнера: %w", err)
		}
	case status := <-statusCh:
		exitCode = status.StatusCode
	}

	logs, err := d.client.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return Result{}, fmt.Errorf("ошибка чтения вывода контейнера: %w", err)
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return Result{}, fmt.Errorf("ошибка разбора вывода контейнера: %w", err)
	}

	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Code: int(exitCode)}, nil
}

// ensureImage скачивает образ, если его нет локально
func (d *DockerExecutor) ensureImage(ctx context.Context, imageName string) error {
	if _, _, err := d.client.ImageInspectWithRaw(ctx, imageName); err == nil {
		return nil
	}

	reader, err := d.client.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return err
	}
	defer reader.Close()

	_, err = io.Copy(io.Discard, reader)
	return err
}

func ptr[T any](v T) *T {
	return &v
}
