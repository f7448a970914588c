package daemon

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "embackup.pid"))
}

func TestWriteAndReadPID(t *testing.T) {
	d := newTestDaemon(t)

	pid, err := d.ReadPID()
	require.NoError(t, err)
	assert.Zero(t, pid)

	require.NoError(t, d.WritePID())
	pid, err = d.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	running, runningPID, err := d.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), runningPID)

	require.NoError(t, d.RemovePID())
	require.NoError(t, d.RemovePID())
}

func TestInvalidPIDFile(t *testing.T) {
	d := newTestDaemon(t)
	require.NoError(t, os.WriteFile(d.PIDFile(), []byte("not-a-pid"), 0644))

	_, err := d.ReadPID()
	assert.Error(t, err)
}

func TestStalePIDFileIsRemoved(t *testing.T) {
	d := newTestDaemon(t)

	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	require.NoError(t, os.WriteFile(d.PIDFile(), []byte(strconv.Itoa(cmd.Process.Pid)), 0644))

	running, _, err := d.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)
	assert.NoFileExists(t, d.PIDFile())
}

func TestStopNotRunning(t *testing.T) {
	d := newTestDaemon(t)

	assert.True(t, errors.Is(d.Stop(), ErrNotRunning))
}

func TestStopSignalsProcess(t *testing.T) {
	d := newTestDaemon(t)

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() { _ = cmd.Process.Kill() })
	require.NoError(t, os.WriteFile(d.PIDFile(), []byte(strconv.Itoa(cmd.Process.Pid)), 0644))

	require.NoError(t, d.Stop())
	assert.NoFileExists(t, d.PIDFile())

	err := cmd.Wait()
	assert.Error(t, err)
}

func TestIsChild(t *testing.T) {
	t.Setenv(ChildEnvVar, "")
	assert.False(t, IsChild())

	t.Setenv(ChildEnvVar, "1")
	assert.True(t, IsChild())
}
