package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/rogersnm/taskmanager/internal/board"
	"github.com/rogersnm/taskmanager/internal/config"
	"github.com/rogersnm/taskmanager/internal/model"
	"github.com/rogersnm/taskmanager/internal/server"
	"github.com/rogersnm/taskmanager/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default; cobra keeps flag values
// between Execute calls on the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func setupEnv(t *testing.T) (*store.FileStore, string) {
	t.Helper()
	for _, k := range []string{
		"TASKMANAGER_MODE", "TASKMANAGER_API_URL", "TASKMANAGER_STORE_DRIVER",
		"TASKMANAGER_STORE_DSN", "TASKMANAGER_DEBUG",
	} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	fs, err := store.NewFileStore(filepath.Join(dir, "tasks"), logr.Discard())
	require.NoError(t, err)
	return fs, dir
}

// run executes the CLI against dir and returns what it printed.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--data-dir", dir}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func runLocal(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return run(t, dir, append([]string{"--local"}, args...)...)
}

func seed(t *testing.T, fs *store.FileStore, title string, status model.Status) *model.Task {
	t.Helper()
	task, err := fs.Create(context.Background(), model.TaskInput{Title: title, Status: &status})
	require.NoError(t, err)
	return task
}

func TestAdd_CreatesPendingTask(t *testing.T) {
	fs, dir := setupEnv(t)

	out, err := runLocal(t, dir, "add", "Buy milk", "-d", "2 litres")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task Buy milk")

	tasks, err := fs.Find(context.Background(), store.Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, "2 litres", tasks[0].Description)
	assert.Equal(t, model.StatusPending, tasks[0].Status)
	assert.Contains(t, out, tasks[0].ID)
}

func TestAdd_BlankTitle(t *testing.T) {
	fs, dir := setupEnv(t)

	_, err := runLocal(t, dir, "add", "   ")
	assert.ErrorIs(t, err, board.ErrTitleRequired)

	tasks, _ := fs.Find(context.Background(), store.Filter{})
	assert.Empty(t, tasks)
}

func TestList_SearchAndStatus(t *testing.T) {
	fs, dir := setupEnv(t)
	seed(t, fs, "Buy milk", model.StatusPending)
	seed(t, fs, "Milk the cow", model.StatusCompleted)
	seed(t, fs, "Walk dog", model.StatusPending)

	out, err := runLocal(t, dir, "list", "--search", "milk", "--status", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Milk the cow")
	assert.NotContains(t, out, "Walk dog")

	out, err = runLocal(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Walk dog")
	assert.Contains(t, out, "Milk the cow")
}

func TestList_Empty(t *testing.T) {
	_, dir := setupEnv(t)
	out, err := runLocal(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")
}

func TestList_InvalidStatus(t *testing.T) {
	_, dir := setupEnv(t)
	_, err := runLocal(t, dir, "list", "--status", "done")
	assert.ErrorContains(t, err, "invalid status")
}

func TestShow_JSON(t *testing.T) {
	fs, dir := setupEnv(t)
	task := seed(t, fs, "Report", model.StatusInProgress)

	out, err := runLocal(t, dir, "show", task.ID)
	require.NoError(t, err)

	var got model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, model.StatusInProgress, got.Status)
}

func TestShow_Pretty(t *testing.T) {
	fs, dir := setupEnv(t)
	task := seed(t, fs, "Report", model.StatusPending)

	out, err := runLocal(t, dir, "show", task.ID, "--pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "Report")
	assert.Contains(t, out, "Status:")
}

func TestShow_NotFound(t *testing.T) {
	_, dir := setupEnv(t)
	_, err := runLocal(t, dir, "show", "cs1h2u8n4ffmtoa0ps6g")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEdit_WithStatusFlag(t *testing.T) {
	fs, dir := setupEnv(t)
	task := seed(t, fs, "Report", model.StatusPending)

	out, err := runLocal(t, dir, "edit", task.ID, "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated task "+task.ID+": completed")

	got, err := fs.FindByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, "Report", got.Title)
}

func TestEdit_InvalidStatus(t *testing.T) {
	fs, dir := setupEnv(t)
	task := seed(t, fs, "Report", model.StatusPending)

	_, err := runLocal(t, dir, "edit", task.ID, "-s", "archived")
	assert.Error(t, err)

	got, _ := fs.FindByID(context.Background(), task.ID)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestStartAndComplete(t *testing.T) {
	fs, dir := setupEnv(t)
	task := seed(t, fs, "Report", model.StatusPending)
	ctx := context.Background()

	_, err := runLocal(t, dir, "start", task.ID)
	require.NoError(t, err)
	got, _ := fs.FindByID(ctx, task.ID)
	assert.Equal(t, model.StatusInProgress, got.Status)

	_, err = runLocal(t, dir, "complete", task.ID)
	require.NoError(t, err)
	got, _ = fs.FindByID(ctx, task.ID)
	assert.Equal(t, model.StatusCompleted, got.Status)
}

func TestDelete_Force(t *testing.T) {
	fs, dir := setupEnv(t)
	task := seed(t, fs, "Old", model.StatusPending)

	out, err := runLocal(t, dir, "delete", task.ID, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task "+task.ID)

	_, err = fs.FindByID(context.Background(), task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	_, dir := setupEnv(t)
	_, err := runLocal(t, dir, "delete", "cs1h2u8n4ffmtoa0ps6g", "-f")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExport_CSVFile(t *testing.T) {
	fs, dir := setupEnv(t)
	seed(t, fs, "Buy milk", model.StatusPending)
	seed(t, fs, "Ship", model.StatusCompleted)
	outPath := filepath.Join(t.TempDir(), "tasks.csv")

	_, err := runLocal(t, dir, "export", "--format", "csv", "--status", "completed", "--out", outPath)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ship", records[1][1])
}

func TestExport_JSONStdout(t *testing.T) {
	fs, dir := setupEnv(t)
	seed(t, fs, "Buy milk", model.StatusPending)

	out, err := runLocal(t, dir, "export")
	require.NoError(t, err)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	assert.Len(t, tasks, 1)
}

func TestExport_UnknownFormat(t *testing.T) {
	_, dir := setupEnv(t)
	_, err := runLocal(t, dir, "export", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestRemoteMode_UsesAPI(t *testing.T) {
	_, dir := setupEnv(t)
	backing, err := store.NewFileStore(t.TempDir(), logr.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(server.New(backing, logr.Discard(), server.Options{}).Handler())
	t.Cleanup(srv.Close)

	_, err = run(t, dir, "--api-url", srv.URL, "add", "Remote task")
	require.NoError(t, err)

	tasks, err := backing.Find(context.Background(), store.Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Remote task", tasks[0].Title)

	out, err := run(t, dir, "--api-url", srv.URL, "complete", tasks[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	_, err = run(t, dir, "--api-url", srv.URL, "show", "cs1h2u8n4ffmtoa0ps6g")
	assert.ErrorIs(t, err, store.ErrNotFound)

	local, err := runLocal(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, local, "No tasks found.")
}

func TestConfigMode(t *testing.T) {
	_, dir := setupEnv(t)

	out, err := run(t, dir, "config", "mode", "local")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode: local")

	saved, err := config.Read(dir)
	require.NoError(t, err)
	assert.Equal(t, config.ModeLocal, saved.Mode)
	assert.Empty(t, saved.Store.Driver)

	_, err = run(t, dir, "config", "mode", "cloud")
	assert.ErrorContains(t, err, "invalid mode")

	out, err = run(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "mode: local")
	assert.Contains(t, out, "driver: file")
}

func TestConfiguredLocalMode(t *testing.T) {
	fs, dir := setupEnv(t)
	require.NoError(t, config.Save(dir, &config.Config{Mode: config.ModeLocal}))
	seed(t, fs, "From disk", model.StatusPending)

	out, err := run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "From disk")
}
