package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marimo-hub-be/internal/dto"
	"marimo-hub-be/internal/pkg/apperror"
	"marimo-hub-be/internal/pkg/logger"
	"marimo-hub-be/internal/repository/implementation"
	"marimo-hub-be/internal/repository/memory"
	"marimo-hub-be/internal/runtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLauncher struct {
	launched []string
	err      error
}

func (f *fakeLauncher) Launch(_ context.Context, path string) error {
	f.launched = append(f.launched, path)
	return f.err
}

func (f *fakeLauncher) Stop() error { return nil }

func (f *fakeLauncher) Status() runtime.Status {
	return runtime.Status{Enabled: true, Running: len(f.launched) > 0}
}

var fixedNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func newTestNotebookService(t *testing.T) (*notebookService, *fakeLauncher, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := implementation.NewNotebookFileRepository(dir)
	require.NoError(t, err)

	launcher := &fakeLauncher{}
	svc := NewNotebookService(memory.NewNotebookRepository(0, 0), files, launcher, "render", "memory", logger.NewNopLogger()).(*notebookService)
	svc.now = func() time.Time { return fixedNow }
	return svc, launcher, dir
}

func TestSave_ExampleScenario(t *testing.T) {
	svc, launcher, dir := newTestNotebookService(t)
	ctx := context.Background()

	res, err := svc.Save(ctx, &dto.SaveNotebookRequest{Id: "abc123", Content: "print(1)"})
	require.NoError(t, err)
	assert.Equal(t, &dto.SaveNotebookResponse{Ok: true, Id: "abc123", Filename: "abc123.py", Url: "/notebooks/abc123"}, res)

	content, err := svc.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", content)

	_, err = svc.Get(ctx, "zzz999")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	onDisk, err := os.ReadFile(filepath.Join(dir, "abc123.py"))
	require.NoError(t, err)
	assert.Equal(t, "print(1)", string(onDisk))
	assert.Equal(t, []string{filepath.Join(dir, "abc123.py")}, launcher.launched)
}

func TestSave_IdDefaults(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.SaveNotebookRequest
		id       string
		filename string
	}{
		{"filename stem", dto.SaveNotebookRequest{Filename: "report.py", Content: "x"}, "report", "report.py"},
		{"filename without extension", dto.SaveNotebookRequest{Filename: "report", Content: "x"}, "report", "report.py"},
		{"sanitized filename", dto.SaveNotebookRequest{Filename: "../etc/passwd", Content: "x"}, ".._etc_passwd", ".._etc_passwd.py"},
		{"id wins over filename", dto.SaveNotebookRequest{Id: "nb1", Filename: "other.py", Content: "x"}, "nb1", "other.py"},
		{"timestamp default", dto.SaveNotebookRequest{Content: "x"}, "notebook_1791968400", "notebook_1791968400.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, dir := newTestNotebookService(t)
			res, err := svc.Save(context.Background(), &tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.id, res.Id)
			assert.Equal(t, tt.filename, res.Filename)
			assert.FileExists(t, filepath.Join(dir, tt.filename))
		})
	}
}

func TestSave_Errors(t *testing.T) {
	svc, launcher, _ := newTestNotebookService(t)

	_, err := svc.Save(context.Background(), &dto.SaveNotebookRequest{Id: "a"})
	assert.True(t, errors.Is(err, apperror.ErrContentRequired))
	assert.Empty(t, launcher.launched)

	launcher.err = apperror.Wrap(runtime.ErrNotReady, errors.New("timeout"))
	_, err = svc.Save(context.Background(), &dto.SaveNotebookRequest{Id: "a", Content: "x"})
	assert.True(t, errors.Is(err, runtime.ErrNotReady))
	assert.Equal(t, 503, apperror.Code(err))

	// The notebook is stored even when the runtime is late.
	content, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "x", content)
}

func TestCreateViewer(t *testing.T) {
	svc, _, _ := newTestNotebookService(t)

	res, err := svc.CreateViewer(context.Background(), &dto.CreateViewerRequest{NotebookContent: "import marimo"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Regexp(t, `^viewer_\d+_\d{1,4}$`, res.ServerId)
	assert.Equal(t, "/api/marimo/viewer/"+res.ServerId, res.ViewerUrl)

	content, err := svc.Get(context.Background(), res.ServerId)
	require.NoError(t, err)
	assert.Equal(t, "import marimo", content)

	_, err = svc.CreateViewer(context.Background(), &dto.CreateViewerRequest{})
	assert.True(t, errors.Is(err, apperror.ErrContentRequired))
}

func TestHealth(t *testing.T) {
	svc, _, dir := newTestNotebookService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, &dto.SaveNotebookRequest{Id: "b", Content: "x"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, &dto.SaveNotebookRequest{Id: "a", Content: "y"})
	require.NoError(t, err)
	_, err = svc.CreateViewer(ctx, &dto.CreateViewerRequest{NotebookContent: "z"})
	require.NoError(t, err)

	res, err := svc.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, "render", res.Mode)
	assert.Equal(t, "memory", res.Store)
	assert.Equal(t, dto.HealthCounts{Notebooks: 3, Files: 2}, res.Counts)
	assert.Equal(t, dir, res.NotebooksDir)
	assert.Equal(t, []string{"a.py", "b.py"}, res.Notebooks)
	assert.True(t, res.Runtime.Running)
}
