package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"marimo-hub-be/internal/dto"
	"marimo-hub-be/internal/pkg/apperror"
	"marimo-hub-be/internal/pkg/logger"
	"marimo-hub-be/internal/repository/contract"
	"marimo-hub-be/internal/repository/implementation"
	"marimo-hub-be/internal/runtime"
	"marimo-hub-be/pkg/idgen"
)

const (
	NotebookPathPrefix = "/notebooks/"
	ViewerPathPrefix   = "/api/marimo/viewer/"
)

type INotebookService interface {
	Save(ctx context.Context, req *dto.SaveNotebookRequest) (*dto.SaveNotebookResponse, error)
	Get(ctx context.Context, id string) (string, error)
	CreateViewer(ctx context.Context, req *dto.CreateViewerRequest) (*dto.CreateViewerResponse, error)
	Health(ctx context.Context) (*dto.HealthResponse, error)
}

type notebookService struct {
	store    contract.NotebookRepository
	files    contract.NotebookFileRepository
	launcher runtime.Launcher
	mode     string
	backend  string
	logger   logger.ILogger
	now      func() time.Time
}

func NewNotebookService(
	store contract.NotebookRepository,
	files contract.NotebookFileRepository,
	launcher runtime.Launcher,
	mode string,
	backend string,
	log logger.ILogger,
) INotebookService {
	return &notebookService{
		store:    store,
		files:    files,
		launcher: launcher,
		mode:     mode,
		backend:  backend,
		logger:   log,
		now:      time.Now,
	}
}

func NotebookURL(id string) string {
	return NotebookPathPrefix + url.PathEscape(id)
}

func ViewerURL(id string) string {
	return ViewerPathPrefix + url.PathEscape(id)
}

func (s *notebookService) Save(ctx context.Context, req *dto.SaveNotebookRequest) (*dto.SaveNotebookResponse, error) {
	if req.Content == "" {
		return nil, apperror.ErrContentRequired
	}

	id := strings.TrimSpace(req.Id)
	filename := strings.TrimSpace(req.Filename)
	if filename != "" {
		filename = implementation.SanitizeFilename(filename)
	}
	switch {
	case id != "":
	case filename != "":
		id = strings.TrimSuffix(filename, implementation.NotebookExt)
	default:
		id = fmt.Sprintf("notebook_%d", s.now().Unix())
	}
	if filename == "" {
		filename = implementation.SanitizeFilename(id)
	}

	path, err := s.files.Write(filename, req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, id, req.Content); err != nil {
		return nil, fmt.Errorf("store notebook %s: %w", id, err)
	}

	s.logger.Info("NOTEBOOK", "Notebook saved", map[string]interface{}{
		"id":       id,
		"filename": filename,
		"bytes":    len(req.Content),
	})

	if err := s.launcher.Launch(ctx, path); err != nil {
		return nil, err
	}

	return &dto.SaveNotebookResponse{
		Ok:       true,
		Id:       id,
		Filename: filename,
		Url:      NotebookURL(id),
	}, nil
}

func (s *notebookService) Get(ctx context.Context, id string) (string, error) {
	content, found, err := s.store.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load notebook %s: %w", id, err)
	}
	if !found {
		return "", apperror.ErrNotFound
	}
	return content, nil
}

func (s *notebookService) CreateViewer(ctx context.Context, req *dto.CreateViewerRequest) (*dto.CreateViewerResponse, error) {
	if req.NotebookContent == "" {
		return nil, apperror.ErrContentRequired
	}

	id := idgen.FromSeed("viewer", req.NotebookContent, s.now())
	if err := s.store.Put(ctx, id, req.NotebookContent); err != nil {
		return nil, fmt.Errorf("store viewer notebook: %w", err)
	}

	count, _ := s.store.Count(ctx)
	s.logger.Info("NOTEBOOK", "Viewer notebook stored", map[string]interface{}{
		"id":     id,
		"active": count,
	})

	return &dto.CreateViewerResponse{
		Success:   true,
		ServerId:  id,
		ViewerUrl: ViewerURL(id),
	}, nil
}

func (s *notebookService) Health(ctx context.Context) (*dto.HealthResponse, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count notebooks: %w", err)
	}
	files, err := s.files.List()
	if err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}

	return &dto.HealthResponse{
		Status:       "healthy",
		Mode:         s.mode,
		Store:        s.backend,
		Counts:       dto.HealthCounts{Notebooks: count, Files: len(files)},
		NotebooksDir: s.files.Dir(),
		Notebooks:    files,
		Runtime:      s.launcher.Status(),
	}, nil
}
