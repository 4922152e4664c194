package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marimo-hub-be/internal/dto"
	"marimo-hub-be/internal/pkg/logger"
	"marimo-hub-be/internal/repository/contract"
	"marimo-hub-be/pkg/idgen"
	"marimo-hub-be/pkg/llm"
	"marimo-hub-be/pkg/marimo"
)

const (
	DefaultLanguage = "python"
	DefaultPrompt   = "Generated from flowchart"

	generationTemperature = 0.3
	generationMaxTokens   = 2000
	generationTimeout     = 90 * time.Second
)

const systemPromptFormat = `You are an expert Python developer specializing in Marimo notebooks.
Create a complete, executable Marimo notebook based on the user's request.

Requirements:
1. Use proper Marimo syntax with @app.cell decorators
2. Import marimo as mo and create app = mo.App()
3. Break the logic into small cells that return the names they define
4. Include error handling and short docstrings
5. Use the flowchart/diagram provided to understand the logic flow
6. Answer with the notebook source only

Language: %s
Flowchart/Diagram:
%s`

const userPromptFormat = `Please create a Marimo notebook for the following request:

%s

The notebook must be fully executable and use one function per cell.`

type IGenerationService interface {
	Generate(ctx context.Context, req *dto.GenerateNotebookRequest) (*dto.GenerateNotebookResponse, error)
}

type generationService struct {
	provider llm.LLMProvider
	store    contract.NotebookRepository
	logger   logger.ILogger
	now      func() time.Time
}

// NewGenerationService builds the service. A nil provider always yields the
// fallback notebook.
func NewGenerationService(provider llm.LLMProvider, store contract.NotebookRepository, log logger.ILogger) IGenerationService {
	return &generationService{
		provider: provider,
		store:    store,
		logger:   log,
		now:      time.Now,
	}
}

func (s *generationService) Generate(ctx context.Context, req *dto.GenerateNotebookRequest) (*dto.GenerateNotebookResponse, error) {
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}

	content, err := s.compose(ctx, prompt, req.Diagram, language)
	fallback := err != nil
	if fallback {
		s.logger.Warn("GENERATE", "Falling back to template notebook", map[string]interface{}{
			"error": err.Error(),
		})
		content = marimo.Fallback(prompt, req.Diagram, language)
	}

	id := idgen.FromSeed("marimo", req.Diagram, s.now())
	if err := s.store.Put(ctx, id, content); err != nil {
		return nil, fmt.Errorf("store generated notebook: %w", err)
	}

	s.logger.Info("GENERATE", "Notebook generated", map[string]interface{}{
		"id":       id,
		"fallback": fallback,
		"bytes":    len(content),
	})

	return &dto.GenerateNotebookResponse{
		Success:         true,
		ServerId:        id,
		MarimoNotebook:  content,
		NotebookContent: content,
		ViewerUrl:       ViewerURL(id),
		Fallback:        fallback,
		Diagram:         req.Diagram,
		Language:        language,
		Prompt:          prompt,
	}, nil
}

// compose asks the model for a notebook and normalizes the answer.
func (s *generationService) compose(ctx context.Context, prompt, diagram, language string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("no llm provider configured")
	}

	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	answer, err := s.provider.Chat(ctx, []llm.Message{
		{Role: "user", Content: fmt.Sprintf(userPromptFormat, prompt)},
	},
		llm.WithSystemPrompt(fmt.Sprintf(systemPromptFormat, language, diagram)),
		llm.WithTemperature(generationTemperature),
		llm.WithMaxTokens(generationMaxTokens),
	)
	if err != nil {
		return "", err
	}

	body := marimo.StripCodeFences(answer)
	if body == "" {
		return "", fmt.Errorf("empty answer from llm")
	}
	if !marimo.IsNotebook(body) {
		body = marimo.FromPlainPython(body)
	}
	return marimo.EnsureHeader(body), nil
}
