package dto

import (
	"marimo-hub-be/internal/runtime"
)

// SaveNotebookRequest is the body of POST/PUT /api/save.
type SaveNotebookRequest struct {
	Id       string `json:"id"`
	Filename string `json:"filename"`
	Content  string `json:"content" validate:"required"`
}

type SaveNotebookResponse struct {
	Ok       bool   `json:"ok"`
	Id       string `json:"id"`
	Filename string `json:"filename"`
	Url      string `json:"url"`
}

type HealthCounts struct {
	Notebooks int `json:"notebooks"`
	Files     int `json:"files"`
}

type HealthResponse struct {
	Status       string         `json:"status"`
	Mode         string         `json:"mode"`
	Store        string         `json:"store"`
	Counts       HealthCounts   `json:"counts"`
	NotebooksDir string         `json:"notebooks_dir"`
	Notebooks    []string       `json:"notebooks"`
	Runtime      runtime.Status `json:"runtime"`
}

type BannerResponse struct {
	Service   string   `json:"service"`
	Mode      string   `json:"mode"`
	Endpoints []string `json:"endpoints"`
}
