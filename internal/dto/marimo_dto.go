package dto

type GenerateNotebookRequest struct {
	Diagram  string `json:"diagram" validate:"required"`
	Language string `json:"language"`
	Prompt   string `json:"prompt"`
}

type GenerateNotebookResponse struct {
	Success         bool   `json:"success"`
	ServerId        string `json:"serverId"`
	MarimoNotebook  string `json:"marimoNotebook"`
	NotebookContent string `json:"notebookContent"`
	ViewerUrl       string `json:"viewerUrl"`
	Fallback        bool   `json:"fallback"`
	Diagram         string `json:"diagram"`
	Language        string `json:"language"`
	Prompt          string `json:"prompt"`
}

type CreateViewerRequest struct {
	NotebookContent string `json:"notebookContent" validate:"required"`
}

type CreateViewerResponse struct {
	Success   bool   `json:"success"`
	ServerId  string `json:"serverId"`
	ViewerUrl string `json:"viewerUrl"`
}
