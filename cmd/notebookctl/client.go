package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marimo-hub-be/internal/dto"
)

type hubClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newHubClient(baseURL, token string) *hubClient {
	return &hubClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// apiError is an error body returned by the service.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *hubClient) send(method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &e) != nil || e.Message == "" {
			e.Message = strings.TrimSpace(string(respBody))
		}
		return nil, &apiError{Status: resp.StatusCode, Message: e.Message}
	}
	return respBody, nil
}

func (c *hubClient) Save(req *dto.SaveNotebookRequest) (*dto.SaveNotebookResponse, error) {
	body, err := c.send(http.MethodPost, "/api/save", req)
	if err != nil {
		return nil, err
	}
	var out dto.SaveNotebookResponse
	return &out, json.Unmarshal(body, &out)
}

func (c *hubClient) Get(id string) (string, error) {
	body, err := c.send(http.MethodGet, "/api/marimo/notebook/"+url.PathEscape(id), nil)
	return string(body), err
}

func (c *hubClient) Generate(req *dto.GenerateNotebookRequest) (*dto.GenerateNotebookResponse, error) {
	body, err := c.send(http.MethodPost, "/api/marimo/generate", req)
	if err != nil {
		return nil, err
	}
	var out dto.GenerateNotebookResponse
	return &out, json.Unmarshal(body, &out)
}

func (c *hubClient) Health() (*dto.HealthResponse, error) {
	body, err := c.send(http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var out dto.HealthResponse
	return &out, json.Unmarshal(body, &out)
}
