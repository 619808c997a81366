// Package cloudconvert drives a CloudConvert-compatible conversion API
// through its job protocol: create a job with an upload task, stream the
// input to the returned form endpoint, let the convert and export tasks run,
// then download the exported result.
package cloudconvert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docmorph/internal/domain"
)

const providerName = "cloudconvert"

// Config holds the injected credentials and endpoints. Nothing is read from
// ambient globals and no default credential exists.
type Config struct {
	APIKey       string
	BaseURL      string // e.g. https://api.cloudconvert.com
	PollInterval time.Duration
	ScratchDir   string
	Logger       *slog.Logger
}

// Client is an ExternalConverter backed by the cloud API.
type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	scratchDir   string
	httpClient   *http.Client
	logger       *slog.Logger
}

func New(cfg Config) *Client {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		pollInterval: interval,
		scratchDir:   cfg.ScratchDir,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		logger:       cfg.Logger,
	}
}

func (c *Client) Name() string { return providerName }

type apiForm struct {
	URL        string            `json:"url"`
	Parameters map[string]string `json:"parameters"`
}

type apiFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type apiTask struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Operation string `json:"operation"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Result    struct {
		Form  *apiForm  `json:"form"`
		Files []apiFile `json:"files"`
	} `json:"result"`
}

type apiJob struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	Tasks  []apiTask `json:"tasks"`
}

type jobEnvelope struct {
	Data apiJob `json:"data"`
}

// Convert runs the four phases against the API. The context bounds the whole
// attempt, including the completion wait; retrying is the caller's concern.
func (c *Client) Convert(ctx context.Context, inputPath, targetExt, outputName string) (string, error) {
	targetExt = strings.ToLower(strings.TrimPrefix(targetExt, "."))

	job, err := c.createJob(ctx, targetExt)
	if err != nil {
		return "", err
	}
	c.logger.Debug("conversion job created", "provider", providerName, "job", job.ID)

	importTask := findTask(job.Tasks, func(t apiTask) bool { return t.Name == "import-file" })
	if importTask == nil || importTask.Result.Form == nil {
		return "", fmt.Errorf("job %s has no upload form", job.ID)
	}
	if err := c.upload(ctx, importTask.Result.Form, inputPath); err != nil {
		return "", err
	}

	finished, err := c.waitForJob(ctx, job.ID)
	if err != nil {
		return "", err
	}

	exportTask := findTask(finished.Tasks, func(t apiTask) bool { return t.Operation == "export/url" })
	if exportTask == nil || exportTask.Status != "finished" || len(exportTask.Result.Files) == 0 {
		if failed := findTask(finished.Tasks, func(t apiTask) bool { return t.Status == "error" }); failed != nil {
			return "", &domain.ExternalConversionError{Provider: providerName, Message: failed.Message}
		}
		return "", &domain.ExternalConversionError{Provider: providerName, Message: "exported file URL missing"}
	}

	return c.download(ctx, exportTask.Result.Files[0].URL, outputName)
}

// Healthy verifies reachability and credential validity against the account
// endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/users/me", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach %s: %w", providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.classifyStatus(resp)
	}
	return nil
}

// createJob registers the import, convert and export tasks in one request.
func (c *Client) createJob(ctx context.Context, targetExt string) (*apiJob, error) {
	payload := map[string]any{
		"tasks": map[string]any{
			"import-file": map[string]any{
				"operation": "import/upload",
			},
			"convert-file": map[string]any{
				"operation":     "convert",
				"input":         "import-file",
				"output_format": targetExt,
			},
			"export-result": map[string]any{
				"operation":              "export/url",
				"input":                  "convert-file",
				"inline":                 false,
				"archive_multiple_files": false,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, c.classifyStatus(resp)
	}

	var envelope jobEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode job response: %w", err)
	}
	return &envelope.Data, nil
}

// upload streams the local input file to the import task's form endpoint.
func (c *Client) upload(ctx context.Context, form *apiForm, inputPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range form.Parameters {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(inputPath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy input into upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, form.URL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.classifyStatus(resp)
	}
	return nil
}

// waitForJob polls until the job reaches a terminal status. The wait is
// bounded by the caller's context; an unbounded completion loop would defeat
// the retry wrapper's budget.
func (c *Client) waitForJob(ctx context.Context, jobID string) (*apiJob, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		job, err := c.getJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		switch job.Status {
		case "finished":
			return job, nil
		case "error":
			if failed := findTask(job.Tasks, func(t apiTask) bool { return t.Status == "error" }); failed != nil {
				return nil, &domain.ExternalConversionError{Provider: providerName, Message: failed.Message}
			}
			return nil, &domain.ExternalConversionError{Provider: providerName, Message: "job failed"}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for job %s: %w", jobID, ctx.Err())
		}
	}
}

func (c *Client) getJob(ctx context.Context, jobID string) (*apiJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyStatus(resp)
	}

	var envelope jobEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode job poll: %w", err)
	}
	return &envelope.Data, nil
}

// download streams the exported result into the scratch directory.
func (c *Client) download(ctx context.Context, fileURL, outputName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.classifyStatus(resp)
	}

	outPath := filepath.Join(c.scratchDir, outputName)
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("write output: %w", err)
	}
	return outPath, nil
}

// classifyStatus maps HTTP failures onto the retry taxonomy: credential
// rejections and malformed requests are permanent, throttling and server
// errors are transient.
func (c *Client) classifyStatus(resp *http.Response) error {
	message := readAPIMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.AuthenticationError{Provider: providerName}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &domain.RateLimitError{Provider: providerName}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &domain.ValidationError{Message: fmt.Sprintf("%s rejected request: %s", providerName, message)}
	default:
		return fmt.Errorf("%s returned HTTP %d: %s", providerName, resp.StatusCode, message)
	}
}

// readAPIMessage best-effort extracts {"message": ...} from an error body.
func readAPIMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return ""
	}
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}

func findTask(tasks []apiTask, match func(apiTask) bool) *apiTask {
	for i := range tasks {
		if match(tasks[i]) {
			return &tasks[i]
		}
	}
	return nil
}
