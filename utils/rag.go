package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrNoRelevantContent means the retrieval service found no document chunks
// for the query. Distinct from a transport failure: the caller must not
// forward an empty context upstream.
var ErrNoRelevantContent = errors.New("no relevant documents found for the query")

// ragTopK is the fixed number of chunks requested per query
const ragTopK = 5

// MaxUploadSize caps document uploads at 10MB
const MaxUploadSize = 10 * 1024 * 1024

// Document is one retrieved chunk from the embeddings endpoint
type Document struct {
	Content string `json:"content"`
}

// RAGClient talks to the document retrieval service: chunk queries against
// uploaded files, and the upload endpoint itself.
type RAGClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewRAGClient(baseURL, apiKey string) *RAGClient {
	return &RAGClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// QueryEmbeddings fetches the top chunks of the given file relevant to the
// query. Zero results is ErrNoRelevantContent, not a generic failure.
func (c *RAGClient) QueryEmbeddings(ctx context.Context, query, fileID string) ([]Document, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query":    query,
		"file_ids": []string{fileID},
		"k":        ragTopK,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: readErrorField(resp.Body)}
	}

	var parsed struct {
		Documents []Document `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Documents) == 0 {
		return nil, ErrNoRelevantContent
	}
	return parsed.Documents, nil
}

// UploadFile sends a PDF to the retrieval service and returns the file id
// it issued. Size and type validation happen in the controller before any
// bytes leave the process.
func (c *RAGClient) UploadFile(ctx context.Context, fileName string, content io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload_file", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: readErrorField(resp.Body)}
	}

	var parsed struct {
		FileID string `json:"file_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.FileID == "" {
		return "", fmt.Errorf("upload response missing file_id")
	}
	return parsed.FileID, nil
}

// BuildDocumentPrompt wraps retrieved chunks with the instruction template,
// the source file name, and the user's query. The result replaces the last
// user message before it goes upstream.
func BuildDocumentPrompt(fileName string, docs []Document, query string) string {
	contents := make([]string, 0, len(docs))
	for _, d := range docs {
		contents = append(contents, d.Content)
	}
	context := strings.Join(contents, "\n\n")

	return fmt.Sprintf(
		"Answer the query based on the following document content from %q:\n\n%s\n\nQuery: %s",
		fileName, context, query,
	)
}

// BuildStandardPrompt is the non-RAG template applied to every last user
// message when no file is attached.
func BuildStandardPrompt(query string) string {
	return fmt.Sprintf(
		"You are a friendly AI assistant designed to answer all of the user queries\n\nQuery: %s",
		query,
	)
}
