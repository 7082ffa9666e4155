package postman

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"api-test-ai/internal/testcase"
)

const collectionSchema = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// Collection is a Postman collection v2.1 document.
type Collection struct {
	Info Info     `json:"info"`
	Item []Folder `json:"item"`
}

// Info identifies the collection.
type Info struct {
	PostmanID   string `json:"_postman_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Schema      string `json:"schema"`
}

// Folder groups the requests of one endpoint.
type Folder struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Item        []Item `json:"item"`
}

// Item is one request with its attached scripts.
type Item struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Event       []Event       `json:"event,omitempty"`
	Request     Request       `json:"request"`
	Response    []interface{} `json:"response"`
}

// Event binds a script to a request lifecycle hook.
type Event struct {
	Listen string `json:"listen"`
	Script Script `json:"script"`
}

// Script holds JavaScript, one line per exec entry.
type Script struct {
	Type string   `json:"type"`
	Exec []string `json:"exec"`
}

// Request is the wire request description.
type Request struct {
	Method string   `json:"method"`
	Header []Header `json:"header"`
	Body   *Body    `json:"body,omitempty"`
	URL    URL      `json:"url"`
}

// Header is one request header entry.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Body is a raw JSON request body.
type Body struct {
	Mode    string      `json:"mode"`
	Raw     string      `json:"raw"`
	Options BodyOptions `json:"options"`
}

type BodyOptions struct {
	Raw RawOptions `json:"raw"`
}

type RawOptions struct {
	Language string `json:"language"`
}

// URL is the structured request target.
type URL struct {
	Raw      string   `json:"raw"`
	Protocol string   `json:"protocol,omitempty"`
	Host     []string `json:"host,omitempty"`
	Path     []string `json:"path,omitempty"`
}

// Exporter renders generated suites as Postman collections. Requests go
// out POST-only with every parameter merged into the JSON body, matching
// the action-API convention, and each request carries the signature
// pre-request script plus a test script derived from its validations.
type Exporter struct {
	log zerolog.Logger
}

// NewExporter returns a collection exporter.
func NewExporter(log zerolog.Logger) *Exporter {
	return &Exporter{log: log}
}

// Collection builds the Postman document for a suite.
func (e *Exporter) Collection(name string, suite testcase.Suite) *Collection {
	collection := &Collection{
		Info: Info{
			PostmanID:   uuid.New().String(),
			Name:        name,
			Description: "Automatically generated test collection",
			Schema:      collectionSchema,
		},
	}

	for _, key := range suite.Keys() {
		endpoint := suite[key]
		folderName := endpoint.Endpoint.Path
		if endpoint.Endpoint.Description != "" {
			folderName = fmt.Sprintf("%s - %s", endpoint.Endpoint.Path, endpoint.Endpoint.Description)
		}
		folder := Folder{
			Name:        folderName,
			Description: endpoint.Endpoint.Description,
		}
		for _, tc := range endpoint.Cases {
			folder.Item = append(folder.Item, e.requestItem(tc))
		}
		collection.Item = append(collection.Item, folder)
	}
	return collection
}

func (e *Exporter) requestItem(tc *testcase.TestCase) Item {
	body := make(map[string]interface{}, len(tc.RequestData)+len(tc.QueryParams)+1)
	for k, v := range tc.RequestData {
		body[k] = v
	}
	for k, v := range tc.QueryParams {
		body[k] = v
	}
	if _, ok := body["Action"]; !ok {
		if action := actionFromPath(tc.Path); action != "" {
			body["Action"] = action
		}
	}

	raw, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		raw = []byte("{}")
	}

	request := Request{
		Method: "POST",
		URL:    buildURL(tc.Path),
		Body: &Body{
			Mode:    "raw",
			Raw:     string(raw),
			Options: BodyOptions{Raw: RawOptions{Language: "json"}},
		},
	}

	hasContentType := false
	for key, value := range tc.Headers {
		if strings.EqualFold(key, "Content-Type") {
			hasContentType = true
			value = "application/json"
		}
		request.Header = append(request.Header, Header{Key: key, Value: value, Type: "text"})
	}
	if !hasContentType {
		request.Header = append(request.Header, Header{
			Key:   "Content-Type",
			Value: "application/json",
			Type:  "text",
		})
	}

	return Item{
		Name:        tc.Name,
		Description: tc.Description,
		Event: []Event{
			{Listen: "test", Script: Script{Type: "text/javascript", Exec: testScript(tc)}},
			{Listen: "prerequest", Script: Script{Type: "text/javascript", Exec: signatureScript()}},
		},
		Request:  request,
		Response: []interface{}{},
	}
}

// Write saves the collection as indented JSON.
func (e *Exporter) Write(path string, collection *Collection) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", path, err)
	}
	e.log.Info().Str("path", path).Int("folders", len(collection.Item)).Msg("postman collection written")
	return nil
}

func actionFromPath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}

// buildURL targets {{base_url}} so the collection stays portable across
// environments.
func buildURL(path string) URL {
	trimmed := strings.TrimLeft(path, "/")
	raw := "{{base_url}}/" + trimmed
	out := URL{
		Raw:  raw,
		Host: []string{"{{base_url}}"},
	}
	if trimmed != "" {
		out.Path = strings.Split(trimmed, "/")
	}
	return out
}
