package clip

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ReadRequest loads an export request document from a YAML file. The CLI
// one-shot mode uses this; the HTTP API takes the same shape as JSON.
func ReadRequest(path string) (*ExportRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var req ExportRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// WriteRequest saves a request document, used to snapshot jobs for replay.
func WriteRequest(req *ExportRequest, path string) error {
	data, err := yaml.Marshal(req)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
