package store

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/rogersnm/taskmanager/internal/model"
	"gopkg.in/yaml.v3"
)

// A task document is YAML frontmatter holding the task fields followed by
// the description as a markdown body.

func decodeTask(r io.Reader) (model.Task, error) {
	var t model.Task
	body, err := frontmatter.Parse(r, &t)
	if err != nil {
		return t, fmt.Errorf("parsing frontmatter: %w", err)
	}
	desc := strings.TrimPrefix(string(body), "\n")
	t.Description = strings.TrimSuffix(desc, "\n")
	return t, nil
}

func encodeTask(t *model.Task) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n")
	if t.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Description)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
