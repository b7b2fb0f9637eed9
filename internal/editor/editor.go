package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func editorCmd() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	if e := os.Getenv("VISUAL"); e != "" {
		return e
	}
	return "vi"
}

// Open runs the user's editor on path, attached to the terminal.
func Open(path string) error {
	editor := editorCmd()
	fields := strings.Fields(editor)
	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q: %w", editor, err)
	}
	return nil
}

// Compose opens initial in the editor as a markdown temp file and returns
// the saved text with surrounding whitespace trimmed.
func Compose(initial string) (string, error) {
	f, err := os.CreateTemp("", "taskmanager-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if err := Open(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
