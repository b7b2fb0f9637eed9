package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rogersnm/taskmanager/internal/board"
	"github.com/rogersnm/taskmanager/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	palette = map[string]lipgloss.Color{
		board.ColorOrange: lipgloss.Color("208"),
		board.ColorYellow: lipgloss.Color("11"),
		board.ColorGreen:  lipgloss.Color("10"),
		board.ColorGray:   lipgloss.Color("8"),
	}
)

func Markdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// StatusStyle returns the lipgloss style for a status.
func StatusStyle(status model.Status) lipgloss.Style {
	class := board.StatusClass(status)
	return lipgloss.NewStyle().
		Foreground(palette[class.Color]).
		Strikethrough(class.Strikethrough)
}

func Status(status model.Status) string {
	return StatusStyle(status).Render(string(status))
}

// Title renders a task title, struck through once the task is completed.
func Title(t model.Task) string {
	return lipgloss.NewStyle().
		Strikethrough(board.StatusClass(t.Status).Strikethrough).
		Render(t.Title)
}

func Field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

// Task renders the detail view: a header, the fields, then the
// description as markdown.
func Task(t model.Task) (string, error) {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(t.Title))
	sb.WriteString("\n")
	for _, f := range []string{
		Field("ID", t.ID),
		Field("Status", Status(t.Status)),
		Field("Created", t.CreatedAt.Local().Format("2006-01-02 15:04")),
		Field("Updated", t.UpdatedAt.Local().Format("2006-01-02 15:04")),
	} {
		sb.WriteString("  " + f + "\n")
	}
	if strings.TrimSpace(t.Description) != "" {
		md, err := Markdown(t.Description)
		if err != nil {
			return "", err
		}
		sb.WriteString(md)
	}
	return sb.String(), nil
}
