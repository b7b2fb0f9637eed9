package render

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/rogersnm/taskmanager/internal/model"
)

var (
	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle      = lipgloss.NewStyle()
	editingStyle   = lipgloss.NewStyle().Reverse(true)
)

// TaskTable renders tasks in list order. The row whose id equals editingID
// is highlighted.
func TaskTable(tasks []model.Task, editingID string) string {
	return taskTable(tasks, editingID, time.Now())
}

func taskTable(tasks []model.Task, editingID string, now time.Time) string {
	if len(tasks) == 0 {
		return "No tasks found."
	}
	rows := make([][]string, len(tasks))
	editRow := -1
	for i, t := range tasks {
		rows[i] = []string{
			t.ID,
			Title(t),
			Status(t.Status),
			humanize.RelTime(t.UpdatedAt, now, "ago", "from now"),
		}
		if editingID != "" && t.ID == editingID {
			editRow = i
		}
	}
	return renderTable([]string{"ID", "Title", "Status", "Updated"}, rows, editRow)
}

func renderTable(headers []string, rows [][]string, highlight int) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerRowStyle
			case row == highlight:
				return editingStyle
			default:
				return cellStyle
			}
		})
	return t.Render()
}
