package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pidash/internal/api"
)

// RenderProjects renders the project directories and their git state.
func RenderProjects(projects []api.Project, sel int, busy map[string]bool, maxRows, width int) string {
	rows := make([]string, 0, len(projects))
	for i, p := range projects {
		var git string
		switch {
		case !p.IsGit:
			git = MutedStyle.Render("not a git repository")
		case p.GitInfo == nil:
			git = MutedStyle.Render("git")
		default:
			commit := p.GitInfo.Commit
			if len(commit) > 7 {
				commit = commit[:7]
			}
			git = lipgloss.NewStyle().Foreground(ColorInfo).Render(" "+p.GitInfo.Branch) + " " + MutedStyle.Render(commit)
			if p.GitInfo.Dirty {
				git += " " + lipgloss.NewStyle().Foreground(ColorWarning).Render("● modified")
			}
		}
		content := cell(p.Name, 24) + " " + git + busyMarker(busy[p.Name])
		rows = append(rows, listRow(content, i == sel, width))
	}
	return listSection("Projects", fmt.Sprintf("%d", len(projects)), rows, sel, maxRows, width, "No projects found in ~/projects directory")
}
