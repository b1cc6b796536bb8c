package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fpang/photoswipe/internal/cli"
	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/swipe"
)

const cardWidth = 44

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{m.headerView(), m.cardView()}
	if m.showTrash {
		sections = append(sections, m.trashView())
	}
	sections = append(sections, m.statusView(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	v := m.view
	if v.DeckID == "" {
		return TitleStyle.Render("photoswipe") + DimStyle.Render("  press o to choose a folder")
	}
	total := fmt.Sprintf("%d", v.Total)
	if !v.Exhausted {
		total += "+"
	}
	pos := min(v.Cursor+1, v.Total)
	return TitleStyle.Render(v.FolderName) +
		SubtitleStyle.Render(fmt.Sprintf("  %d / %s", pos, total)) +
		AccentStyle.Render(fmt.Sprintf("  trash %d", v.TrashCount))
}

func (m Model) cardView() string {
	v := m.view
	if v.Current == nil {
		msg := "No folder open"
		switch {
		case v.Done:
			msg = "All photos reviewed. t shows the trash, p purges it."
		case v.DeckID != "" && v.Total == 0:
			msg = "No photos in this folder"
		}
		return CardStyle.Width(cardWidth).Render(DimStyle.Render(msg))
	}

	fb := m.drag.feedback
	style := CardStyle
	switch fb.Direction {
	case swipe.DirectionRight:
		style = CardKeepStyle
	case swipe.DirectionLeft:
		style = CardDeleteStyle
	}

	lines := []string{TitleStyle.Render(v.Current.Name)}
	lines = append(lines, photoDetails(*v.Current)...)
	if badge := badgeView(fb); badge != "" {
		lines = append(lines, "", badge)
	}

	card := style.Width(cardWidth).Render(strings.Join(lines, "\n"))
	// Follow the drag horizontally, approximating the card rotation with
	// extra offset in the drag direction.
	if m.drag.active {
		shift := int(math.Round(m.drag.dx/m.opts.CellWidth + fb.Rotation*4))
		if shift > 0 {
			card = lipgloss.NewStyle().MarginLeft(min(shift, max(m.width-cardWidth-4, 0))).Render(card)
		}
	}

	if len(v.Next) > 0 {
		names := make([]string, len(v.Next))
		for i, p := range v.Next {
			names[i] = p.Name
		}
		card += "\n" + DimStyle.Render("next: "+strings.Join(names, ", "))
	}
	return card
}

// badgeView shows KEEP or DELETE once the overlay is at least half visible.
func badgeView(fb swipe.Feedback) string {
	switch {
	case fb.KeepOpacity >= 0.5:
		return KeepBadge
	case fb.DeleteOpacity >= 0.5:
		return DeleteBadge
	default:
		return ""
	}
}

func photoDetails(p deck.Photo) []string {
	var out []string
	if !p.TakenAt.IsZero() {
		out = append(out, SubtitleStyle.Render("taken "+p.TakenAt.Format("2006-01-02 15:04")))
	} else if !p.Modified.IsZero() {
		out = append(out, SubtitleStyle.Render("modified "+p.Modified.Format("2006-01-02 15:04")))
	}
	if p.Camera != "" {
		out = append(out, SubtitleStyle.Render(p.Camera))
	}
	if p.Size > 0 {
		out = append(out, DimStyle.Render(cli.FormatBytes(p.Size)))
	}
	return out
}

func (m Model) trashView() string {
	photos := m.sess.Trash()
	if len(photos) == 0 {
		return PanelStyle.Render(DimStyle.Render("Trash is empty"))
	}
	var total int64
	lines := make([]string, 0, len(photos)+1)
	for _, p := range photos {
		total += p.Size
		lines = append(lines, fmt.Sprintf("%s %s", ErrorStyle.Render("✕"), p.Name))
	}
	lines = append(lines, DimStyle.Render(fmt.Sprintf("%d photos, %s", len(photos), cli.FormatBytes(total))))
	return PanelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) statusView() string {
	switch {
	case m.confirm:
		return ErrorStyle.Render(fmt.Sprintf("Purge %d photos (%s)? y/n", m.view.TrashCount, m.opts.PurgeMode))
	case m.busy != "":
		return AccentStyle.Render(m.busy)
	case m.view.Loading:
		return DimStyle.Render("Loading more photos...")
	case m.status == "":
		return ""
	case m.statusErr:
		return ErrorStyle.Render(m.status)
	default:
		return SuccessStyle.Render(m.status)
	}
}
