package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/idlecore/engine"
	"github.com/nathoo/idlecore/types"
)

// actionDisplayName derives a readable name for the status bar when the
// content gives no display name. "normal_tree" -> "Normal Tree".
func actionDisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing the
// current activity, gold, and combat level.
func (m Model) renderStatusBar() string {
	store := m.eng.Store

	activity := "Idle"
	if action := store.CurrentAction(); action != nil {
		name := actionDisplayName(action.ActionID)
		if def, ok := m.eng.Catalog.Action(action.ActionID); ok && def.Name != "" {
			name = def.Name
		}
		activity = fmt.Sprintf("%s (%s %d)", name, action.SkillID, store.SkillLevel(action.SkillID))
	}

	cb := engine.CombatLevel(
		store.SkillLevel(types.Attack),
		store.SkillLevel(types.Strength),
		store.SkillLevel(types.Defence),
		store.SkillLevel(types.Hitpoints),
	)

	left := " " + activity
	right := fmt.Sprintf("Cb:%d | Gold:%d ", cb, store.Gold())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
