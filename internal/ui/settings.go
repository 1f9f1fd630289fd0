package ui

import (
	"sync"

	"MarkupBoard/internal/state"
)

// SettingsModel holds the toolbar state. Every change is normalized into
// the control ranges before listeners see it.
type SettingsModel struct {
	mu        sync.RWMutex
	s         state.Settings
	listeners []func(state.Settings)
}

// NewSettingsModel starts from s.
func NewSettingsModel(s state.Settings) *SettingsModel {
	return &SettingsModel{s: s.Normalize()}
}

// Settings implements interact.SettingsSource.
func (m *SettingsModel) Settings() state.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s
}

// OnChange registers fn to run after every update.
func (m *SettingsModel) OnChange(fn func(state.Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Update edits the settings in place.
func (m *SettingsModel) Update(edit func(*state.Settings)) {
	m.mu.Lock()
	next := m.s
	edit(&next)
	next = next.Normalize()
	changed := next != m.s
	m.s = next
	listeners := append([]func(state.Settings){}, m.listeners...)
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(next)
	}
}

func (m *SettingsModel) SetTool(t state.Tool) {
	m.Update(func(s *state.Settings) { s.Tool = t })
}

func (m *SettingsModel) SetColor(c string) {
	m.Update(func(s *state.Settings) { s.Color = c })
}

func (m *SettingsModel) SetLineWidth(v float64) {
	m.Update(func(s *state.Settings) { s.LineWidth = v })
}

func (m *SettingsModel) SetOpacity(v float64) {
	m.Update(func(s *state.Settings) { s.Opacity = v })
}

func (m *SettingsModel) SetFontSize(v float64) {
	m.Update(func(s *state.Settings) { s.FontSize = v })
}
