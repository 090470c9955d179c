package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testChoices() []Choice {
	return []Choice{
		{Profile: "PIA - US East", Target: "us-east.example.com", Ping: 42.5, HasPing: true},
		{Profile: "PIA - Germany", Target: "germany.example.com", Ping: 110.0, HasPing: true},
		{Profile: "PIA - Japan", Target: "japan.example.com"},
	}
}

func TestChoiceDescription(t *testing.T) {
	measured := Choice{Profile: "PIA - US East", Target: "us-east.example.com", Ping: 42.5, HasPing: true}
	if got := measured.Description(); !strings.Contains(got, "42.50 ms") {
		t.Errorf("expected latency in description, got %q", got)
	}

	unreachable := Choice{Profile: "PIA - Japan", Target: "japan.example.com"}
	if got := unreachable.Description(); !strings.Contains(got, "unreachable") {
		t.Errorf("expected unreachable marker, got %q", got)
	}
}

func TestPickerSelectOnEnter(t *testing.T) {
	model := newPickerModel(testChoices())

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	final := updated.(pickerModel)

	if final.selected == nil {
		t.Fatal("expected a selection after enter")
	}
	if final.selected.Profile != "PIA - US East" {
		t.Errorf("expected first item selected, got %q", final.selected.Profile)
	}
	if final.aborted {
		t.Error("enter should not abort")
	}
}

func TestPickerAbortKeys(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		model := newPickerModel(testChoices())

		var msg tea.KeyMsg
		switch key {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}

		updated, _ := model.Update(msg)
		final := updated.(pickerModel)

		if !final.aborted {
			t.Errorf("key %q should abort the picker", key)
		}
		if final.selected != nil {
			t.Errorf("key %q should not select anything", key)
		}
	}
}

func TestPickerNavigation(t *testing.T) {
	model := newPickerModel(testChoices())

	moved, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated, _ := moved.(pickerModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	final := updated.(pickerModel)

	if final.selected == nil {
		t.Fatal("expected a selection after down+enter")
	}
	if final.selected.Profile != "PIA - Germany" {
		t.Errorf("expected second item selected, got %q", final.selected.Profile)
	}
}
