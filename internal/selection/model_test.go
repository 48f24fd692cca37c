package selection

import (
	"strings"
	"testing"

	"github.com/ytget/quickytdl/internal/model"
)

func entries(formats ...[]string) []*model.Entry {
	out := make([]*model.Entry, len(formats))
	for i, f := range formats {
		out[i] = &model.Entry{
			Position:         i + 1,
			Title:            "Video",
			AvailableFormats: f,
		}
	}
	return out
}

func TestSetEntries(t *testing.T) {
	src := entries([]string{"720p", model.FormatAudioOnly}, []string{"360p"})
	src[0].SelectedFormat = model.FormatAudioOnly

	m := NewModel()
	m.SetEntries(src, true)

	if m.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", m.Len())
	}
	got := m.Entries()
	if got[0].SelectedFormat != "720p" || got[1].SelectedFormat != "360p" {
		t.Errorf("Expected default formats, got %s and %s", got[0].SelectedFormat, got[1].SelectedFormat)
	}
	if m.SelectedCount() != 2 {
		t.Errorf("Expected all selected, got %d", m.SelectedCount())
	}

	// Source entries stay untouched
	if src[0].SelectedFormat != model.FormatAudioOnly {
		t.Error("SetEntries should not mutate caller entries")
	}

	m.SetEntries(src, false)
	if m.SelectedCount() != 0 {
		t.Errorf("Expected none selected after reset, got %d", m.SelectedCount())
	}
}

func TestToggle(t *testing.T) {
	m := NewModel()
	m.SetEntries(entries([]string{"720p"}, []string{"720p"}), true)

	if !m.Toggle(2) {
		t.Fatal("Toggle of existing position should succeed")
	}
	sel := m.Selected()
	if len(sel) != 1 || sel[0].Position != 1 {
		t.Errorf("Expected only position 1 selected, got %v", sel)
	}

	if m.Toggle(9) {
		t.Error("Toggle of unknown position should fail")
	}
}

func TestSetAll(t *testing.T) {
	m := NewModel()
	m.SetEntries(entries([]string{"720p"}, []string{"480p"}, []string{"360p"}), false)

	m.SetAll(true)
	sel := m.Selected()
	if len(sel) != 3 {
		t.Fatalf("Expected 3 selected, got %d", len(sel))
	}
	for i, e := range sel {
		if e.Position != i+1 {
			t.Errorf("Selected out of order: position %d at %d", e.Position, i)
		}
	}

	m.SetAll(false)
	if len(m.Selected()) != 0 {
		t.Error("Expected empty selection after SetAll(false)")
	}
}

func TestSetFormat_NonMemberIsNoop(t *testing.T) {
	m := NewModel()
	m.SetEntries(entries([]string{"720p", model.FormatAudioOnly}), true)

	if m.SetFormat(1, "1080p") {
		t.Error("SetFormat with non-member format should return false")
	}
	e, _ := m.Entry(1)
	if e.SelectedFormat != "720p" {
		t.Errorf("Format should be unchanged, got %s", e.SelectedFormat)
	}

	if !m.SetFormat(1, model.FormatAudioOnly) {
		t.Error("SetFormat with member format should succeed")
	}
	e, _ = m.Entry(1)
	if e.SelectedFormat != model.FormatAudioOnly {
		t.Errorf("Expected audio only, got %s", e.SelectedFormat)
	}

	if m.SetFormat(5, "720p") {
		t.Error("SetFormat on unknown position should return false")
	}
}

func TestApplyGlobalFormat(t *testing.T) {
	m := NewModel()
	m.SetEntries(entries(
		[]string{"1080p", "720p"},
		[]string{"720p"},
		[]string{"1080p"},
	), true)

	m.ApplyGlobalFormat("720p")

	got := m.Entries()
	expected := []string{"720p", "720p", "1080p"}
	for i, want := range expected {
		if got[i].SelectedFormat != want {
			t.Errorf("Entry %d: expected %s, got %s", i+1, want, got[i].SelectedFormat)
		}
	}
}

func TestSetSampleRate(t *testing.T) {
	m := NewModel()
	m.SetEntries(entries([]string{model.FormatAudioOnly}), true)

	if !m.SetSampleRate(1, 44100) {
		t.Fatal("SetSampleRate should succeed")
	}
	if e, _ := m.Entry(1); e.SampleRate != 44100 {
		t.Errorf("Expected 44100, got %d", e.SampleRate)
	}
	if m.SetSampleRate(1, -1) {
		t.Error("Negative sample rate should be rejected")
	}
}

func TestCommonAndAllFormats(t *testing.T) {
	m := NewModel()
	if m.CommonFormats() != nil {
		t.Error("Expected nil common formats for empty model")
	}

	m.SetEntries(entries(
		[]string{"1080p", "720p", model.FormatAudioOnly},
		[]string{"720p", model.FormatAudioOnly},
	), true)

	if got := strings.Join(m.CommonFormats(), ","); got != "720p,"+model.FormatAudioOnly {
		t.Errorf("Unexpected common formats: %s", got)
	}
	if got := strings.Join(m.AllFormats(), ","); got != "1080p,720p,"+model.FormatAudioOnly {
		t.Errorf("Unexpected all formats: %s", got)
	}
}

func TestSelectedReturnsCopies(t *testing.T) {
	m := NewModel()
	m.SetEntries(entries([]string{"720p"}), true)

	sel := m.Selected()
	sel[0].SelectedFormat = "tampered"

	if e, _ := m.Entry(1); e.SelectedFormat != "720p" {
		t.Error("Mutating Selected() output should not affect the model")
	}
}
