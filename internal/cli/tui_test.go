package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nmaniam/topovis/pkg/collect"
)

func TestNewCollectModelSortsHosts(t *testing.T) {
	m := NewCollectModel([]string{"sw2", "sw1", "sw3"}, nil)

	if len(m.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(m.rows))
	}
	if m.rows[0].host != "sw1" || m.rows[2].host != "sw3" {
		t.Errorf("rows not sorted: %q, %q, %q", m.rows[0].host, m.rows[1].host, m.rows[2].host)
	}
	if m.index["sw2"] != 1 {
		t.Errorf("index[sw2] = %d, want 1", m.index["sw2"])
	}
}

func TestCollectModelEventTransitions(t *testing.T) {
	events := make(chan collect.Event)
	var model tea.Model = NewCollectModel([]string{"sw1", "sw2"}, events)

	model, _ = model.Update(collect.Event{Host: "sw1", Kind: collect.EventConnecting})
	model, _ = model.Update(collect.Event{Host: "sw1", Device: "leaf1", Kind: collect.EventCollected})
	model, _ = model.Update(collect.Event{Host: "sw2", Kind: collect.EventFailed, Err: errors.New("dial timeout")})

	m := model.(CollectModel)
	if m.rows[0].state != stateCollected || m.rows[0].device != "leaf1" {
		t.Errorf("sw1 row = %+v, want collected as leaf1", m.rows[0])
	}
	if m.rows[1].state != stateFailed || m.rows[1].err == nil {
		t.Errorf("sw2 row = %+v, want failed with error", m.rows[1])
	}

	collected, failed := m.counts()
	if collected != 1 || failed != 1 {
		t.Errorf("counts = %d/%d, want 1/1", collected, failed)
	}
}

func TestCollectModelDoneQuits(t *testing.T) {
	var model tea.Model = NewCollectModel([]string{"sw1"}, nil)

	model, cmd := model.Update(collectDoneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !model.(CollectModel).done {
		t.Error("model should be marked done")
	}
}

func TestCollectModelView(t *testing.T) {
	events := make(chan collect.Event)
	var model tea.Model = NewCollectModel([]string{"sw1", "sw2"}, events)
	model, _ = model.Update(collect.Event{Host: "sw1", Device: "leaf1", Kind: collect.EventCollected})

	view := model.(CollectModel).View()
	if !strings.Contains(view, "sw1") || !strings.Contains(view, "sw2") {
		t.Errorf("view missing hosts:\n%s", view)
	}
	if !strings.Contains(view, "[1 collected, 0 failed, 2 total]") {
		t.Errorf("view missing summary footer:\n%s", view)
	}
}
