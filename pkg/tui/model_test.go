package tui

import "testing"

func TestUpdateAppendsNewRowToOrder(t *testing.T) {
	m := New(nil, nil)
	updated, _ := m.Update(rowMsg(Row{Name: "aircraft/0/alt", Value: "1000"}))
	mm := updated.(Model)
	if len(mm.order) != 1 || mm.order[0] != "aircraft/0/alt" {
		t.Fatalf("order = %v", mm.order)
	}
	if mm.rows["aircraft/0/alt"].Value != "1000" {
		t.Errorf("rows[...].Value = %q", mm.rows["aircraft/0/alt"].Value)
	}
}

func TestUpdateDoesNotDuplicateOrderOnRepeatedName(t *testing.T) {
	m := New(nil, nil)
	updated, _ := m.Update(rowMsg(Row{Name: "x", Value: "1"}))
	updated, _ = updated.(Model).Update(rowMsg(Row{Name: "x", Value: "2"}))
	mm := updated.(Model)
	if len(mm.order) != 1 {
		t.Fatalf("order = %v, want exactly one entry", mm.order)
	}
	if mm.rows["x"].Value != "2" {
		t.Errorf("rows[x].Value = %q, want the latest value", mm.rows["x"].Value)
	}
}

func TestUpdateClosedChannelQuits(t *testing.T) {
	m := New(nil, nil)
	_, cmd := m.Update(closedMsg{})
	if cmd == nil {
		t.Fatal("expected a tea.Quit command")
	}
}
