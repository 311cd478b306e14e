package idgen

import (
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()

	if len(id1) != 20 {
		t.Errorf("NewID() length = %d, want 20", len(id1))
	}
	if id1 == id2 {
		t.Error("NewID() returned duplicate IDs")
	}
}

func TestNewSessionID(t *testing.T) {
	if len(NewSessionID()) != 20 {
		t.Error("NewSessionID() should produce a 20-character xid")
	}
}

func TestNewConfigID(t *testing.T) {
	ts := time.UnixMilli(1700000000000)
	if got := NewConfigID(ts); got != "1700000000000" {
		t.Errorf("NewConfigID() = %q, want %q", got, "1700000000000")
	}

	// Later timestamps sort after earlier ones lexicographically at equal length
	later := NewConfigID(ts.Add(time.Second))
	if later <= NewConfigID(ts) {
		t.Error("NewConfigID() should grow with time")
	}
}

func TestNewCopyID(t *testing.T) {
	ts := time.UnixMilli(42)
	got := NewCopyID("crime-matrix", ts)
	if got != "crime-matrix_copy_42" {
		t.Errorf("NewCopyID() = %q", got)
	}
}

func TestPartID(t *testing.T) {
	if got := PartID("forecasting", 2); got != "forecasting_part_2" {
		t.Errorf("PartID() = %q", got)
	}
	if got := PartID("forecasting", 3); got != "forecasting_part_3" {
		t.Errorf("PartID() = %q", got)
	}
}

func TestIsPartOf(t *testing.T) {
	if !IsPartOf("forecasting_part_2", "forecasting") {
		t.Error("IsPartOf() should match a generated part ID")
	}
	if IsPartOf("forecasting", "forecasting") {
		t.Error("IsPartOf() should not match the original page")
	}
	if IsPartOf("forecasting_copy_1", "forecasting") {
		t.Error("IsPartOf() should not match a duplicate page")
	}
	// Parts of a duplicate belong to the duplicate, not the source
	if IsPartOf("forecasting_part_2", "fore") {
		t.Error("IsPartOf() must match the full page ID prefix")
	}
}

func TestBaseID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"forecasting", "forecasting"},
		{"forecasting_part_2", "forecasting"},
		{"crime-matrix_copy_1772400000000", "crime-matrix"},
		{"crime-matrix_copy_1772400000000_part_3", "crime-matrix"},
		{"tactical-daily", "tactical-daily"},
		{"not_a_part_suffix_x", "not_a_part_suffix_x"},
	}
	for _, tt := range tests {
		if got := BaseID(tt.id); got != tt.want {
			t.Errorf("BaseID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
