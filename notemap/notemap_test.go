package notemap

import "testing"

var lyreNotes = []int{55, 57, 59, 60, 62, 64, 65, 67, 69, 71, 72, 74, 76, 77, 79, 81}

func TestResolve(t *testing.T) {
	r, err := New(lyreNotes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		note     uint8
		expected int
	}{
		{"Lowest", 55, 0},
		{"MiddleC", 60, 3},
		{"Highest", 81, 15},
		{"UnmappedSharp", 56, NotPlayable},
		{"UnmappedInRange", 80, NotPlayable},
		{"BelowRange", 54, NotPlayable},
		{"AboveRange", 82, NotPlayable},
		{"Zero", 0, NotPlayable},
		{"MaxByte", 255, NotPlayable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.note)
			if got != tt.expected {
				t.Errorf("expected=%d, got=%d", tt.expected, got)
			}
		})
	}
}

func TestResolveIsBijection(t *testing.T) {
	r, err := New(lyreNotes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(r.table) != int(r.Max())-int(r.Min())+1 {
		t.Errorf("expected table length %d, got %d", int(r.Max())-int(r.Min())+1, len(r.table))
	}

	seen := map[int]uint8{}
	for n := 0; n < 256; n++ {
		idx := r.Resolve(uint8(n))
		if idx == NotPlayable {
			continue
		}
		if prev, ok := seen[idx]; ok {
			t.Errorf("actuator %d mapped twice: notes %d and %d", idx, prev, n)
		}
		seen[idx] = uint8(n)

		back, ok := r.Note(idx)
		if !ok || back != uint8(n) {
			t.Errorf("reverse lookup of %d: expected=%d, got=%d", idx, n, back)
		}
	}
	if len(seen) != len(lyreNotes) {
		t.Errorf("expected %d mapped notes, got %d", len(lyreNotes), len(seen))
	}
	for i := 0; i < r.Len(); i++ {
		if _, ok := seen[i]; !ok {
			t.Errorf("actuator %d has no note", i)
		}
	}
}

func TestContains(t *testing.T) {
	r, err := New(lyreNotes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Contains(56) {
		t.Errorf("expected 56 to be in range")
	}
	if r.Contains(54) || r.Contains(82) {
		t.Errorf("expected 54 and 82 to be out of range")
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name  string
		notes []int
	}{
		{"Empty", nil},
		{"Descending", []int{60, 59}},
		{"Duplicate", []int{60, 60}},
		{"Negative", []int{-1, 60}},
		{"TooHigh", []int{60, 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.notes)
			if err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestNotesIsCopy(t *testing.T) {
	r, err := New(lyreNotes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notes := r.Notes()
	notes[0] = 0
	if r.Resolve(55) != 0 {
		t.Errorf("mutating Notes() changed the mapping")
	}
}
