package main

import (
	"reflect"
	"testing"
)

func TestParseItems(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		max      int
		expected []int
		wantErr  bool
	}{
		{"empty selects all", "", 3, []int{1, 2, 3}, false},
		{"all keyword", "ALL", 2, []int{1, 2}, false},
		{"single", "2", 5, []int{2}, false},
		{"list and range", "5-7, 1,3", 8, []int{1, 3, 5, 6, 7}, false},
		{"duplicates collapse", "2,2,1-2", 4, []int{1, 2}, false},
		{"trailing comma", "1,", 3, []int{1}, false},
		{"out of range", "4", 3, nil, true},
		{"zero", "0", 3, nil, true},
		{"range past end", "2-9", 3, nil, true},
		{"reversed range", "3-1", 3, nil, true},
		{"not a number", "a", 3, nil, true},
		{"bad range end", "1-x", 3, nil, true},
		{"only commas", ",,", 3, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseItems(tt.spec, tt.max)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseItems(%q, %d) expected error, got %v", tt.spec, tt.max, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseItems(%q, %d) unexpected error: %v", tt.spec, tt.max, err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseItems(%q, %d) = %v, expected %v", tt.spec, tt.max, got, tt.expected)
			}
		})
	}
}

func TestParseItems_EmptyPlaylist(t *testing.T) {
	got, err := ParseItems("all", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no positions, got %v", got)
	}
}
