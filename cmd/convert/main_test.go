package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, out, want string
	}{
		{"photo.png", "", "photo.webp"},
		{"dir/photo.jpeg", "", filepath.Join("dir", "photo.webp")},
		{"dir/archive.tar.gz", "out", filepath.Join("out", "archive.tar.webp")},
		{"noext", "out", filepath.Join("out", "noext.webp")},
	}
	for _, tt := range tests {
		if got := outputPath(tt.in, tt.out); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.in, tt.out, got, tt.want)
		}
	}
}

func TestPlanOutputs(t *testing.T) {
	got, err := planOutputs([]string{"a/x.png", "b/y.jpg"}, "out")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join("out", "x.webp"), filepath.Join("out", "y.webp")}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("outputs[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Без -out одинаковые имена в разных каталогах не конфликтуют.
	if _, err := planOutputs([]string{"a/x.png", "b/x.png"}, ""); err != nil {
		t.Fatalf("unexpected conflict: %v", err)
	}
}

func TestPlanOutputs_Collision(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		out    string
	}{
		{"same basename into out dir", []string{"a/x.png", "b/x.png"}, "out"},
		{"different extensions", []string{"dir/x.png", "dir/x.jpg"}, ""},
		{"same file twice", []string{"x.png", "./x.png"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planOutputs(tt.inputs, tt.out)
			if err == nil || !strings.Contains(err.Error(), "both write to") {
				t.Fatalf("expected collision error, got %v", err)
			}
		})
	}
}
