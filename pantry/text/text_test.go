package text

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"golang", "golang"},
		{"  GoLang ", "golang"},
		{"Café", "cafe"},
		{"Ærø", "ærø"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Rust & Go ", "rust-go"},
		{"C#", "csharp"},
		{"C++", "cplusplus"},
		{"Café/Bar", "cafe-bar"},
		{"web [frontend]?", "web-frontend"},
		{"--a--b--", "a-b"},
		{"软件开发", "软件开发"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  GoLang ", "golang"},
		{"Café", "café"},
		{"ゲーム", "ゲーム"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitNames(t *testing.T) {
	got := SplitNames(" Go, rust,,GO ，Wasm ")
	want := []string{"go", "rust", "wasm"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitNames = %q, want %q", got, want)
	}
	got = SplitNames("Café, cafe, ゲーム, ケーム")
	want = []string{"café", "cafe", "ゲーム", "ケーム"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitNames kept marks = %q, want %q", got, want)
	}
	if got := SplitNames(""); len(got) != 0 {
		t.Errorf("SplitNames(\"\") = %q, want empty", got)
	}
}
