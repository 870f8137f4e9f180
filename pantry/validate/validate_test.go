package validate

import "testing"

func TestSimpleEmailValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ann@example.com", true},
		{"  ann@example.com  ", true},
		{"", false},
		{"ann", false},
		{"@example.com", false},
		{"ann@", false},
		{"ann@localhost", false},
		{"a@b@example.com", false},
		{"ann smith@example.com", false},
	}
	for _, tt := range tests {
		if got := SimpleEmailValid(tt.in); got != tt.want {
			t.Errorf("SimpleEmailValid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUsernameValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ann", true},
		{"ann_b.c-1", true},
		{"张三", true},
		{"a", false},
		{"ann@example.com", false},
		{"ann smith", false},
		{"abcdefghijklmnopqrstuvwxyz0123456", false},
	}
	for _, tt := range tests {
		if got := UsernameValid(tt.in); got != tt.want {
			t.Errorf("UsernameValid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNameGiven(t *testing.T) {
	for in, want := range map[string]bool{"Go": true, " - ": false, "": false, "  ": false, "-go": true} {
		if got := NameGiven(in); got != want {
			t.Errorf("NameGiven(%q) = %v, want %v", in, got, want)
		}
	}
}
