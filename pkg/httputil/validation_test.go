package httputil

import "testing"

func TestParseTokenID(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"7", 7, true},
		{"0", 0, true},
		{" 12 ", 12, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTokenID(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseTokenID(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
