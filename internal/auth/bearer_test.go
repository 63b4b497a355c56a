package auth

import "testing"

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"empty header", "", ""},
		{"no scheme", "abc.def.ghi", ""},
		{"wrong scheme", "Basic abc.def.ghi", ""},
		{"lowercase scheme", "bearer abc.def.ghi", ""},
		{"uppercase scheme", "BEARER abc.def.ghi", ""},
		{"prefix only", "Bearer ", ""},
		{"prefix and spaces", "Bearer    ", ""},
		{"extra spaces around token", "Bearer   abc.def.ghi  ", "abc.def.ghi"},
		{"no space after scheme", "Bearerabc.def.ghi", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExtractBearerToken(tt.header); got != tt.want {
				t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
