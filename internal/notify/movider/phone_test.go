package movider

import (
	"errors"
	"testing"
)

func TestFormatPhilippineNumber(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "local 09 prefix", input: "09171234567", want: "+639171234567"},
		{name: "bare 9 prefix", input: "9171234567", want: "+639171234567"},
		{name: "country code without plus", input: "639171234567", want: "+639171234567"},
		{name: "already e164", input: "+639171234567", want: "+639171234567"},
		{name: "with spaces and dashes", input: "0917-123-4567", want: "+639171234567"},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "0917", wantErr: true},
		{name: "letters only", input: "abc", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatPhilippineNumber(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if !errors.Is(err, ErrInvalidPhone) {
					t.Fatalf("expected ErrInvalidPhone, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
