package util

import "testing"

func TestIsSpecValue(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{token: "480V", want: true},
		{token: "120/277V", want: true},
		{token: "DC24V", want: true},
		{token: "60A", want: true},
		{token: "2.02W", want: true},
		{token: "2.2KW", want: true},
		{token: "5HP", want: true},
		{token: "1800RPM", want: true},
		{token: "3PH", want: true},
		{token: "2.6875IN", want: true},
		{token: "60HZ", want: true},
		{token: "12AWG", want: true},
		{token: "SP20A", want: false},
		{token: "7815N15", want: false},
		{token: "PCMB-8", want: false},
		{token: "3AXD50000731121", want: false},
		{token: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			if got := IsSpecValue(tc.token); got != tc.want {
				t.Fatalf("IsSpecValue(%q) = %v want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestHasStandardsPrefix(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{token: "ISO9001", want: true},
		{token: "iso9001", want: true},
		{token: "DIN912", want: true},
		{token: "ANSI150", want: true},
		{token: "NEMA4", want: true},
		{token: "SAE10W", want: true},
		// The prefix alone, or a prefix followed by a letter, is not a
		// standards designation.
		{token: "DIN", want: false},
		{token: "ISOLATOR", want: false},
		{token: "7815N15", want: false},
		{token: "PCMB-8", want: false},
		{token: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			if got := HasStandardsPrefix(tc.token); got != tc.want {
				t.Fatalf("HasStandardsPrefix(%q) = %v want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestIsDescriptorToken(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{token: "4-BOLT", want: true},
		{token: "3-WAY", want: true},
		{token: "700-HOUR", want: true},
		{token: "12-POINT", want: true},
		{token: "18-SPC", want: true},
		{token: "2-DI/O", want: true},
		{token: "80-1234", want: false},
		{token: "PCMB-8", want: false},
		{token: "6970T53", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			if got := IsDescriptorToken(tc.token); got != tc.want {
				t.Fatalf("IsDescriptorToken(%q) = %v want %v", tc.token, got, tc.want)
			}
		})
	}
}
