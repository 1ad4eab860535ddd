package semver

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"1.2.3", Version{1, 2, 3}},
		{"2", Version{2, 0, 0}},
		{"2.5", Version{2, 5, 0}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"x.y.z", "1.2.3.4", "-1.0.0", ""} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): want error, got nil", in)
		}
	}
}

func TestCheck(t *testing.T) {
	rng := Range{Min: Version{1, 0, 0}, Max: Version{2, 5, 0}}
	tests := []struct {
		in   string
		want Result
	}{
		{"1.0.0", Supported},
		{"2.5.0", Supported},
		{"1.9.9", Supported},
		{"0.9.9", TooOld},
		{"2.5.1", TooNew},
		{"not-a-version", Invalid},
	}
	for _, tt := range tests {
		if got := Check(tt.in, rng); got != tt.want {
			t.Errorf("Check(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
