package checksum

import "testing"

func TestSumStable(t *testing.T) {
	a := Sum([]byte("hello"))
	if a != Sum([]byte("hello")) {
		t.Fatal("same input produced different sums")
	}
	if a == Sum([]byte("hello!")) {
		t.Fatal("different input produced same sum")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
}

func TestParseIfMatch(t *testing.T) {
	cases := map[string]string{
		`"abc"`:   "abc",
		`W/"abc"`: "abc",
		"abc":     "abc",
		" * ":     "",
		"":        "",
	}
	for in, want := range cases {
		if got := ParseIfMatch(in); got != want {
			t.Errorf("ParseIfMatch(%q) = %q, want %q", in, got, want)
		}
	}
	if got := ParseIfMatch(ETag("xyz")); got != "xyz" {
		t.Errorf("round trip = %q", got)
	}
}
