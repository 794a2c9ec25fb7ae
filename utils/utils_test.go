package utils

import "testing"

func TestDomain(t *testing.T) {
	t.Parallel()
	cases := []struct {
		link string
		want string
	}{
		{"https://www.mayoclinic.org/search", "www.mayoclinic.org"},
		{"https://pubmed.ncbi.nlm.nih.gov/", "pubmed.ncbi.nlm.nih.gov"},
		{"http://who.int", "who.int"},
		{"not-a-url", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Domain(c.link); got != c.want {
			t.Fatalf("Domain(%q) = %q, want %q", c.link, got, c.want)
		}
	}
}

func TestStr(t *testing.T) {
	t.Parallel()
	if got := Str(nil); got != "" {
		t.Fatalf("Str(nil) = %q, want empty", got)
	}
	if got := Str("x"); got != "x" {
		t.Fatalf("Str(\"x\") = %q", got)
	}
	if got := Str(3.5); got != "3.5" {
		t.Fatalf("Str(3.5) = %q", got)
	}
}
