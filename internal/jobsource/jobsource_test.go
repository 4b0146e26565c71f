package jobsource

import "testing"

func TestCanonicalURL(t *testing.T) {
	cases := map[string]string{
		"https://www.linkedin.com/jobs/view/123/?trk=feed&refId=abc": "https://www.linkedin.com/jobs/view/123",
		"HTTPS://Jobs.Example.COM/view/7":                            "https://jobs.example.com/view/7",
		"https://jobs.example.com/view/7#apply":                      "https://jobs.example.com/view/7",
		"  https://jobs.example.com/view/7  ":                        "https://jobs.example.com/view/7",
		"https://jobs.example.com/view/7":                            "https://jobs.example.com/view/7",
	}

	for raw, want := range cases {
		if got := CanonicalURL(raw); got != want {
			t.Fatalf("CanonicalURL(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCanonicalURLUnparseable(t *testing.T) {
	// Not a URL at all: returned trimmed, untouched otherwise.
	if got := CanonicalURL(" not a url "); got != "not a url" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestCanonicalURLDedupsTrackedVariants(t *testing.T) {
	a := CanonicalURL("https://www.linkedin.com/jobs/view/42/?trackingId=x")
	b := CanonicalURL("https://www.linkedin.com/jobs/view/42/?trackingId=y&src=mail")
	if a != b {
		t.Fatalf("tracked variants did not canonicalize equally: %q vs %q", a, b)
	}
}
