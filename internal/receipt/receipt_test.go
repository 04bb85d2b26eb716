package receipt

import (
	"fmt"
	"sync"
	"testing"
)

func TestValid(t *testing.T) {
	cases := []struct {
		s  string
		ok bool
	}{
		{"RCP-2024-001", true},
		{"RCP-2026-999", true},
		{"RCP-2024-1", false},
		{"RCP-24-001", false},
		{"rcp-2024-001", false},
		{"RCP-2024-001 ", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := Valid(tc.s); got != tc.ok {
			t.Fatalf("Valid(%q) = %v, want %v", tc.s, got, tc.ok)
		}
	}
}

func TestNext(t *testing.T) {
	cases := []struct {
		last string
		year int
		want string
	}{
		{"", 2024, "RCP-2024-001"},
		{"RCP-2024-001", 2024, "RCP-2024-002"},
		{"RCP-2024-041", 2024, "RCP-2024-042"},
		{"RCP-2024-999", 2024, "RCP-2024-1000"}, // widens past 999
		{"RCP-2023-150", 2024, "RCP-2024-001"},  // year rollover restarts
		{"garbage", 2024, "RCP-2024-001"},
	}
	for _, tc := range cases {
		if got := Next(tc.last, tc.year); got != tc.want {
			t.Fatalf("Next(%q, %d) = %q, want %q", tc.last, tc.year, got, tc.want)
		}
	}
}

func TestIssuerSequence(t *testing.T) {
	issuer := NewIssuer()
	if got := issuer.Issue(2024); got != "RCP-2024-001" {
		t.Fatalf("first issue = %q", got)
	}
	if got := issuer.Issue(2024); got != "RCP-2024-002" {
		t.Fatalf("second issue = %q", got)
	}
	if got := issuer.Issue(2025); got != "RCP-2025-001" {
		t.Fatalf("new year issue = %q", got)
	}
	// A late entry for the previous year keeps the current sequence
	// instead of reusing numbers.
	if got := issuer.Issue(2024); got != "RCP-2025-002" {
		t.Fatalf("stale year issue = %q", got)
	}
}

func TestIssuerSeed(t *testing.T) {
	issuer := NewIssuer()
	issuer.Seed("RCP-2024-041")
	issuer.Seed("RCP-2024-007") // lower, ignored
	issuer.Seed("not-a-receipt")
	if got := issuer.Issue(2024); got != "RCP-2024-042" {
		t.Fatalf("seeded issue = %q, want RCP-2024-042", got)
	}

	// Widened sequences past 999 seed and continue correctly.
	issuer.Seed("RCP-2024-1041")
	if got := issuer.Issue(2024); got != "RCP-2024-1042" {
		t.Fatalf("widened seeded issue = %q, want RCP-2024-1042", got)
	}
	issuer.Seed("RCP-2024-500") // behind a widened sequence, ignored
	if got := issuer.Issue(2024); got != "RCP-2024-1043" {
		t.Fatalf("issue after stale seed = %q, want RCP-2024-1043", got)
	}
}

func TestIssuerConcurrentUnique(t *testing.T) {
	issuer := NewIssuer()
	const n = 200

	var wg sync.WaitGroup
	out := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out <- issuer.Issue(2024)
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[string]bool, n)
	for num := range out {
		if seen[num] {
			t.Fatalf("duplicate receipt number %q", num)
		}
		seen[num] = true
	}
	if len(seen) != n {
		t.Fatalf("issued %d unique numbers, want %d", len(seen), n)
	}
	if !seen[fmt.Sprintf("RCP-2024-%03d", n)] {
		t.Fatalf("expected sequence to reach %d", n)
	}
}
