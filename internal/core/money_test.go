package core

import (
	"testing"
)

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 290000}
	b := Money{Cents: 145000}

	if got := a.Sub(b); got.Cents != 145000 {
		t.Fatalf("Sub = %d, want 145000", got.Cents)
	}
	if got := b.Add(b); got != a {
		t.Fatalf("Add = %d, want %d", got.Cents, a.Cents)
	}
	if !(Money{Cents: -1}).IsNegative() {
		t.Fatal("expected negative")
	}
	if !(Money{}).IsZero() {
		t.Fatal("expected zero")
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0"},
		{500, "500"},
		{1000, "1,000"},
		{290000, "290,000"},
		{2500000, "2,500,000"},
		{-10000, "-10,000"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("String(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
