package model

import "testing"

func TestParseCount(t *testing.T) {
	cases := map[string]int{
		"12":   12,
		" 3 ":  3,
		"":     0,
		"abc":  0,
		"-4":   0,
		"2.5":  0,
		"0":    0,
		"007":  7,
		"1e3":  0,
		"  \t": 0,
	}
	for in, want := range cases {
		if got := ParseCount(in); got != want {
			t.Fatalf("ParseCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSummaryAddKeepsTotalConsistent(t *testing.T) {
	var s Summary
	for _, c := range []Category{Red, Red, Orange, Yellow, Green, Green, Green} {
		s.Add(c)
	}
	if s.Total != 7 {
		t.Fatalf("expected total 7, got %d", s.Total)
	}
	if s.Red+s.Orange+s.Yellow+s.Green != s.Total {
		t.Fatalf("buckets do not sum to total: %+v", s)
	}
	if s.Count(Red) != 2 || s.Count(Green) != 3 {
		t.Fatalf("unexpected counts: %+v", s)
	}
}

func TestCategoryOrderAndNames(t *testing.T) {
	if !(Green < Yellow && Yellow < Orange && Orange < Red) {
		t.Fatalf("categories are not ordered by risk")
	}
	for _, c := range Categories {
		parsed, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("parse %q: %v", c, err)
		}
		if parsed != c {
			t.Fatalf("expected %v, got %v", c, parsed)
		}
	}
	if _, err := ParseCategory("purple"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
