package main

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "-"},
		{-3, "-"},
		{59, "0:59"},
		{61, "1:01"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.seconds); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate short = %q", got)
	}
	if got := truncate("a very long meeting title", 10); got != "a very ..." {
		t.Fatalf("truncate long = %q", got)
	}
	if got := truncate("日本語のタイトルです長い", 8); got != "日本語のタ..." {
		t.Fatalf("truncate runes = %q", got)
	}
}

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Catalog", statusOK, "", false)
	if plain != "  Catalog:         [OK]" {
		t.Fatalf("plain = %q", plain)
	}
	colored := renderStatusLine("Catalog", statusError, "probe failed", true)
	if colored == plain {
		t.Fatal("colored output should differ")
	}
	requireContains(t, colored, "[ERROR] probe failed")
	requireContains(t, colored, ansiRed)
}
