package main

import (
	"strings"
	"testing"
)

func TestCatalogTableRightAlignsNamedColumns(t *testing.T) {
	tbl := newCatalogTable([]string{"NAME", "COUNT"}, 1)
	tbl.addRow("alpha", "1")
	out := tbl.render()

	if !strings.Contains(out, "NAME") || !strings.Contains(out, "COUNT") {
		t.Fatalf("headers missing:\n%s", out)
	}
	if !strings.Contains(out, "│ alpha │     1 │") {
		t.Fatalf("count column not right aligned:\n%s", out)
	}
}

func TestCatalogTablePadsShortRows(t *testing.T) {
	tbl := newCatalogTable([]string{"NAME", "COUNT"}, 1)
	tbl.addRow("beta")
	out := tbl.render()

	if !strings.Contains(out, "beta") {
		t.Fatalf("row missing:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "beta") && strings.Count(line, "│") != 3 {
			t.Fatalf("short row not padded to all columns: %q", line)
		}
	}
}
