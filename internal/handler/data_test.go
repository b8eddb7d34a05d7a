package handler

import (
	"strings"
	"testing"
)

func TestParseTaxonomyCSV(t *testing.T) {
	in := `C1,C2,C3,C4,Terms
WORDS EXPRESSING ABSTRACT RELATIONS,EXISTENCE,BEING IN THE ABSTRACT,,"existence, being, entity"
WORDS EXPRESSING ABSTRACT RELATIONS,EXISTENCE,BEING IN THE ABSTRACT,Nonexistence,"inexistence, nonentity"
`
	entries, err := parseTaxonomyCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	first := entries[0]
	if first.Level1 != "WORDS EXPRESSING ABSTRACT RELATIONS" || first.Level2 != "EXISTENCE" {
		t.Errorf("unexpected levels: %+v", first)
	}
	if first.Level4 != "" {
		t.Errorf("Level4 = %q, want empty", first.Level4)
	}
	if len(first.Terms) != 3 || first.Terms[0] != "existence" || first.Terms[2] != "entity" {
		t.Errorf("Terms = %v, want trimmed three", first.Terms)
	}
	if entries[1].Level4 != "Nonexistence" {
		t.Errorf("Level4 = %q, want Nonexistence", entries[1].Level4)
	}
}

func TestParseTaxonomyCSVHeaderOrder(t *testing.T) {
	in := `Terms,C4,C3,C2,C1
"alpha , beta",d,c,b,a
`
	entries, err := parseTaxonomyCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Level1 != "a" || e.Level2 != "b" || e.Level3 != "c" || e.Level4 != "d" {
		t.Errorf("levels = %q %q %q %q, want a b c d", e.Level1, e.Level2, e.Level3, e.Level4)
	}
	if len(e.Terms) != 2 || e.Terms[0] != "alpha" || e.Terms[1] != "beta" {
		t.Errorf("Terms = %v, want [alpha beta]", e.Terms)
	}
}

func TestParseTaxonomyCSVSkipsRowsWithoutTopLevel(t *testing.T) {
	in := `C1,C2,C3,C4,Terms
,orphan,,,"lost"
kept,,,,"one"
`
	entries, err := parseTaxonomyCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Level1 != "kept" {
		t.Fatalf("entries = %+v, want only the kept row", entries)
	}
}

func TestParseTaxonomyCSVEmptyTerms(t *testing.T) {
	in := `C1,Terms
solo,
`
	entries, err := parseTaxonomyCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if len(entries[0].Terms) != 0 {
		t.Errorf("Terms = %v, want none", entries[0].Terms)
	}
}
