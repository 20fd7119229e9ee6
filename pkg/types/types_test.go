package types

import "testing"

func TestSourceTypeValid(t *testing.T) {
	for _, s := range []SourceType{SourceText, SourceFile, SourceURL} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []SourceType{"", "carrier-pigeon", "TEXT"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestSearchModePaths(t *testing.T) {
	cases := []struct {
		mode     SearchMode
		semantic bool
		keyword  bool
	}{
		{SearchHybrid, true, true},
		{SearchSemantic, true, false},
		{SearchKeyword, false, true},
	}
	for _, tc := range cases {
		if !tc.mode.Valid() {
			t.Errorf("%s should be valid", tc.mode)
		}
		if tc.mode.UsesSemantic() != tc.semantic {
			t.Errorf("%s UsesSemantic = %v", tc.mode, tc.mode.UsesSemantic())
		}
		if tc.mode.UsesKeyword() != tc.keyword {
			t.Errorf("%s UsesKeyword = %v", tc.mode, tc.mode.UsesKeyword())
		}
	}
	if SearchMode("fuzzy").Valid() {
		t.Error("unknown mode should be invalid")
	}
}
