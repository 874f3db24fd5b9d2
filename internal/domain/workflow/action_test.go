package workflow

import "testing"

func TestActionForLabelMapsKnownLabels(t *testing.T) {
	cases := []struct {
		label string
		want  Action
	}{
		{"stone-process", ActionProcess},
		{"stone-pm", ActionPM},
		{"stone-qa", ActionQA},
		{"stone-feature", ActionFeature},
		{"stone-audit", ActionAudit},
		{"stone-ready-for-tests", ActionTest},
		{" stone-qa ", ActionQA},
	}

	for _, tc := range cases {
		action, ok := ActionForLabel(tc.label)
		if !ok {
			t.Fatalf("ActionForLabel(%q) ok = false", tc.label)
		}
		if action != tc.want {
			t.Fatalf("ActionForLabel(%q) = %q, want %q", tc.label, action, tc.want)
		}
	}
}

func TestActionForLabelRejectsForeignLabels(t *testing.T) {
	for _, label := range []string{"bug", "enhancement", "", "ready-for-tests", "STONE-qa"} {
		if _, ok := ActionForLabel(label); ok {
			t.Fatalf("ActionForLabel(%q) ok = true", label)
		}
	}
}

func TestActionForLabelRejectsUnmappedStoneLabel(t *testing.T) {
	if _, ok := ActionForLabel("stone-docs"); ok {
		t.Fatalf("ActionForLabel(stone-docs) ok = true")
	}
	if !IsStoneLabel("stone-docs") {
		t.Fatalf("IsStoneLabel(stone-docs) = false")
	}
}

func TestIsStoneLabel(t *testing.T) {
	if !IsStoneLabel("stone-qa") {
		t.Fatalf("IsStoneLabel(stone-qa) = false")
	}
	if IsStoneLabel("bug") {
		t.Fatalf("IsStoneLabel(bug) = true")
	}
	if IsStoneLabel("") {
		t.Fatalf("IsStoneLabel(empty) = true")
	}
}
