package ir

import "testing"

func TestPrintActionCall(t *testing.T) {
	tr := buildLowered(t, "(tree T (.Attack))")
	got := Print(tr)
	want := `(ir-action "Agent" "Attack" () :type "Status")`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestPrintGuardWithComparisonCondition(t *testing.T) {
	tr := buildLowered(t, "(tree T (guard (> .Health 0) (.Attack)))")
	got := Print(tr)
	want := `(ir-guard (ir-binary-op :gt (ir-member-load ("Health") :type "Integer") (ir-literal 0 :int)) (ir-action "Agent" "Attack" () :type "Status"))`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestPrintSubtreeActionSequence(t *testing.T) {
	tr := buildLowered(t, "(tree T (seq (.Attack) (.Attack)))")
	got := Print(tr)
	want := `(ir-sequence (ir-action "Agent" "Attack" () :type "Status") (ir-action "Agent" "Attack" () :type "Status"))`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestPrintFloatLiteralKeepsDecimalPoint(t *testing.T) {
	if got := formatFloat(3); got != "3.0" {
		t.Fatalf("expected whole float to keep a decimal point, got %s", got)
	}
	if got := formatFloat(1.5); got != "1.5" {
		t.Fatalf("got %s", got)
	}
}

func TestPrintConvertOnPromotedComparison(t *testing.T) {
	tr := buildLowered(t, "(tree T (check (> .Health 1.5)))")
	got := Print(tr)
	want := `(ir-condition (ir-binary-op :gt (ir-convert (ir-member-load ("Health") :type "Integer") :to "Float") (ir-literal 1.5 :float)))`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}
