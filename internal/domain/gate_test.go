package domain

import "testing"

func TestRequiresConfirmationPolicyTable(t *testing.T) {
	cases := []struct {
		mode    SafetyMode
		verdict Verdict
		want    bool
	}{
		{SafetyAlwaysAsk, VerdictSafe, true},
		{SafetyAlwaysAsk, VerdictDangerous, true},
		{SafetyAlwaysAsk, VerdictUnclassified, true},
		{SafetyAutoRunSafe, VerdictSafe, false},
		{SafetyAutoRunSafe, VerdictDangerous, true},
		{SafetyAutoRunSafe, VerdictUnclassified, true},
	}
	for _, tc := range cases {
		if got := RequiresConfirmation(tc.verdict, tc.mode); got != tc.want {
			t.Errorf("RequiresConfirmation(%s, mode %d) = %v, want %v", tc.verdict, tc.mode, got, tc.want)
		}
	}
}

func TestUnclassifiedAlwaysConfirmsForAnyMode(t *testing.T) {
	// Absence of a safe match is never grounds for auto-execution, even for
	// out-of-range mode values.
	for _, mode := range []SafetyMode{0, 1, 2, -1} {
		if !RequiresConfirmation(VerdictUnclassified, mode) {
			t.Fatalf("unclassified must confirm under mode %d", mode)
		}
	}
}
