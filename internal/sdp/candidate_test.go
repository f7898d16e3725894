package sdp

import "testing"

func TestCandidateStringRoundTrip(t *testing.T) {
	attr := "candidate:1 1 UDP 2130706431 10.0.0.1 54400 typ host"
	c := NewCandidate(attr, "0")

	if got := c.String(); got != "a="+attr {
		t.Fatalf("String() = %q, want %q", got, "a="+attr)
	}
	if c.Mid() != "0" {
		t.Fatalf("Mid() = %q, want %q", c.Mid(), "0")
	}
	if c.Value() != attr {
		t.Fatalf("Value() = %q, want %q", c.Value(), attr)
	}
}

func TestCandidateICECandidateInitBridge(t *testing.T) {
	attr := "candidate:1 1 UDP 2130706431 10.0.0.1 54400 typ host"
	c := NewCandidate(attr, "0")

	init := c.ToICECandidateInit()
	if init.Candidate != attr {
		t.Fatalf("ToICECandidateInit().Candidate = %q, want %q", init.Candidate, attr)
	}
	if init.SDPMid == nil || *init.SDPMid != "0" {
		t.Fatalf("ToICECandidateInit().SDPMid = %v, want %q", init.SDPMid, "0")
	}

	back := CandidateFromICECandidateInit(init)
	if back.String() != c.String() {
		t.Fatalf("round trip through ICECandidateInit changed value: got %q want %q", back.String(), c.String())
	}
}
