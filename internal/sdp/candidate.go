package sdp

import (
	"strings"

	"github.com/pion/webrtc/v4"
)

// Candidate is an opaque, attribute-carrying ICE candidate value. It is
// constructed from the raw "a=" attribute text (without the "a="
// prefix) plus the mid of the media section it belongs to, and can be
// turned back into a wire-ready attribute line with String.
//
// Candidate deliberately does not parse the candidate's internal
// fields (foundation, priority, transport address, ...); ICE gathering
// and candidate semantics are out of scope here, and a real
// PeerConnection is expected to interpret them via ToICECandidateInit.
type Candidate struct {
	mid   string
	value string // raw attribute text, e.g. "candidate:1 1 UDP 2130706431 ..."
}

// NewCandidate builds a Candidate from a raw "a="-attribute line
// (without the "a=" prefix) and the mid of the owning media section.
func NewCandidate(attribute, mid string) Candidate {
	return Candidate{mid: mid, value: attribute}
}

// Mid returns the mid of the media section this candidate belongs to.
func (c Candidate) Mid() string { return c.mid }

// Value returns the raw attribute text, without the "a=" prefix.
func (c Candidate) Value() string { return c.value }

// String renders the candidate back to a full SDP attribute line.
func (c Candidate) String() string { return "a=" + c.value }

// ToICECandidateInit bridges this Candidate to the type a
// github.com/pion/webrtc/v4.PeerConnection expects from
// AddICECandidate, so a real ICE stack can consume candidates that
// arrived over signaling.
func (c Candidate) ToICECandidateInit() webrtc.ICECandidateInit {
	mid := c.mid
	return webrtc.ICECandidateInit{
		Candidate: c.value,
		SDPMid:    &mid,
	}
}

// CandidateFromICECandidateInit builds a Candidate from the
// pion/webrtc representation of a locally gathered or remotely
// received ICE candidate. A leading "a=" is removed if present; the
// rest (starting with "candidate:") is stored as the raw attribute text.
func CandidateFromICECandidateInit(init webrtc.ICECandidateInit) Candidate {
	mid := ""
	if init.SDPMid != nil {
		mid = *init.SDPMid
	}
	attr := strings.TrimPrefix(init.Candidate, "a=")
	return NewCandidate(attr, mid)
}

// looksLikeTransportLine reports whether an SDP line looks like it was
// describing an ICE/SDP transport, which is the only case the original
// implementation warns about when a media block has no mid.
func looksLikeTransportLine(line string) bool {
	return strings.Contains(line, " ICE/SDP")
}
