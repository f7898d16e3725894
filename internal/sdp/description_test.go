package sdp

import (
	"strconv"
	"strings"
	"testing"
)

func TestParseDataOnlyOffer(t *testing.T) {
	raw := "v=0\r\no=- 42 0 IN IP4 0.0.0.0\r\ns=-\r\nt=0 0\r\n" +
		"m=application 9 UDP/DTLS/SCTP webrtc-datachannel\r\n" +
		"a=mid:data\r\na=sctp-port:5000\r\n"

	d := New(raw, "offer")

	if d.Type() != TypeOffer {
		t.Fatalf("Type() = %v, want TypeOffer", d.Type())
	}
	if d.Role() != RoleActPass {
		t.Fatalf("Role() = %v, want RoleActPass", d.Role())
	}
	if d.DataMid() != "data" {
		t.Fatalf("DataMid() = %q, want %q", d.DataMid(), "data")
	}
	port, ok := d.SctpPort()
	if !ok || port != 5000 {
		t.Fatalf("SctpPort() = (%d, %v), want (5000, true)", port, ok)
	}
	if d.HasMedia() {
		t.Fatalf("HasMedia() = true, want false")
	}
}

func TestParseAnswerDemotesRole(t *testing.T) {
	raw := "v=0\r\no=- 42 0 IN IP4 0.0.0.0\r\ns=-\r\nt=0 0\r\n" +
		"m=application 9 UDP/DTLS/SCTP webrtc-datachannel\r\n" +
		"a=mid:data\r\na=sctp-port:5000\r\n"

	d := New(raw, "answer")
	if d.Role() != RolePassive {
		t.Fatalf("Role() = %v, want RolePassive", d.Role())
	}
}

func TestParseFingerprint(t *testing.T) {
	raw := "v=0\r\no=- 1 0 IN IP4 0.0.0.0\r\ns=-\r\nt=0 0\r\n" +
		"a=fingerprint:sha-256 ab:cd:ef\r\n"

	d := New(raw, "offer")
	fp, ok := d.Fingerprint()
	if !ok || fp != "AB:CD:EF" {
		t.Fatalf("Fingerprint() = (%q, %v), want (%q, true)", fp, ok, "AB:CD:EF")
	}
}

func TestParseUnknownFingerprintTypeIgnored(t *testing.T) {
	raw := "v=0\r\no=- 1 0 IN IP4 0.0.0.0\r\ns=-\r\nt=0 0\r\n" +
		"a=fingerprint:sha-1 ab:cd:ef\r\n"

	d := New(raw, "offer")
	if _, ok := d.Fingerprint(); ok {
		t.Fatalf("Fingerprint() present for unrecognized hash type")
	}
}

func buildTwoMediaOffer() *Description {
	raw := "v=0\r\no=- 1 0 IN IP4 0.0.0.0\r\ns=-\r\nt=0 0\r\n" +
		"m=audio 9 UDP/TLS/RTP/SAVPF 111\r\n" +
		"a=mid:0\r\n" +
		"a=sendrecv\r\n" +
		"m=video 9 UDP/TLS/RTP/SAVPF 96\r\n" +
		"a=mid:1\r\n" +
		"a=sendrecv\r\n" +
		"m=application 9 UDP/DTLS/SCTP webrtc-datachannel\r\n" +
		"a=mid:data\r\n"
	return New(raw, "offer")
}

func TestBundleAndLSOrdering(t *testing.T) {
	d := buildTwoMediaOffer()

	sdp := d.GenerateSDP("\n")
	lines := strings.Split(sdp, "\n")

	var bundle, ls string
	for _, l := range lines {
		if strings.HasPrefix(l, "a=group:BUNDLE") {
			bundle = l
		}
		if strings.HasPrefix(l, "a=group:LS") {
			ls = l
		}
	}

	if bundle != "a=group:BUNDLE 0 1 data" {
		t.Fatalf("BUNDLE line = %q, want %q", bundle, "a=group:BUNDLE 0 1 data")
	}
	if ls != "a=group:LS 0 1" {
		t.Fatalf("LS line = %q, want %q", ls, "a=group:LS 0 1")
	}

	var dataPort, bundleOnlyCount int
	for _, l := range lines {
		if strings.HasPrefix(l, "m=application") {
			fields := strings.Fields(l)
			if len(fields) < 2 {
				t.Fatalf("malformed data m-line %q", l)
			}
			port, err := strconv.Atoi(fields[1])
			if err != nil {
				t.Fatalf("could not parse data m-line %q: %v", l, err)
			}
			dataPort = port
		}
		if l == "a=bundle-only" {
			bundleOnlyCount++
		}
	}
	if dataPort != 0 {
		t.Fatalf("data m-line port = %d, want 0 (other media present)", dataPort)
	}
	if bundleOnlyCount != 3 {
		t.Fatalf("bundle-only count = %d, want 3 (audio, video, data)", bundleOnlyCount)
	}
}

func TestRoundTrip(t *testing.T) {
	original := buildTwoMediaOffer()
	original.SetIceUfrag("abcd")
	original.SetIcePwd("secretpwd0123456789")
	original.SetFingerprint("ab:cd:ef")
	original.AddCandidate(NewCandidate("candidate:1 1 UDP 2130706431 10.0.0.1 54400 typ host", original.DataMid()))
	original.EndCandidates()

	regenerated := New(original.GenerateSDP("\r\n"), "offer")

	if regenerated.DataMid() != original.DataMid() {
		t.Fatalf("DataMid mismatch: got %q want %q", regenerated.DataMid(), original.DataMid())
	}
	if regenerated.IceUfrag() != original.IceUfrag() {
		t.Fatalf("IceUfrag mismatch")
	}
	if regenerated.IcePwd() != original.IcePwd() {
		t.Fatalf("IcePwd mismatch")
	}
	ofp, _ := original.Fingerprint()
	rfp, ok := regenerated.Fingerprint()
	if !ok || rfp != ofp {
		t.Fatalf("Fingerprint mismatch: got %q want %q", rfp, ofp)
	}
	if regenerated.Ended() != original.Ended() {
		t.Fatalf("Ended mismatch")
	}
	if len(regenerated.Candidates()) != len(original.Candidates()) {
		t.Fatalf("candidate count mismatch: got %d want %d",
			len(regenerated.Candidates()), len(original.Candidates()))
	}
	for i, c := range original.Candidates() {
		if regenerated.Candidates()[i].String() != c.String() {
			t.Fatalf("candidate %d mismatch: got %q want %q", i, regenerated.Candidates()[i].String(), c.String())
		}
	}

	for i := 0; i < original.MediaCount(); i++ {
		om, _ := original.MediaAt(i)
		rm, ok := regenerated.MediaAt(i)
		if !ok {
			t.Fatalf("media %d missing after round trip", i)
		}
		if rm.Mid != om.Mid {
			t.Fatalf("media %d mid mismatch: got %q want %q", i, rm.Mid, om.Mid)
		}
	}
}

func TestExtractCandidatesClearsEnded(t *testing.T) {
	d := New("v=0\r\n", "offer")
	d.AddCandidate(NewCandidate("candidate:1 1 UDP 1 10.0.0.1 1 typ host", "data"))
	d.EndCandidates()

	extracted := d.ExtractCandidates()

	if len(extracted) != 1 {
		t.Fatalf("extracted %d candidates, want 1", len(extracted))
	}
	if len(d.Candidates()) != 0 {
		t.Fatalf("candidates not cleared after extract")
	}
	if d.Ended() {
		t.Fatalf("ended not cleared after extract")
	}
}

func TestHintTypeIdempotent(t *testing.T) {
	d := New("v=0\r\n", "offer")
	d.HintType(TypeAnswer)
	if d.Type() != TypeOffer {
		t.Fatalf("second HintType changed type: got %v, want TypeOffer", d.Type())
	}
}

func TestEmptyMidMediaDiscarded(t *testing.T) {
	raw := "v=0\r\no=- 1 0 IN IP4 0.0.0.0\r\ns=-\r\nt=0 0\r\n" +
		"m=audio 9 UDP/TLS/RTP/SAVPF 111 ICE/SDP\r\n" +
		"a=sendrecv\r\n" +
		"m=video 9 UDP/TLS/RTP/SAVPF 96\r\n" +
		"a=mid:1\r\n"

	d := New(raw, "offer")
	if d.HasMedia() != true {
		t.Fatalf("expected the video media to survive")
	}
	if _, ok := d.MediaAt(1); ok {
		t.Fatalf("discarded media must not shift mline indices of later ones")
	}
	if m, ok := d.MediaAt(0); !ok || m.Mid != "1" {
		t.Fatalf("video media should occupy index 0, got %+v ok=%v", m, ok)
	}
}

func TestGenerateDataSDPOnly(t *testing.T) {
	d := New("v=0\r\n", "offer")
	d.SetSctpPort(5000)
	out := d.GenerateDataSDP("\n")
	if !strings.Contains(out, "m=application 9 UDP/DTLS/SCTP webrtc-datachannel") {
		t.Fatalf("missing data m-line: %q", out)
	}
	if !strings.Contains(out, "a=sctp-port:5000") {
		t.Fatalf("missing sctp-port: %q", out)
	}
	if strings.Contains(out, "a=group:BUNDLE") {
		t.Fatalf("data-only SDP must not contain a BUNDLE group: %q", out)
	}
}
