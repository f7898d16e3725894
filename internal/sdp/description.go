package sdp

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/fenwick-labs/rtcsig/internal/util"
)

// Description is an immutable-after-construction session description:
// it is built once from an SDP text blob (or from scratch for a fresh
// local offer) and thereafter mutated only through the small set of
// setters below (hintType, fingerprint/ICE setters, candidate
// bookkeeping). Everything else is read through accessors.
type Description struct {
	typ    Type
	role   Role
	sessID string

	iceUfrag string
	icePwd   string

	fingerprint string
	hasFP       bool

	data dataMedia

	media map[int]Media

	candidates []Candidate
	ended      bool
}

// New parses sdp and classifies it as the given type (a string such as
// "offer" or "answer"; anything else is treated as TypeUnspec, per the
// original stringToType). Role starts at RoleActPass and is demoted per
// the Answer invariant inside hintType.
func New(sdpText, typeString string) *Description {
	return NewWithRole(sdpText, stringToType(typeString), RoleActPass)
}

// NewOfType is like New but takes an already-resolved Type.
func NewOfType(sdpText string, typ Type) *Description {
	return NewWithRole(sdpText, typ, RoleActPass)
}

// NewWithRole is the full constructor: sdp text, resolved type, and the
// role to start from before any "a=setup" line or the Answer-demotion
// invariant overrides it.
func NewWithRole(sdpText string, typ Type, role Role) *Description {
	d := &Description{
		typ:    TypeUnspec,
		role:   role,
		sessID: newSessionID(),
		data:   dataMedia{mid: "data"},
		media:  make(map[int]Media),
	}
	d.HintType(typ)
	d.parse(sdpText)
	return d
}

// newSessionID returns a fresh 32-bit unsigned decimal string. Quality
// need not be cryptographic; crypto/rand is used simply because it is
// already imported by this module's pion/webrtc dependency chain and
// avoids seeding a math/rand source per Description.
func newSessionID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(math.MaxUint32)+1))
	if err != nil {
		return "0"
	}
	return n.String()
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

func (d *Description) parse(sdpText string) {
	scanner := bufio.NewScanner(strings.NewReader(sdpText))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *Media
	mlineIndex := 0

	flushMedia := func(triggeringLine string) {
		if current == nil {
			return
		}
		if current.Mid != "" {
			if current.Type == "application" {
				d.data.mid = current.Mid
			} else {
				d.media[mlineIndex] = *current
				mlineIndex++
			}
		} else if looksLikeTransportLine(triggeringLine) {
			util.LogWarning("SDP \"m=\" line has no corresponding mid, ignoring")
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r\n")

		switch {
		case strings.HasPrefix(line, "m="):
			flushMedia(line)
			m := newMediaFromMLine(line[2:])
			current = &m

		case strings.HasPrefix(line, "a="):
			d.parseAttribute(line[2:], current)

		default:
			// v=, o=, s=, t=, c=, and anything else is ignored on parse.
		}
	}

	flushMedia("")
}

func (d *Description) parseAttribute(attr string, current *Media) {
	key, value := attr, ""
	if i := strings.IndexByte(attr, ':'); i >= 0 {
		key, value = attr[:i], attr[i+1:]
	}

	switch key {
	case "mid":
		if current != nil {
			current.Mid = value
		}

	case "setup":
		d.role = stringToRole(value)

	case "fingerprint":
		const prefix = "sha-256 "
		if strings.HasPrefix(value, prefix) {
			d.fingerprint = strings.ToUpper(value[len(prefix):])
			d.hasFP = true
		} else {
			util.LogWarning("unknown SDP fingerprint type: %s", value)
		}

	case "ice-ufrag":
		d.iceUfrag = value

	case "ice-pwd":
		d.icePwd = value

	case "sctp-port":
		if port, err := strconv.ParseUint(value, 10, 16); err == nil {
			p := uint16(port)
			d.data.sctpPort = &p
		} else {
			util.LogWarning("malformed sctp-port attribute: %s", value)
		}

	case "max-message-size":
		if size, err := strconv.ParseUint(value, 10, 64); err == nil {
			d.data.maxMessageSize = &size
		} else {
			util.LogWarning("malformed max-message-size attribute: %s", value)
		}

	case "candidate":
		mid := d.data.mid
		if current != nil {
			mid = current.Mid
		}
		d.candidates = append(d.candidates, NewCandidate(attr, mid))

	case "end-of-candidates":
		d.ended = true

	default:
		if current != nil {
			current.Attributes = append(current.Attributes, attr)
		}
	}
}

// newMediaFromMLine splits the portion of an "m=" line after "m=" into
// its type (the token before the first space) and description
// (everything after the second space — the port itself is discarded
// and regenerated on output).
func newMediaFromMLine(mline string) Media {
	var m Media
	p := strings.IndexByte(mline, ' ')
	if p < 0 {
		m.Type = mline
		return m
	}
	m.Type = mline[:p]
	if q := strings.IndexByte(mline[p+1:], ' '); q >= 0 {
		m.Description = mline[p+1+q+1:]
	}
	return m
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (d *Description) Type() Type         { return d.typ }
func (d *Description) TypeString() string { return d.typ.String() }
func (d *Description) Role() Role         { return d.role }
func (d *Description) RoleString() string { return d.role.String() }
func (d *Description) SessionID() string  { return d.sessID }
func (d *Description) IceUfrag() string   { return d.iceUfrag }
func (d *Description) IcePwd() string     { return d.icePwd }
func (d *Description) DataMid() string    { return d.data.mid }
func (d *Description) Ended() bool        { return d.ended }
func (d *Description) HasMedia() bool     { return len(d.media) > 0 }
func (d *Description) MediaCount() int    { return len(d.media) }

// BundleMid returns the mid of the media at m-line index 0 if present,
// else the data m-line's mid.
func (d *Description) BundleMid() string {
	if m, ok := d.media[0]; ok {
		return m.Mid
	}
	return d.data.mid
}

// Fingerprint returns the uppercase hex SHA-256 DTLS fingerprint and
// whether one was ever set.
func (d *Description) Fingerprint() (string, bool) { return d.fingerprint, d.hasFP }

// SctpPort returns the data channel's negotiated SCTP port, if any.
func (d *Description) SctpPort() (uint16, bool) {
	if d.data.sctpPort == nil {
		return 0, false
	}
	return *d.data.sctpPort, true
}

// MaxMessageSize returns the remote max message size advertised for
// the data channel, if any.
func (d *Description) MaxMessageSize() (uint64, bool) {
	if d.data.maxMessageSize == nil {
		return 0, false
	}
	return *d.data.maxMessageSize, true
}

// MediaAt returns the media stored at m-line index i, if any.
func (d *Description) MediaAt(i int) (Media, bool) {
	m, ok := d.media[i]
	return m, ok
}

// Candidates returns the candidates collected so far, in the order
// they were added.
func (d *Description) Candidates() []Candidate {
	out := make([]Candidate, len(d.candidates))
	copy(out, d.candidates)
	return out
}

// ---------------------------------------------------------------------------
// Mutators
// ---------------------------------------------------------------------------

// HintType sets the type only if it is currently TypeUnspec. If the
// resulting type is TypeAnswer and the role is still RoleActPass, the
// role is demoted to RolePassive, since ActPass is illegal for an
// answer. Calling HintType again after the type is resolved is a
// no-op (idempotent).
func (d *Description) HintType(t Type) {
	if d.typ != TypeUnspec {
		return
	}
	d.typ = t
	if d.typ == TypeAnswer && d.role == RoleActPass {
		d.role = RolePassive
	}
}

// SetDataMid overrides the data channel's mid.
func (d *Description) SetDataMid(mid string) { d.data.mid = mid }

// SetFingerprint sets the uppercase-normalized DTLS fingerprint.
func (d *Description) SetFingerprint(fp string) {
	d.fingerprint = strings.ToUpper(fp)
	d.hasFP = true
}

// SetSctpPort sets the data channel's SCTP port.
func (d *Description) SetSctpPort(port uint16) { d.data.sctpPort = &port }

// SetMaxMessageSize sets the locally-advertised max message size.
func (d *Description) SetMaxMessageSize(size uint64) { d.data.maxMessageSize = &size }

// SetIceUfrag sets the local ICE username fragment.
func (d *Description) SetIceUfrag(ufrag string) { d.iceUfrag = ufrag }

// SetIcePwd sets the local ICE password.
func (d *Description) SetIcePwd(pwd string) { d.icePwd = pwd }

// AddCandidate appends a trickled ICE candidate.
func (d *Description) AddCandidate(c Candidate) { d.candidates = append(d.candidates, c) }

// EndCandidates marks that no more candidates will be trickled.
func (d *Description) EndCandidates() { d.ended = true }

// ExtractCandidates empties the candidate list and resets ended back
// to false, returning what was collected. It is the only mutator that
// clears ended back to false.
func (d *Description) ExtractCandidates() []Candidate {
	result := d.candidates
	d.candidates = nil
	d.ended = false
	return result
}

// AddMedia copies every media entry from source into d, keyed by the
// same m-line index, overwriting any entry already stored there. The
// data m-line is not part of the media map and is not copied.
func (d *Description) AddMedia(source *Description) {
	for i, m := range source.media {
		d.media[i] = m
	}
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

// GenerateSDP renders the full session description, joining lines with
// eol (callers typically pass "\r\n" for wire transmission).
func (d *Description) GenerateSDP(eol string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "v=0%s", eol)
	fmt.Fprintf(&b, "o=- %s 0 IN IP4 127.0.0.1%s", d.sessID, eol)
	fmt.Fprintf(&b, "s=-%s", eol)
	fmt.Fprintf(&b, "t=0 0%s", eol)

	slots := len(d.media) + 1

	b.WriteString("a=group:BUNDLE")
	for i := 0; i < slots; i++ {
		if m, ok := d.media[i]; ok {
			b.WriteByte(' ')
			b.WriteString(m.Mid)
		} else {
			b.WriteByte(' ')
			b.WriteString(d.data.mid)
		}
	}
	b.WriteString(eol)

	if len(d.media) > 0 {
		b.WriteString("a=group:LS")
		for i := 0; i < len(d.media); i++ {
			b.WriteByte(' ')
			b.WriteString(d.media[i].Mid)
		}
		b.WriteString(eol)
	}

	fmt.Fprintf(&b, "a=msid-semantic:WMS *%s", eol)
	fmt.Fprintf(&b, "a=setup:%s%s", d.role, eol)
	fmt.Fprintf(&b, "a=ice-ufrag:%s%s", d.iceUfrag, eol)
	fmt.Fprintf(&b, "a=ice-pwd:%s%s", d.icePwd, eol)

	if !d.ended {
		fmt.Fprintf(&b, "a=ice-options:trickle%s", eol)
	}
	if d.hasFP {
		fmt.Fprintf(&b, "a=fingerprint:sha-256 %s%s", d.fingerprint, eol)
	}

	for i := 0; i < slots; i++ {
		if m, ok := d.media[i]; ok {
			fmt.Fprintf(&b, "m=%s 0 %s%s", m.Type, m.Description, eol)
			fmt.Fprintf(&b, "c=IN IP4 0.0.0.0%s", eol)
			fmt.Fprintf(&b, "a=bundle-only%s", eol)
			fmt.Fprintf(&b, "a=mid:%s%s", m.Mid, eol)
			for _, attr := range m.Attributes {
				fmt.Fprintf(&b, "a=%s%s", attr, eol)
			}
		} else {
			port := 9
			if len(d.media) > 0 {
				port = 0
			}
			fmt.Fprintf(&b, "m=application %d UDP/DTLS/SCTP webrtc-datachannel%s", port, eol)
			fmt.Fprintf(&b, "c=IN IP4 0.0.0.0%s", eol)
			if len(d.media) > 0 {
				fmt.Fprintf(&b, "a=bundle-only%s", eol)
			}
			fmt.Fprintf(&b, "a=mid:%s%s", d.data.mid, eol)
			fmt.Fprintf(&b, "a=sendrecv%s", eol)
			if d.data.sctpPort != nil {
				fmt.Fprintf(&b, "a=sctp-port:%d%s", *d.data.sctpPort, eol)
			}
			if d.data.maxMessageSize != nil {
				fmt.Fprintf(&b, "a=max-message-size:%d%s", *d.data.maxMessageSize, eol)
			}
		}
	}

	for _, c := range d.candidates {
		b.WriteString(c.String())
		b.WriteString(eol)
	}
	if d.ended {
		fmt.Fprintf(&b, "a=end-of-candidates%s", eol)
	}

	return b.String()
}

// GenerateDataSDP renders only the data-channel section, with the
// session-level setup/ICE/fingerprint attributes placed inside the
// data m-section. Used to advertise the data channel alone, without
// any other negotiated media.
func (d *Description) GenerateDataSDP(eol string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "v=0%s", eol)
	fmt.Fprintf(&b, "o=- %s 0 IN IP4 127.0.0.1%s", d.sessID, eol)
	fmt.Fprintf(&b, "s=-%s", eol)
	fmt.Fprintf(&b, "t=0 0%s", eol)

	fmt.Fprintf(&b, "m=application 9 UDP/DTLS/SCTP webrtc-datachannel%s", eol)
	fmt.Fprintf(&b, "c=IN IP4 0.0.0.0%s", eol)
	fmt.Fprintf(&b, "a=mid:%s%s", d.data.mid, eol)
	fmt.Fprintf(&b, "a=sendrecv%s", eol)
	if d.data.sctpPort != nil {
		fmt.Fprintf(&b, "a=sctp-port:%d%s", *d.data.sctpPort, eol)
	}
	if d.data.maxMessageSize != nil {
		fmt.Fprintf(&b, "a=max-message-size:%d%s", *d.data.maxMessageSize, eol)
	}

	fmt.Fprintf(&b, "a=setup:%s%s", d.role, eol)
	fmt.Fprintf(&b, "a=ice-ufrag:%s%s", d.iceUfrag, eol)
	fmt.Fprintf(&b, "a=ice-pwd:%s%s", d.icePwd, eol)

	if !d.ended {
		fmt.Fprintf(&b, "a=ice-options:trickle%s", eol)
	}
	if d.hasFP {
		fmt.Fprintf(&b, "a=fingerprint:sha-256 %s%s", d.fingerprint, eol)
	}

	for _, c := range d.candidates {
		b.WriteString(c.String())
		b.WriteString(eol)
	}
	if d.ended {
		fmt.Fprintf(&b, "a=end-of-candidates%s", eol)
	}

	return b.String()
}

// String renders the description as CRLF-terminated SDP text, mirroring
// the original library's operator string().
func (d *Description) String() string { return d.GenerateSDP("\r\n") }
