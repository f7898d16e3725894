// Sdpgen builds a sample session description, prints the SDP it
// generates, then re-parses that text and prints the fields that
// survived the round trip — a quick sanity check when working on
// internal/sdp.
package main

import (
	"flag"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/fenwick-labs/rtcsig/internal/sdp"
	"github.com/fenwick-labs/rtcsig/internal/util"
)

var version = "dev"

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("sdpgen — v%s", version))
	pterm.Println()

	offer := sdp.NewWithRole("", sdp.TypeOffer, sdp.RoleActPass)
	offer.SetIceUfrag("abc123")
	offer.SetIcePwd("s3cr3t-pwd-0123456789abcdef")
	offer.SetFingerprint("de:ad:be:ef:00:11:22:33:44:55:66:77:88:99:aa:bb:cc:dd:ee:ff:00:11:22:33:44:55:66:77:88:99:aa")
	offer.SetSctpPort(5000)
	offer.SetMaxMessageSize(262144)

	text := offer.String()
	fmt.Print(text)
	pterm.Println()

	roundTripped := sdp.New(text, "offer")
	util.LogInfo("round-trip: type=%s role=%s dataMid=%s iceUfrag=%s",
		roundTripped.TypeString(), roundTripped.RoleString(), roundTripped.DataMid(), roundTripped.IceUfrag())

	if fp, ok := roundTripped.Fingerprint(); ok {
		util.LogInfo("fingerprint round-tripped: %s", fp)
	}

	answer := sdp.NewOfType("", sdp.TypeAnswer)
	util.LogInfo("fresh answer role after hintType(Answer): %s", answer.RoleString())
}
