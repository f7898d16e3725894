// Wsdial — interactive WebSocket client.
//
// It connects to a ws:// or wss:// URL via internal/wsclient, prints
// whatever text arrives, and sends whatever the user types, exercising
// the full TCP/TLS/WS transport stack end to end.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/fenwick-labs/rtcsig/internal/util"
	"github.com/fenwick-labs/rtcsig/internal/wsclient"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	urlFlag := flag.String("url", "", "ws:// or wss:// URL to connect to")
	insecureFlag := flag.Bool("insecure", false, "skip TLS certificate verification")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("wsdial — v%s", version))
	pterm.Println()

	wsURL := *urlFlag
	if wsURL == "" {
		wsURL = askURL()
	}

	run(ctx, wsURL, *insecureFlag)
}

// askURL prompts the user for a URL until one with a ws/wss scheme is
// entered.
func askURL() string {
	for {
		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText("ws:// or wss:// URL").
			Show()

		raw = strings.TrimSpace(raw)
		if strings.HasPrefix(raw, "ws://") || strings.HasPrefix(raw, "wss://") {
			pterm.Println()
			return raw
		}

		util.LogWarning("URL must start with ws:// or wss://")
		pterm.Println()
	}
}

func run(ctx context.Context, wsURL string, insecure bool) {
	util.StartStatsReporter(ctx)

	ws := wsclient.New(wsclient.Config{InsecureSkipVerify: insecure})

	opened := make(chan struct{}, 1)
	ws.OnOpen(func() {
		util.LogInfo("connection open")
		opened <- struct{}{}
	})
	ws.OnError(func(reason string) {
		util.LogError("transport error: %s", reason)
	})
	ws.OnClosed(func() {
		util.LogWarning("connection closed")
	})
	ws.OnMessage(func(int) {
		for {
			m, ok := ws.Receive()
			if !ok {
				return
			}
			if m.IsText() {
				pterm.Println(fmt.Sprintf("< %s", m.Text()))
			} else {
				pterm.Println(fmt.Sprintf("< [%d binary bytes]", m.Size()))
			}
		}
	})

	if err := ws.Open(wsURL); err != nil {
		util.LogError("failed to open %s: %v", wsURL, err)
		os.Exit(1)
	}

	select {
	case <-opened:
	case <-time.After(5 * time.Second):
		util.LogError("timed out waiting for connection to open")
		os.Exit(1)
	case <-ctx.Done():
		return
	}

	go func() {
		<-ctx.Done()
		ws.Close()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	pterm.Println("type a line to send, or \"quit\" to exit")
	for ws.IsOpen() && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" {
			break
		}
		if line == "" {
			continue
		}
		if err := ws.SendText(line); err != nil {
			util.LogError("send failed: %v", err)
		}
	}

	ws.Close()
	util.LogInfo("done")
}
