package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// Stats is the process-wide counter for WebSocket connection and
// traffic activity. wsclient.WebSocket reports into it as connections
// open/close and as messages are sent/received, so a host application
// can get a live traffic summary without instrumenting every
// connection itself.
var Stats = &stats{}

type stats struct {
	Opened    atomic.Int64 // cumulative count of connections that reached Open
	Closed    atomic.Int64 // cumulative count of connections that reached Closed
	BytesSent atomic.Int64 // cumulative bytes handed to the WS transport
	BytesRecv atomic.Int64 // cumulative bytes delivered to the receive queue
}

func (s *stats) AddOpened()    { s.Opened.Add(1) }
func (s *stats) AddClosed()    { s.Closed.Add(1) }
func (s *stats) AddSent(n int) { s.BytesSent.Add(int64(n)) }
func (s *stats) AddRecv(n int) { s.BytesRecv.Add(int64(n)) }

// StartStatsReporter launches a goroutine that logs traffic statistics
// every 10 seconds, for as long as ctx is live. It only logs when a
// connection opened or closed since the last tick, or when the sent or
// received rate over that tick exceeded 10 bytes per second.
func StartStatsReporter(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		var prevSent, prevRecv, prevOpened, prevClosed int64
		for {
			select {
			case <-ticker.C:
				opened := Stats.Opened.Load()
				closed := Stats.Closed.Load()
				sent := Stats.BytesSent.Load()
				recv := Stats.BytesRecv.Load()

				inS := float64(sent-prevSent) / 10.0
				outS := float64(recv-prevRecv) / 10.0
				openedN := opened - prevOpened
				closedN := closed - prevClosed

				if openedN > 0 || closedN > 0 || inS > 10 || outS > 10 {
					pterm.DefaultLogger.Info(formatStats(inS, outS, openedN, closedN))
				}

				prevSent, prevRecv, prevOpened, prevClosed = sent, recv, opened, closed

			case <-ctx.Done():
				return
			}
		}
	}()
}

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// formatBytes formats a byte count into a fixed-width (8 char) string,
// e.g. "99.0   B", " 1.5 KiB", "98.9 GiB".
func formatBytes(b float64) string {
	unitIdx := 0
	for b > 99 && unitIdx < 5 {
		b /= 1024
		unitIdx++
	}
	return fmt.Sprintf("%4.1f %3s", b, byteUnits[unitIdx])
}

func formatStats(inS, outS float64, openedN, closedN int64) string {
	return fmt.Sprintf("Sent: %s/s | Recv: %s/s | Conn: %2d↑ %2d↓",
		formatBytes(inS), formatBytes(outS), openedN, closedN)
}
