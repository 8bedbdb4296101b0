// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relayclient

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/bureau-foundation/poserelay/lib/clock"
	"github.com/bureau-foundation/poserelay/lib/netutil"
	"github.com/bureau-foundation/poserelay/lib/pose"
)

// Kind classifies a message from the relay.
type Kind int

const (
	// KindTelemetry is a "P ..." pose line.
	KindTelemetry Kind = iota
	// KindPing is the relay's "p" reply to a ping.
	KindPing
	// KindAck is the relay's "T" reply to a clock-sync request.
	KindAck
)

func (k Kind) String() string {
	switch k {
	case KindTelemetry:
		return "telemetry"
	case KindPing:
		return "ping"
	case KindAck:
		return "ack"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Message is one line received from the relay.
type Message struct {
	Kind Kind
	// Telemetry is set when Kind is KindTelemetry.
	Telemetry pose.Telemetry
	// Line is the message as received, without its newline.
	Line string
}

// Client is a connection to a relay.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	clock   clock.Clock
	writeMu sync.Mutex
}

// Dial connects to the relay at address.
func Dial(ctx context.Context, address string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("connecting to relay at %s: %w", address, err)
	}
	if err := netutil.TuneConn(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("configuring connection to %s: %w", address, err)
	}
	return New(conn, clock.Real()), nil
}

// New wraps an established connection. clk timestamps clock-sync
// messages.
func New(conn net.Conn, clk clock.Clock) *Client {
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		clock:  clk,
	}
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }

// LocalAddr returns the client side of the connection.
func (c *Client) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Next reads the next message. Cancelling ctx interrupts a blocked read
// and discards any partially received line; the connection stays usable
// afterwards.
func (c *Client) Next(ctx context.Context) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	// Clear a deadline left by an earlier cancelled read.
	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		return Message{}, err
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	raw, err := c.reader.ReadString('\n')
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, ctxErr
		}
		return Message{}, err
	}
	line := strings.TrimRight(raw, "\r\n")
	return parseMessage(line)
}

func parseMessage(line string) (Message, error) {
	switch {
	case line == "p":
		return Message{Kind: KindPing, Line: line}, nil
	case line == "T":
		return Message{Kind: KindAck, Line: line}, nil
	case strings.HasPrefix(line, string(pose.LineTag)+" "):
		telemetry, err := pose.ParseLine(line)
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: KindTelemetry, Telemetry: telemetry, Line: line}, nil
	}
	return Message{}, fmt.Errorf("unexpected message from relay: %q", line)
}

// SendKeepalive sends "k".
func (c *Client) SendKeepalive() error { return c.send("k") }

// SendPing sends "p". The relay answers with "p".
func (c *Client) SendPing() error { return c.send("p") }

// SendSyncRequest sends "1<millis>".
func (c *Client) SendSyncRequest(millis int64) error {
	return c.send(fmt.Sprintf("1%d", millis))
}

// SendSyncComplete sends "2<millis>".
func (c *Client) SendSyncComplete(millis int64) error {
	return c.send(fmt.Sprintf("2%d", millis))
}

// SendRaw sends line followed by a newline.
func (c *Client) SendRaw(line string) error { return c.send(line) }

func (c *Client) send(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("sending %q: %w", line, err)
	}
	return nil
}

// SyncResult describes one completed clock-sync exchange as seen from
// the controller.
type SyncResult struct {
	// Sent is the controller time carried by the "1" message.
	Sent int64
	// Acknowledged is the controller time carried by the "2" message.
	Acknowledged int64
	// Skipped holds telemetry that arrived while waiting for the ack.
	Skipped []pose.Telemetry
}

// RoundTrip is the time between sending the request and receiving the
// ack.
func (r SyncResult) RoundTrip() time.Duration {
	return time.Duration(r.Acknowledged-r.Sent) * time.Millisecond
}

// Sync performs the clock-sync exchange: it sends "1<now>", reads until
// the relay's "T", and sends "2<now>". Telemetry received meanwhile is
// returned in the result. Must not run concurrently with Next.
func (c *Client) Sync(ctx context.Context) (SyncResult, error) {
	result := SyncResult{Sent: clock.Millis(c.clock.Now())}
	if err := c.SendSyncRequest(result.Sent); err != nil {
		return result, err
	}
	for {
		message, err := c.Next(ctx)
		if err != nil {
			return result, fmt.Errorf("waiting for sync ack: %w", err)
		}
		if message.Kind == KindAck {
			break
		}
		if message.Kind == KindTelemetry {
			result.Skipped = append(result.Skipped, message.Telemetry)
		}
	}
	result.Acknowledged = clock.Millis(c.clock.Now())
	if err := c.SendSyncComplete(result.Acknowledged); err != nil {
		return result, err
	}
	return result, nil
}

// KeepAlive sends "k" every interval until ctx is done or a send fails.
func (c *Client) KeepAlive(ctx context.Context, interval time.Duration) error {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.SendKeepalive(); err != nil {
				return err
			}
		}
	}
}
