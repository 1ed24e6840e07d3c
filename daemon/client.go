package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/vicaya/vicaya"
)

// Client dials a vicayad Unix socket and speaks one request/response per
// connection, matching the server's no-pipelining contract.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient returns a Client for socketPath. timeout bounds each dial and
// round trip; zero means no deadline on the round trip, while the dial
// still uses a 5-second timeout.
func NewClient(socketPath string, timeout time.Duration) *Client {
	return &Client{socketPath: socketPath, timeout: timeout}
}

func (c *Client) roundTrip(req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.dialTimeout())
	if err != nil {
		return Response{}, fmt.Errorf("daemon: %w", err)
	}
	defer conn.Close()

	if c.timeout > 0 {
		conn.SetDeadline(time.Now().Add(c.timeout))
	}

	enc := json.NewEncoder(conn)
	if err := enc.Encode(req); err != nil {
		return Response{}, fmt.Errorf("daemon: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Response{}, fmt.Errorf("daemon: %w", err)
		}
		return Response{}, fmt.Errorf("daemon: connection closed without a response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return Response{}, fmt.Errorf("daemon: %w", err)
	}
	if resp.Type == ResponseError {
		return resp, fmt.Errorf("daemon: %s", resp.Message)
	}
	return resp, nil
}

func (c *Client) dialTimeout() time.Duration {
	if c.timeout > 0 {
		return c.timeout
	}
	return 5 * time.Second
}

// Search sends a RequestSearch and returns its results.
func (c *Client) Search(term string, limit int, scope string) ([]vicaya.SearchResult, error) {
	resp, err := c.roundTrip(Request{
		Type:   RequestSearch,
		Search: &SearchParams{Term: term, Limit: limit, Scope: scope},
	})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Status sends a RequestStatus and returns the daemon's snapshot stats.
func (c *Client) Status() (vicaya.Stats, error) {
	resp, err := c.roundTrip(Request{Type: RequestStatus})
	if err != nil {
		return vicaya.Stats{}, err
	}
	if resp.Type != ResponseStatus || resp.Stats == nil {
		return vicaya.Stats{}, fmt.Errorf("daemon: status response missing stats")
	}
	return *resp.Stats, nil
}

// Rebuild sends a RequestRebuild and waits for it to complete.
func (c *Client) Rebuild() error {
	_, err := c.roundTrip(Request{Type: RequestRebuild})
	return err
}

// Shutdown sends a RequestShutdown, telling the daemon to flush and exit.
func (c *Client) Shutdown() error {
	_, err := c.roundTrip(Request{Type: RequestShutdown})
	return err
}
