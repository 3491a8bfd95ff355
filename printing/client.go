package printing

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/kendall-kelly/restaurant-floor-api/config"
)

// ESC/POS control sequences
const (
	escInit        = "\x1b@"
	escAlignLeft   = "\x1ba\x00"
	escAlignCenter = "\x1ba\x01"
	escBoldOn      = "\x1bE\x01"
	escBoldOff     = "\x1bE\x00"
	// GS V 65 n: feed n lines, then partial cut
	escFeedAndCut = "\x1dVA\x03"
)

// Document is the content of one print job
type Document struct {
	Header string
	Body   string
	Footer string
}

// Bytes renders the document as an ESC/POS stream ending in a paper cut
func (d Document) Bytes() []byte {
	var b strings.Builder
	b.WriteString(escInit)
	if d.Header != "" {
		b.WriteString(escAlignCenter + escBoldOn)
		b.WriteString(d.Header)
		b.WriteString("\n" + escBoldOff)
	}
	b.WriteString(escAlignLeft)
	b.WriteString(d.Body)
	if !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\n")
	}
	if d.Footer != "" {
		b.WriteString(escAlignCenter)
		b.WriteString(d.Footer)
		b.WriteString("\n")
	}
	b.WriteString(escFeedAndCut)
	return []byte(b.String())
}

// Printer sends a document to one printer endpoint
type Printer interface {
	Print(ctx context.Context, endpoint config.PrinterEndpoint, doc Document) error
}

// Dialer opens raw TCP connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Client talks to network printers over raw sockets, one job per connection
type Client struct {
	dialer       Dialer
	maxAttempts  int
	retryDelay   time.Duration
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithDialer replaces the network dialer
func WithDialer(d Dialer) ClientOption {
	return func(c *Client) { c.dialer = d }
}

// WithRetry overrides the attempt count and the fixed delay between attempts
func WithRetry(maxAttempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.retryDelay = delay
	}
}

// WithTimeouts overrides the per-attempt dial timeout and the write timeout
func WithTimeouts(dial, write time.Duration) ClientOption {
	return func(c *Client) {
		c.dialTimeout = dial
		c.writeTimeout = write
	}
}

// NewClient creates a printer client from the printer settings in cfg
func NewClient(cfg *config.Config, opts ...ClientOption) *Client {
	c := &Client{
		dialer:       &net.Dialer{},
		maxAttempts:  3,
		retryDelay:   2 * time.Second,
		dialTimeout:  3 * time.Second,
		writeTimeout: 5 * time.Second,
	}
	if cfg != nil {
		c.maxAttempts = cfg.PrinterMaxAttempts
		c.retryDelay = cfg.PrinterRetryDelay
		c.dialTimeout = cfg.PrinterDialTimeout
		c.writeTimeout = cfg.PrinterWriteTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c
}

// Print connects to endpoint (with retry), writes doc and closes the connection.
// The connection is closed on every path once it has been opened.
func (c *Client) Print(ctx context.Context, endpoint config.PrinterEndpoint, doc Document) (err error) {
	if !endpoint.Configured() {
		return &PrinterError{Code: CodeNotConfigured, Endpoint: endpoint.String(), Err: ErrNotConfigured}
	}

	conn, err := c.connect(ctx, endpoint)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Warn("printer connection close failed",
				slog.String("action", "printer_close"),
				slog.String("endpoint", endpoint.Address()),
				slog.Any("error", closeErr))
			if err == nil {
				err = &PrinterError{Code: CodeWriteFailed, Endpoint: endpoint.Address(), Err: fmt.Errorf("close: %w", closeErr)}
			}
		}
	}()

	if c.writeTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return &PrinterError{Code: CodeWriteFailed, Endpoint: endpoint.Address(), Err: err}
		}
	}

	if _, err := conn.Write(doc.Bytes()); err != nil {
		return &PrinterError{Code: CodeWriteFailed, Endpoint: endpoint.Address(), Err: err}
	}

	return nil
}

// connect dials endpoint up to maxAttempts times with a fixed delay in between
func (c *Client) connect(ctx context.Context, endpoint config.PrinterEndpoint) (net.Conn, error) {
	address := endpoint.Address()

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		dialCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.dialTimeout > 0 {
			dialCtx, cancel = context.WithTimeout(ctx, c.dialTimeout)
		}
		conn, err := c.dialer.DialContext(dialCtx, "tcp", address)
		cancel()
		if err == nil {
			connectAttempts.WithLabelValues("ok").Inc()
			return conn, nil
		}

		connectAttempts.WithLabelValues("failed").Inc()
		lastErr = err
		slog.Warn("printer connection attempt failed",
			slog.String("action", "printer_connect"),
			slog.String("endpoint", address),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.maxAttempts),
			slog.Any("error", err))

		if attempt == c.maxAttempts {
			break
		}

		timer := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &PrinterError{Code: CodeUnreachable, Endpoint: address, Attempts: attempt, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	return nil, &PrinterError{Code: CodeUnreachable, Endpoint: address, Attempts: c.maxAttempts, Err: lastErr}
}
