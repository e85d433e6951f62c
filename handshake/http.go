package handshake

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/xrplsynth/limits"
)

// Header holds upgrade headers keyed by lower-cased name. Later
// occurrences of a repeated header overwrite earlier ones.
type Header map[string]string

// Get returns the value for a header name, or "" when absent.
func (h Header) Get(key string) string {
	return h[strings.ToLower(key)]
}

// Request is a parsed upgrade request.
type Request struct {
	Method  string
	Target  string
	Proto   string
	Headers Header
}

// Response is a parsed upgrade response.
type Response struct {
	Proto      string
	StatusCode int
	Reason     string
	Headers    Header
}

// readHeaderBlock consumes bytes through the terminating CRLFCRLF. The
// block is capped so an endless header stream cannot pin the reader.
func readHeaderBlock(r *bufio.Reader) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(1024)

	var last4 [4]byte
	for buf.Len() < limits.MaxHandshakeBlock {
		c, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHTTPParse, err)
		}
		buf.WriteByte(c)

		last4[0], last4[1], last4[2], last4[3] = last4[1], last4[2], last4[3], c
		if last4 == [4]byte{'\r', '\n', '\r', '\n'} {
			return buf.Bytes(), nil
		}
	}
	return nil, fmt.Errorf("%w: no header terminator within %d bytes",
		limits.ErrBlockTooLarge, limits.MaxHandshakeBlock)
}

// ReadRequest parses one upgrade request from r, consuming exactly the
// header block. Pipelined bytes stay buffered in r.
func ReadRequest(r *bufio.Reader) (*Request, error) {
	block, err := readHeaderBlock(r)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(block), "\r\n")
	parts := strings.Split(lines[0], " ")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: request line %q", ErrHTTPParse, lines[0])
	}

	return &Request{
		Method:  parts[0],
		Target:  parts[1],
		Proto:   parts[2],
		Headers: parseHeaderLines(lines[1:]),
	}, nil
}

// ReadResponse parses one upgrade response from r, consuming exactly the
// header block.
func ReadResponse(r *bufio.Reader) (*Response, error) {
	block, err := readHeaderBlock(r)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(block), "\r\n")
	parts := strings.SplitN(lines[0], " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return nil, fmt.Errorf("%w: status line %q", ErrHTTPParse, lines[0])
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: status code %q", ErrHTTPParse, parts[1])
	}

	resp := &Response{
		Proto:      parts[0],
		StatusCode: code,
		Headers:    parseHeaderLines(lines[1:]),
	}
	if len(parts) == 3 {
		resp.Reason = parts[2]
	}
	return resp, nil
}

func parseHeaderLines(lines []string) Header {
	h := make(Header, 12)
	for _, ln := range lines {
		if ln == "" {
			break
		}
		i := strings.Index(ln, ":")
		if i <= 0 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(ln[:i]))
		v := strings.TrimSpace(ln[i+1:])
		h[k] = v
	}
	return h
}

// headerContains reports whether a comma-separated header value carries
// token, compared case-insensitively.
func headerContains(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
