package handler

import (
	"strings"
)

const headerTerminator = "\r\n\r\n"

// Request holds what the router and handlers need from a raw request. Headers
// are not parsed.
type Request struct {
	Method string
	Path   string
	ID     string
	Body   string
}

// ParseRequest extracts the request line, the id segment and the body from
// the bytes of a single read. Missing parts are left empty.
func ParseRequest(raw []byte) Request {
	text := string(raw)

	var req Request

	line := text
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) > 0 {
		req.Method = fields[0]
	}
	if len(fields) > 1 {
		req.Path = fields[1]
	}

	req.ID = idSegment(req.Path)

	if _, body, found := strings.Cut(text, headerTerminator); found {
		req.Body = body
	}

	return req
}

// idSegment returns the segment after the resource name in /helados/<id>.
func idSegment(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 3 {
		return ""
	}
	seg := parts[2]
	if i := strings.IndexFunc(seg, isSpace); i >= 0 {
		seg = seg[:i]
	}
	return seg
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
