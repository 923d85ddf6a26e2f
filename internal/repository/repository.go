package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

// resourcePath joins a base path with escaped segments.
func resourcePath(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func get(path, route string, query url.Values) transport.Request {
	return transport.Request{Method: http.MethodGet, Path: path, Route: route, Query: query}
}

func withBody(method, path, route string, body interface{}) transport.Request {
	return transport.Request{Method: method, Path: path, Route: route, Body: body}
}

func upload(path, route, field string, file dto.Attachment, fields map[string]string) transport.Request {
	form := &transport.Multipart{Fields: fields}
	if file.Content != nil {
		form.Files = []transport.FilePart{{Field: field, Filename: file.Filename, Content: file.Content}}
	}
	return transport.Request{Method: http.MethodPost, Path: path, Route: route, Form: form}
}

// send issues a write whose response payload is not needed.
func send(ctx context.Context, client *transport.Client, shape transport.Shape, req transport.Request) error {
	_, err := transport.Fetch[json.RawMessage](ctx, client, shape, req)
	return err
}
