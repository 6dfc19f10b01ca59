package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const mockBucket = "mock-bucket"

// MockS3 is an in-memory fake of the S3 subset the backend uses: Get, Put,
// Copy and Delete on a single bucket.
type MockS3 struct {
	mu       sync.Mutex
	state    map[string][]byte
	failPuts bool
}

// NewMockBackend returns a Backend wired to an in-memory fake HTTP transport.
func NewMockBackend() (*Backend, *MockS3) {
	m := &MockS3{state: make(map[string][]byte)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: m}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RetryMaxAttempts = 1
	})
	return newBackend(client, mockBucket, ""), m
}

// Keys lists stored object keys.
func (m *MockS3) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.state))
	for k := range m.state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Object returns the stored body for key.
func (m *MockS3) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.state[key]
	return b, ok
}

// FailPuts makes subsequent uploads answer 500.
func (m *MockS3) FailPuts(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPuts = fail
}

func xmlResponse(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{"Content-Type": {"application/xml"}}}
}

func emptyResponse(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}
}

// RoundTrip implements http.RoundTripper.
func (m *MockS3) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	switch req.Method {
	case http.MethodPut:
		if src := req.Header.Get("X-Amz-Copy-Source"); src != "" {
			return m.copyObject(src, key), nil
		}
		if m.failPuts {
			return xmlResponse(http.StatusInternalServerError, "<Error><Code>InternalError</Code><Message>injected</Message></Error>"), nil
		}
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunkedLite(body); ok { // handle aws-chunked encoding
			body = dec
		}
		m.state[key] = body
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
	case http.MethodGet:
		if body, ok := m.state[key]; ok {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), Header: http.Header{
				"Content-Length": {fmt.Sprintf("%d", len(body))},
				"Content-Type":   {"application/json"},
				"ETag":           {"\"etag\""},
			}}, nil
		}
		return xmlResponse(http.StatusNotFound, "<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>"), nil
	case http.MethodDelete:
		delete(m.state, key)
		return emptyResponse(http.StatusNoContent), nil
	}
	return emptyResponse(http.StatusNotImplemented), nil
}

func (m *MockS3) copyObject(source, key string) *http.Response {
	src, err := url.PathUnescape(strings.TrimPrefix(source, "/"))
	if err != nil {
		return xmlResponse(http.StatusBadRequest, "<Error><Code>InvalidArgument</Code><Message>bad copy source</Message></Error>")
	}
	srcKey := strings.TrimPrefix(src, mockBucket+"/")
	body, ok := m.state[srcKey]
	if !ok {
		return xmlResponse(http.StatusNotFound, "<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>")
	}
	m.state[key] = append([]byte(nil), body...)
	return xmlResponse(http.StatusOK, "<CopyObjectResult><ETag>\"etag\"</ETag><LastModified>2024-01-01T00:00:00Z</LastModified></CopyObjectResult>")
}

// decodeChunkedLite decodes a minimal single-chunk aws-chunked style payload: <hex>\r\n<body>\r\n0\r\n...
func decodeChunkedLite(b []byte) ([]byte, bool) {
	s := string(b)
	parts := strings.Split(s, "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	sz, perr := parseHex(parts[0])
	if perr != nil || int64(len(parts[1])) != sz || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}

func parseHex(h string) (int64, error) {
	if h == "" {
		return 0, fmt.Errorf("invalid hex")
	}
	var v int64
	for _, c := range h {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v += int64(c - '0')
		case c >= 'a' && c <= 'f':
			v += int64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v += int64(c-'A') + 10
		default:
			return 0, fmt.Errorf("invalid hex")
		}
	}
	return v, nil
}
