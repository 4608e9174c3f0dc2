// SPDX-License-Identifier: MIT
package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Endpoint paths served by the remote service.
const (
	EndpointVideoInfo    = pathVideoInfo
	EndpointDebugFormats = pathDebugFormats
	EndpointDownload     = pathDownload
)

// RecordedRequest is one request received by MockServer.
type RecordedRequest struct {
	Method      string
	ContentType string
	Body        map[string]any
}

type mockFailure struct {
	remaining int
	status    int
	message   string
	raw       string
}

// MockServer provides a configurable in-process stand-in for the remote
// service, for tests and local demos.
type MockServer struct {
	*httptest.Server
	mu         sync.Mutex
	metadata   VideoMetadata
	debug      DebugReport
	descriptor Descriptor
	files      map[string][]byte
	failures   map[string]*mockFailure
	delay      map[string]time.Duration
	gates      map[string]chan struct{}
	requests   map[string][]RecordedRequest
}

// NewMockServer creates and starts a mock service with default data.
func NewMockServer() *MockServer {
	m := &MockServer{}
	m.Reset()

	mux := http.NewServeMux()
	mux.HandleFunc(EndpointVideoInfo, func(w http.ResponseWriter, r *http.Request) {
		m.handle(w, r, EndpointVideoInfo, func() any { return m.metadata })
	})
	mux.HandleFunc(EndpointDebugFormats, func(w http.ResponseWriter, r *http.Request) {
		m.handle(w, r, EndpointDebugFormats, func() any { return m.debug })
	})
	mux.HandleFunc(EndpointDownload, func(w http.ResponseWriter, r *http.Request) {
		m.handle(w, r, EndpointDownload, func() any { return m.descriptor })
	})
	mux.HandleFunc("/", m.handleFile)

	m.Server = httptest.NewServer(mux)
	return m
}

// Reset restores default data and clears failures, delays and recordings.
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := Int(213)
	views := Int(1234567)
	m.metadata = VideoMetadata{
		Title:       "Never Gonna Give You Up",
		Author:      "Rick Astley",
		Duration:    &duration,
		ViewCount:   &views,
		PublishDate: "2009-10-24",
		Thumbnail:   "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		Description: "The official video.",
		AvailableQualities: AvailableQualities{
			Video: []string{"1080p", "720p"},
			Audio: []string{"160kbps", "128kbps"},
		},
	}

	height, fps, abr := 1080, 30, 128
	size := Int(52428800)
	m.debug = DebugReport{
		Title:        "Never Gonna Give You Up",
		TotalFormats: 2,
		Formats: []FormatEntry{
			{Itag: 137, Container: "mp4", QualityLabel: "1080p", Height: &height, FPS: &fps, HasVideo: true, ContentLength: &size},
			{Itag: 140, Container: "mp4", Quality: "tiny", HasAudio: true, AudioBitrate: &abr},
		},
	}
	m.descriptor = Descriptor{
		Message:     "Download completed successfully!",
		DownloadURL: "/downloads/never-gonna-give-you-up.mp4",
		Filename:    "never-gonna-give-you-up.mp4",
	}
	m.files = map[string][]byte{
		"/downloads/never-gonna-give-you-up.mp4": []byte("fake-mp4-bytes"),
	}
	m.failures = make(map[string]*mockFailure)
	m.delay = make(map[string]time.Duration)
	m.gates = make(map[string]chan struct{})
	m.requests = make(map[string][]RecordedRequest)
}

// SetMetadata replaces the metadata reply.
func (m *MockServer) SetMetadata(md VideoMetadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata = md
}

// SetDebugReport replaces the debug reply.
func (m *MockServer) SetDebugReport(r DebugReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debug = r
}

// SetDescriptor replaces the artifact reply.
func (m *MockServer) SetDescriptor(d Descriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.descriptor = d
}

// AddFile serves content for GET requests to path.
func (m *MockServer) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

// SetFailures makes the next count requests to endpoint fail with status and
// an {"error": message} body. An empty message sends an empty JSON object.
func (m *MockServer) SetFailures(endpoint string, count, status int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = &mockFailure{remaining: count, status: status, message: message}
}

// SetRawFailure makes the next request to endpoint answer status with a raw,
// possibly non-JSON body.
func (m *MockServer) SetRawFailure(endpoint string, status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = &mockFailure{remaining: 1, status: status, raw: body}
}

// SetDelay adds an artificial delay to endpoint.
func (m *MockServer) SetDelay(endpoint string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay[endpoint] = d
}

// Hold blocks requests to endpoint until the returned release func is called.
// Used to interleave overlapping sub-flows deterministically.
func (m *MockServer) Hold(endpoint string) (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gates[endpoint] = gate
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.gates[endpoint] == gate {
				delete(m.gates, endpoint)
			}
			m.mu.Unlock()
			close(gate)
		})
	}
}

// Requests returns the requests recorded for endpoint.
func (m *MockServer) Requests(endpoint string) []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests[endpoint]))
	copy(out, m.requests[endpoint])
	return out
}

// URL returns the base URL of the mock server.
func (m *MockServer) URL() string {
	return m.Server.URL
}

func (m *MockServer) handle(w http.ResponseWriter, r *http.Request, endpoint string, reply func() any) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	rec := RecordedRequest{Method: r.Method, ContentType: r.Header.Get("Content-Type")}
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &rec.Body)

	m.mu.Lock()
	m.requests[endpoint] = append(m.requests[endpoint], rec)
	gate := m.gates[endpoint]
	delay := m.delay[endpoint]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	m.mu.Lock()
	var fail *mockFailure
	if f, ok := m.failures[endpoint]; ok && f.remaining > 0 {
		f.remaining--
		cp := *f
		fail = &cp
	}
	body := reply()
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail != nil {
		w.WriteHeader(fail.status)
		switch {
		case fail.raw != "":
			_, _ = w.Write([]byte(fail.raw))
		case fail.message != "":
			_ = json.NewEncoder(w).Encode(errorBody{Error: fail.message})
		default:
			_, _ = w.Write([]byte("{}"))
		}
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (m *MockServer) handleFile(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	content, ok := m.files[r.URL.Path]
	m.mu.Unlock()
	if !ok || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}
