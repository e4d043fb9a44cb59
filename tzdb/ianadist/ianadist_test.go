package ianadist

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

// roundTripperFunc is a function that implements the http.RoundTripper interface.
// Useful to fake a http.Client with fakeClient.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (fn roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func fakeClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn}
}

// testTZDataFiles checks that the TZDataFiles map adheres to the expected format.
func testTZDataFiles(t *testing.T, files TZDataFiles) {
	t.Helper()
	for file, data := range files {
		if len(file) == 0 {
			t.Errorf("TZDataFiles: empty file name.")
		}
		if !strings.HasPrefix(string(data), "# tzdb data for") {
			t.Errorf("TZDataFiles: data missing magic string in %q", file)
		}
	}
}

// buildTestArchive builds a minimal tzdb release archive in memory: a
// version file, a leap seconds file, and two data files, the same shape
// ReadArchive expects from a real release tarball.
func buildTestArchive(t *testing.T) []byte {
	t.Helper()

	files := []struct {
		name string
		data string
	}{
		{"version", "2024b"},
		{"leapseconds", "# Updated through IERS Bulletin C\n"},
		{"europe", "# tzdb data for Europe and environs\nZone Europe/Berlin ...\n"},
		{"northamerica", "# tzdb data for North America\nZone America/New_York ...\n"},
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, f := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name: f.name,
			Mode: 0o644,
			Size: int64(len(f.data)),
		}); err != nil {
			t.Fatalf("write tar header for %q: %v", f.name, err)
		}
		if _, err := tw.Write([]byte(f.data)); err != nil {
			t.Fatalf("write tar data for %q: %v", f.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	return buf.Bytes()
}

func TestLatest(t *testing.T) {
	const (
		testEtag  = "test-etag"
		emptyEtag = ""
	)
	httpClient := fakeClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet {
			t.Errorf("unexpected method %q", req.Method)
		}
		if req.URL.String() != "https://data.iana.org/time-zones/tzdata-latest.tar.gz" {
			t.Errorf("unexpected URL %q", req.URL)
		}

		if req.Header.Get("If-None-Match") == testEtag {
			return &http.Response{
				StatusCode: http.StatusNotModified,
			}, nil
		}

		data := buildTestArchive(t)
		resp := &http.Response{
			Body:       io.NopCloser(bytes.NewReader(data)),
			StatusCode: http.StatusOK,
		}
		resp.Header = make(http.Header)
		resp.Header.Set("etag", testEtag)
		return resp, nil
	})

	DefaultClient = &Client{HTTPClient: httpClient}

	ctx := context.Background()

	// Test that Latest returns the latest data files.
	release, gotEtag, err := Latest(ctx, emptyEtag)
	if err != nil {
		t.Errorf("Latest(%v) returned unexpected error: %v", emptyEtag, err)
	}
	if gotEtag != testEtag {
		t.Errorf("Latest(%v) returned ETag %q, want %q", emptyEtag, gotEtag, testEtag)
	}
	testTZDataFiles(t, release.DataFiles)

	// Test that Latest returns no files when the ETag is up-to-date.
	release, newEtag, err := Latest(ctx, gotEtag)
	if err != nil {
		t.Errorf("Latest(%q) returned unexpected error: %v", gotEtag, err)
	}
	if newEtag != testEtag {
		t.Errorf("Latest(%q) returned ETag %q, want %q", gotEtag, newEtag, testEtag)
	}
	if release != nil {
		t.Errorf("Latest(%q) returned non-nil files", gotEtag)
	}
}

func TestReadArchive(t *testing.T) {
	data := buildTestArchive(t)
	release, err := ReadArchive(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadArchive(...): unexpected non-nil error: %v", err)
	}
	if release.Version != "2024b" {
		t.Errorf("Version = %q, want %q", release.Version, "2024b")
	}
	if len(release.LeapSecondsFile) == 0 {
		t.Errorf("LeapSecondsFile is empty")
	}
	testTZDataFiles(t, release.DataFiles)
}

func TestReadArchive_noDataFiles(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	version := "2024b"
	if err := tw.WriteHeader(&tar.Header{Name: "version", Size: int64(len(version))}); err != nil {
		t.Fatalf("write tar header: %v", err)
	}
	if _, err := tw.Write([]byte(version)); err != nil {
		t.Fatalf("write tar data: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}

	if _, err := ReadArchive(bytes.NewReader(buf.Bytes())); err == nil {
		t.Error("ReadArchive(...) with no data files: want error, got nil")
	}
}
