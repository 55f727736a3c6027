package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/zeebo/xxh3"

	"nytaxi/internal/dataset"
)

// Error wraps any failure to retrieve or decode a dataset: network errors,
// non-2xx statuses, undecodable payloads.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetch retrieves the file at url and decodes it into a table according to
// format. The response body is consumed fully; parquet payloads are spooled
// to a temp file which is removed before returning.
func Fetch(ctx context.Context, c *Client, url string, format dataset.Format) (*dataset.Table, error) {
	resp, err := c.Get(ctx, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, &Error{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	switch format {
	case dataset.FormatParquet:
		return fetchParquet(ctx, url, resp.Body)
	case dataset.FormatCSV:
		return fetchCSV(url, resp.Body)
	default:
		return nil, &Error{URL: url, Err: fmt.Errorf("unsupported format %q", format)}
	}
}

func fetchParquet(ctx context.Context, url string, body io.Reader) (*dataset.Table, error) {
	f, size, digest, err := spool(url, body)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer os.Remove(f.Name())
	defer f.Close()

	tbl, err := readParquet(ctx, f)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	log.Printf("fetch: %s: %d rows, %d bytes, xxh3=%016x", url, tbl.NumRows(), size, digest)
	return tbl, nil
}

func fetchCSV(url string, body io.Reader) (*dataset.Table, error) {
	h := xxh3.New()
	cr := &countingReader{r: io.TeeReader(body, h)}

	tbl, err := readCSV(cr)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	log.Printf("fetch: %s: %d rows, %d bytes, xxh3=%016x", url, tbl.NumRows(), cr.n, h.Sum64())
	return tbl, nil
}

// spool copies the payload to a temp file, hashing it on the way through, and
// rewinds the file for reading. The caller removes the file.
func spool(url string, body io.Reader) (*os.File, int64, uint64, error) {
	f, err := os.CreateTemp("", SafeFilenameFromURL(url)+"-*")
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create spool file: %w", err)
	}

	h := xxh3.New()
	size, err := io.Copy(io.MultiWriter(f, h), body)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, 0, 0, fmt.Errorf("download: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, 0, 0, fmt.Errorf("rewind spool file: %w", err)
	}
	return f, size, h.Sum64(), nil
}

// FirstBytes retrieves up to n bytes from the given URL using HTTP GET.
//
// It adds a Range header ("bytes=0-(n-1)") as an optimization and applies a
// client-side LimitedReader so the result is capped even when the server
// ignores Range and answers 200. The returned slice length is <= n.
func FirstBytes(ctx context.Context, c *Client, url string, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("fetch: n must be > 0")
	}

	h := make(http.Header)
	h.Set("Range", fmt.Sprintf("bytes=0-%d", n-1))

	resp, err := c.Get(ctx, url, h)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, &Error{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	lr := &io.LimitedReader{R: resp.Body, N: int64(n)}
	buf, err := io.ReadAll(lr)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	return buf, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
