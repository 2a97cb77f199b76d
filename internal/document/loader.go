// Package document decodes PDF payloads into page-addressable handles.
package document

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const pdfMIME = "application/pdf"

// ErrPageOutOfRange is returned when a page number is outside the document.
var ErrPageOutOfRange = errors.New("page out of range")

// ParseError reports a payload that could not be decoded or parsed as a PDF.
// The session cannot continue with this payload.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unreadable document: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Loader parses payloads into documents. Concurrent loads of the same payload
// share one parse.
type Loader struct {
	group singleflight.Group
}

// NewLoader returns a ready Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load decodes payload and parses it. Raw PDF bytes, bare base64 and
// data URLs are accepted.
func (l *Loader) Load(ctx context.Context, payload []byte) (*Document, error) {
	data, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	key := Fingerprint(data)
	ch := l.group.DoChan(key, func() (any, error) {
		return parse(key, data)
	})
	select {
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Document), nil
	}
}

// Decode normalises a payload to raw PDF bytes and checks its content type.
func Decode(payload []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, &ParseError{Err: errors.New("empty payload")}
	}

	data := payload
	switch {
	case bytes.HasPrefix(trimmed, []byte("data:")):
		comma := bytes.IndexByte(trimmed, ',')
		if comma < 0 || !bytes.HasSuffix(trimmed[:comma], []byte(";base64")) {
			return nil, &ParseError{Err: errors.New("data URL is not base64 encoded")}
		}
		decoded, err := decodeBase64(trimmed[comma+1:])
		if err != nil {
			return nil, &ParseError{Err: errors.Wrap(err, "decode data URL")}
		}
		data = decoded
	case bytes.HasPrefix(trimmed, []byte("%PDF-")):
	default:
		decoded, err := decodeBase64(trimmed)
		if err != nil {
			return nil, &ParseError{Err: errors.New("payload is neither PDF bytes nor base64")}
		}
		data = decoded
	}

	if mtype := mimetype.Detect(data); !mtype.Is(pdfMIME) {
		return nil, &ParseError{Err: errors.Errorf("expected %s, got %s", pdfMIME, mtype.String())}
	}
	return data, nil
}

func decodeBase64(value []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(value)))
	n, err := base64.StdEncoding.Decode(out, value)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// Fingerprint returns the content key used to deduplicate loads and blobs.
func Fingerprint(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func parse(key string, data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &ParseError{Err: errors.Errorf("parser panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	count := reader.NumPage()
	if count == 0 {
		return nil, &ParseError{Err: errors.New("document has no pages")}
	}
	return &Document{
		key:       key,
		size:      int64(len(data)),
		reader:    reader,
		pageCount: count,
	}, nil
}

// Document is a parsed PDF. It is read only after load; page access is
// serialised so a render being torn down never races the next one inside
// the parser.
type Document struct {
	mu        sync.Mutex
	key       string
	size      int64
	reader    *pdf.Reader
	pageCount int
}

// Key returns the content fingerprint of the document.
func (d *Document) Key() string { return d.key }

// Size returns the payload size in bytes.
func (d *Document) Size() int64 { return d.size }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.pageCount }

// Page returns the 1-based page number.
func (d *Document) Page(number int) (*Page, error) {
	if number < 1 || number > d.pageCount {
		return nil, errors.Wrapf(ErrPageOutOfRange, "page %d of %d", number, d.pageCount)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	page := d.reader.Page(number)
	if page.V.IsNull() {
		return nil, errors.Errorf("page %d has no page dictionary", number)
	}
	width, height := mediaBox(page.V)
	return &Page{doc: d, number: number, page: page, width: width, height: height}, nil
}
