package render

import (
	"context"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/csheth/pagewise/internal/document"
)

// DefaultSurfaceCacheSize bounds the number of painted canvases kept.
const DefaultSurfaceCacheSize = 32

// Page is the part of a document page the pipeline needs.
type Page interface {
	Size() (float64, float64)
	Glyphs() ([]document.Glyph, error)
	Text() (string, error)
}

// Source hands out pages by 1-based number.
type Source interface {
	Page(number int) (Page, error)
}

type documentSource struct {
	doc *document.Document
}

// DocumentSource adapts a loaded document to a Source.
func DocumentSource(doc *document.Document) Source {
	return documentSource{doc: doc}
}

func (s documentSource) Page(number int) (Page, error) {
	page, err := s.doc.Page(number)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// RenderFailure is a page that could not be fetched, painted or read for a
// reason other than cancellation.
type RenderFailure struct {
	Page  int
	Stage string
	Err   error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render page %d: %s: %v", e.Page, e.Stage, e.Err)
}

func (e *RenderFailure) Unwrap() error { return e.Err }

type surfaceKey struct {
	page int
	zoom int
}

// Pipeline turns requests into painted canvases and extracted text.
type Pipeline struct {
	source   Source
	surfaces *lru.Cache[surfaceKey, *Canvas]
}

// NewPipeline builds a pipeline over source keeping up to cacheSize painted
// canvases.
func NewPipeline(source Source, cacheSize int) (*Pipeline, error) {
	if source == nil {
		return nil, errors.New("render source is required")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultSurfaceCacheSize
	}
	surfaces, err := lru.New[surfaceKey, *Canvas](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "surface cache")
	}
	return &Pipeline{source: source, surfaces: surfaces}, nil
}

// Run renders req. It checks ctx after the page fetch, after the paint and
// after text extraction, and returns StatusCancelled without an error once
// ctx is done.
func (p *Pipeline) Run(ctx context.Context, req Request) Outcome {
	out := Outcome{Request: req}

	page, err := p.source.Page(req.Page)
	if ctx.Err() != nil {
		return out.cancelled()
	}
	if err != nil {
		return out.failed("fetch", err)
	}

	key := surfaceKey{page: req.Page, zoom: int(math.Round(req.Zoom * 100))}
	canvas, ok := p.surfaces.Get(key)
	if !ok {
		glyphs, err := page.Glyphs()
		if err != nil {
			if ctx.Err() != nil {
				return out.cancelled()
			}
			return out.failed("paint", err)
		}
		width, height := page.Size()
		cols, rows, err := CanvasSize(width, height, req.Zoom)
		if err != nil {
			return out.failed("paint", err)
		}
		canvas = NewCanvas(cols, rows)
		Paint(canvas, glyphs, height, req.Zoom)
		p.surfaces.Add(key, canvas)
	}
	if ctx.Err() != nil {
		return out.cancelled()
	}

	text, err := page.Text()
	if ctx.Err() != nil {
		return out.cancelled()
	}
	if err != nil {
		return out.failed("text", err)
	}

	out.Status = StatusCommitted
	out.Surface = canvas
	out.Text = text
	return out
}

// Outcome is the tagged result of one render.
type Outcome struct {
	Request Request
	Status  Status
	Surface *Canvas
	Text    string
	Err     error
}

func (o Outcome) cancelled() Outcome {
	o.Status = StatusCancelled
	return o
}

func (o Outcome) failed(stage string, err error) Outcome {
	o.Status = StatusFailed
	o.Err = &RenderFailure{Page: o.Request.Page, Stage: stage, Err: err}
	return o
}
