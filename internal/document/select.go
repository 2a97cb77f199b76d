package document

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// SelectPages builds a new PDF holding only the given pages, in the given
// order. Page numbers are 1-based.
func SelectPages(payload []byte, pages []int) ([]byte, error) {
	if len(pages) == 0 {
		return nil, errors.New("no pages selected")
	}
	data, err := Decode(payload)
	if err != nil {
		return nil, err
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, &ParseError{Err: errors.Wrap(err, "read pdf context")}
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, &ParseError{Err: errors.Wrap(err, "validate pdf")}
	}
	for _, page := range pages {
		if page < 1 || page > ctx.PageCount {
			return nil, errors.Wrapf(ErrPageOutOfRange, "page %d of %d", page, ctx.PageCount)
		}
	}

	selected, err := pdfcpu.ExtractPages(ctx, pages, false)
	if err != nil {
		return nil, errors.Wrap(err, "extract pages")
	}
	var buf bytes.Buffer
	if err := api.WriteContext(selected, &buf); err != nil {
		return nil, errors.Wrap(err, "write selection")
	}
	return buf.Bytes(), nil
}
