package document

import (
	"math"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

const (
	letterWidth  = 612.0
	letterHeight = 792.0
	// MediaBox is inheritable; real trees are shallow.
	maxInheritDepth = 32
	// maxUserSpace is the largest page side PDF viewers accept, in points.
	maxUserSpace = 14400.0
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Glyph is one positioned text run on a page, in PDF user space (origin at
// the bottom-left corner, units in points).
type Glyph struct {
	X        float64
	Y        float64
	W        float64
	FontSize float64
	S        string
}

// Page is a handle on one page of a loaded document.
type Page struct {
	doc    *Document
	number int
	page   pdf.Page
	width  float64
	height float64
}

// Number returns the 1-based page number.
func (p *Page) Number() int { return p.number }

// Size returns the natural page size in points.
func (p *Page) Size() (float64, float64) { return p.width, p.height }

// Glyphs returns the positioned text of the page.
func (p *Page) Glyphs() (glyphs []Glyph, err error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = errors.Errorf("page %d content: %v", p.number, r)
		}
	}()

	content := p.page.Content()
	glyphs = make([]Glyph, 0, len(content.Text))
	for _, text := range content.Text {
		if text.S == "" {
			continue
		}
		glyphs = append(glyphs, Glyph{
			X:        text.X,
			Y:        text.Y,
			W:        text.W,
			FontSize: text.FontSize,
			S:        text.S,
		})
	}
	return glyphs, nil
}

// Text returns the plain text of the page with whitespace collapsed.
func (p *Page) Text() (text string, err error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errors.Errorf("page %d text: %v", p.number, r)
		}
	}()

	raw, err := p.page.GetPlainText(nil)
	if err != nil {
		return "", errors.Wrapf(err, "page %d text", p.number)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " ")), nil
}

func mediaBox(node pdf.Value) (float64, float64) {
	for depth := 0; depth < maxInheritDepth && !node.IsNull(); depth++ {
		box := node.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			width := math.Abs(box.Index(2).Float64() - box.Index(0).Float64())
			height := math.Abs(box.Index(3).Float64() - box.Index(1).Float64())
			if validSide(width) && validSide(height) {
				return width, height
			}
		}
		node = node.Key("Parent")
	}
	return letterWidth, letterHeight
}

// validSide reports whether a MediaBox side is a usable page dimension. The
// comparisons are false for NaN and reject +Inf, so broken boxes fall back to
// the inherited or default size.
func validSide(v float64) bool {
	return v > 0 && v <= maxUserSpace
}
