// Package pdftest builds small, well-formed PDFs for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Build returns a PDF with one page per entry in pages. Each page shows its
// entry in Helvetica 12pt, one text line per "\n"-separated line, starting
// near the top-left corner of a US Letter page.
func Build(pages ...string) []byte {
	return BuildWithMediaBox(612, 792, pages...)
}

// BuildWithMediaBox is Build with the page tree's MediaBox set to
// width x height points.
func BuildWithMediaBox(width, height float64, pages ...string) []byte {
	var buf bytes.Buffer
	total := 3 + 2*len(pages)
	offsets := make([]int, total+1)
	write := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	write(1, "<< /Type /Catalog /Pages 2 0 R >>")
	write(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 %s %s] >>",
		strings.Join(kids, " "), len(pages), pdfNumber(width), pdfNumber(height)))
	write(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		pageNum := 4 + 2*i
		contentNum := pageNum + 1
		write(pageNum, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentNum))
		stream := contentStream(text)
		write(contentNum, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return buf.Bytes()
}

func contentStream(text string) string {
	var b strings.Builder
	b.WriteString("BT /F1 12 Tf 72 720 Td")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString(" 0 -14 Td")
		}
		fmt.Fprintf(&b, " (%s) Tj", escape(line))
	}
	b.WriteString(" ET")
	return b.String()
}

// pdfNumber formats v without an exponent, which PDF number syntax lacks.
func pdfNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
