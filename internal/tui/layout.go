package tui

import "strings"

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	progressWidth  int
}

// readerChrome is the number of rows the reader draws around the page:
// hero, page header, progress bar, status bar and message lines.
const readerChrome = 10

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
		progressWidth:  40,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth

	contentHeight := height - readerChrome
	if contentHeight < 6 {
		contentHeight = 6
	}
	l.viewportHeight = contentHeight

	l.progressWidth = innerWidth - 20
	switch {
	case l.progressWidth < 20:
		l.progressWidth = 20
	case l.progressWidth > 60:
		l.progressWidth = 60
	}
}

func (m *model) wrapWidth(padding int) int {
	width := m.layout.viewportWidth
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
