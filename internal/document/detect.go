package document

import "strings"

// DetectIndentation guesses the indentation style of lines. It returns the
// indent width and whether tabs are used; fallback is 4 spaces.
func DetectIndentation(lines []string) (int, bool) {
	if len(lines) == 0 {
		return DefaultTabSize, false
	}

	tabLines := 0
	spaceLines := 0
	spaceIndents := make(map[int]int)

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		spaces, tabs := 0, 0
		for _, ch := range line {
			if ch == '\t' {
				tabs++
			} else if ch == ' ' {
				spaces++
			} else {
				break
			}
		}
		if tabs > 0 {
			tabLines++
		}
		if spaces > 0 && tabs == 0 {
			spaceLines++
			for _, size := range []int{2, 4, 8} {
				if spaces%size == 0 {
					spaceIndents[size]++
				}
			}
		}
	}

	if tabLines > spaceLines {
		return DefaultTabSize, true
	}

	// A width wins only if every indented line is a multiple of it; the
	// widest such width is preferred.
	for _, size := range []int{8, 4, 2} {
		if spaceLines > 0 && spaceIndents[size] == spaceLines {
			return size, false
		}
	}
	return DefaultTabSize, false
}

// IndentUnit builds the indentation string for a style.
func IndentUnit(width int, useTabs bool) string {
	if useTabs {
		return "\t"
	}
	if width <= 0 {
		width = DefaultTabSize
	}
	return strings.Repeat(" ", width)
}
