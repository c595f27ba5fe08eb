package lineext

import (
	"bufio"
	"io"
)

// TextExtractor handles plain text files. The whole file counts as page 1.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.Reader, filename string) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return buildResult([][]string{lines}), nil
}
