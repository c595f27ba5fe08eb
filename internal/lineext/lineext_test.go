package lineext

import (
	"strings"
	"testing"
)

func TestTextExtractor_LinesAndHeader(t *testing.T) {
	input := "MAS Notice 758\nIssued on 18 Dec 2024\n\n1. First paragraph.\n(a) first item\n"
	e := &TextExtractor{}
	res, err := e.Extract(strings.NewReader(input), "notice.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"MAS Notice 758",
		"Issued on 18 Dec 2024",
		"1. First paragraph.",
		"(a) first item",
	}
	if len(res.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(res.Lines))
	}
	for i, w := range want {
		if res.Lines[i].Text != w {
			t.Errorf("line[%d] = %q, want %q", i, res.Lines[i].Text, w)
		}
		if res.Lines[i].Seq != i {
			t.Errorf("line[%d] seq = %d, want %d", i, res.Lines[i].Seq, i)
		}
		if res.Lines[i].Page != 1 {
			t.Errorf("line[%d] page = %d, want 1", i, res.Lines[i].Page)
		}
	}

	// All four lines fit in the header window.
	if len(res.Header) != 4 {
		t.Errorf("expected 4 header lines, got %d", len(res.Header))
	}
}

func TestTextExtractor_EmptyInput(t *testing.T) {
	e := &TextExtractor{}
	res, err := e.Extract(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Lines) != 0 {
		t.Errorf("expected 0 lines, got %d", len(res.Lines))
	}
}

func TestMarkdownExtractor_BlocksBecomeLines(t *testing.T) {
	input := "# PART I Scope\n\n1. Application of this notice.\n\ncontinued text line one.\ncontinued text line two.\n"
	e := &MarkdownExtractor{}
	res, err := e.Extract(strings.NewReader(input), "notice.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var texts []string
	for _, ln := range res.Lines {
		texts = append(texts, ln.Text)
	}
	joined := strings.Join(texts, "|")
	for _, want := range []string{"PART I Scope", "1. Application of this notice.", "continued text line one.", "continued text line two."} {
		if !strings.Contains(joined, want) {
			t.Errorf("extracted lines missing %q: %q", want, joined)
		}
	}
}

func TestHTMLExtractor_BlockElements(t *testing.T) {
	input := `<html><head><title>x</title><script>junk()</script></head>
<body><h1>PART I Scope</h1><p>1. Application.</p><p>(a) first item</p></body></html>`
	e := &HTMLExtractor{}
	res, err := e.Extract(strings.NewReader(input), "notice.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"PART I Scope", "1. Application.", "(a) first item"}
	if len(res.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(res.Lines), res.Lines)
	}
	for i, w := range want {
		if res.Lines[i].Text != w {
			t.Errorf("line[%d] = %q, want %q", i, res.Lines[i].Text, w)
		}
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		ok       bool
	}{
		{"notice.pdf", true},
		{"notice.txt", true},
		{"notice.md", true},
		{"NOTICE.HTML", true},
		{"notice.docx", true},
		{"notice.xls", false},
		{"notice", false},
	}
	for _, tc := range tests {
		_, err := ForFile(tc.filename, Options{})
		if (err == nil) != tc.ok {
			t.Errorf("ForFile(%q) err = %v, want ok=%v", tc.filename, err, tc.ok)
		}
		if got := IsSupportedExtension(tc.filename); got != tc.ok {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", tc.filename, got, tc.ok)
		}
	}
}

func TestForFile_PDFFallbackOption(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		ext, err := ForFile("notice.pdf", Options{PDFFallbackPdftotext: enabled})
		if err != nil {
			t.Fatalf("ForFile(notice.pdf) err = %v", err)
		}
		pe, ok := ext.(*PDFExtractor)
		if !ok {
			t.Fatalf("ForFile(notice.pdf) = %T, want *PDFExtractor", ext)
		}
		if pe.FallbackPdftotext != enabled {
			t.Errorf("FallbackPdftotext = %v, want %v", pe.FallbackPdftotext, enabled)
		}
	}
}

func TestBuildResult_PagesAndHeaderWindow(t *testing.T) {
	pages := [][]string{
		{"l0", "", "l1"},
		{"l2"},
	}
	res := buildResult(pages)
	if len(res.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(res.Lines))
	}
	if res.Lines[2].Page != 2 {
		t.Errorf("line[2] page = %d, want 2", res.Lines[2].Page)
	}
	if res.Lines[2].Seq != 2 {
		t.Errorf("line[2] seq = %d, want 2", res.Lines[2].Seq)
	}
	// Header draws only from page one.
	if len(res.Header) != 2 {
		t.Errorf("expected 2 header lines, got %d", len(res.Header))
	}
}
