package research

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// RenderError is a structured artifact-write failure. File I/O
// problems halt the flow gracefully instead of panicking mid-report.
type RenderError struct {
	Stage string
	Path  string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s (%s): %v", e.Stage, e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Finalize writes the final report as Markdown and a rendered PDF into
// dir, returning both paths.
func Finalize(state ReportState, dir string) (mdPath, pdfPath string, err error) {
	if state.FinalReport == "" {
		return "", "", &RenderError{Stage: "report", Path: dir, Err: fmt.Errorf("empty final report")}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", &RenderError{Stage: "directory", Path: dir, Err: err}
	}

	mdPath = filepath.Join(dir, "final_report.md")
	if err := os.WriteFile(mdPath, []byte(state.FinalReport), 0o644); err != nil {
		return "", "", &RenderError{Stage: "markdown", Path: mdPath, Err: err}
	}

	pdfPath = filepath.Join(dir, "final_report.pdf")
	if err := renderPDF(state.FinalReport, pdfPath); err != nil {
		return "", "", &RenderError{Stage: "pdf", Path: pdfPath, Err: err}
	}
	return mdPath, pdfPath, nil
}

// renderPDF writes the report as a paginated A4 document. Markdown
// headers get a larger font; everything else is wrapped body text.
func renderPDF(report, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(report, "\n") {
		switch {
		case strings.HasPrefix(line, "# "):
			pdf.SetFont("Helvetica", "B", 16)
			pdf.MultiCell(0, 8, tr(strings.TrimPrefix(line, "# ")), "", "L", false)
		case strings.HasPrefix(line, "## "):
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 7, tr(strings.TrimPrefix(line, "## ")), "", "L", false)
		case strings.HasPrefix(line, "### "):
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 6, tr(strings.TrimPrefix(line, "### ")), "", "L", false)
		case line == "---":
			pdf.Ln(4)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
		}
	}

	return pdf.OutputFileAndClose(path)
}
