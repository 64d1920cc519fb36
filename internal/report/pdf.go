package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"example.com/dltgate/internal/rules"
)

// PDFOptions controls rendering of the acceptance PDF.
type PDFOptions struct {
	Language Language
	// ManifestHash, when set, is printed and embedded as a QR code so
	// the printed report can be matched to its evidence manifest.
	ManifestHash string
}

// SaveAcceptancePDF renders the given acceptance report into a PDF document.
func SaveAcceptancePDF(rep rules.AcceptanceReport, out string) error {
	return SaveAcceptancePDFOptions(rep, PDFOptions{}, out)
}

func SaveAcceptancePDFOptions(rep rules.AcceptanceReport, opts PDFOptions, out string) error {
	tr := NewTranslator(opts.Language)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(tr.T("report.title"), true)
	pdf.SetAuthor("dltctl", false)
	pdf.SetCreator("dltctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr.T("report.title"))
	pdf.Ln(12)

	addSummarySection(pdf, tr, rep)
	addRuleSummarySection(pdf, tr, rep.Findings)
	addFindingsSection(pdf, tr, rep.Findings)
	if opts.ManifestHash != "" {
		if err := addManifestSection(pdf, tr, opts.ManifestHash); err != nil {
			return err
		}
	}

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addSummarySection(pdf *gofpdf.Fpdf, tr Translator, rep rules.AcceptanceReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr.T("report.summary"))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: tr.T("report.total"), value: strconv.Itoa(rep.Summary.Total)},
		{label: tr.T("report.errors"), value: strconv.Itoa(rep.Summary.Errors)},
		{label: tr.T("report.warnings"), value: strconv.Itoa(rep.Summary.Warnings)},
		{label: tr.T("report.overall"), value: passLabel(tr, rep.Summary.Pass)},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

type ruleSummaryRow struct {
	ruleId   string
	severity rules.Severity
	count    int
}

func addRuleSummarySection(pdf *gofpdf.Fpdf, tr Translator, findings []rules.Diagnostic) {
	byRule := make(map[string]*ruleSummaryRow)
	for _, d := range findings {
		row, ok := byRule[d.RuleId]
		if !ok {
			row = &ruleSummaryRow{ruleId: d.RuleId, severity: d.Severity}
			byRule[d.RuleId] = row
		}
		row.count++
	}
	if len(byRule) == 0 {
		return
	}
	rows := make([]*ruleSummaryRow, 0, len(byRule))
	for _, row := range byRule {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ruleId < rows[j].ruleId })

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr.T("report.rules"))
	pdf.Ln(9)

	headers := []string{tr.T("report.rule"), tr.T("report.severity"), tr.T("report.findings")}
	widths := []float64{90, 45, 45}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		renderTableRow(pdf, widths, []string{
			row.ruleId,
			severityLabel(row.severity),
			strconv.Itoa(row.count),
		}, 5.0)
	}
	pdf.Ln(4)
}

func addFindingsSection(pdf *gofpdf.Fpdf, tr Translator, findings []rules.Diagnostic) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr.T("report.details"))
	pdf.Ln(9)

	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr.T("report.none"), "", "L", false)
		return
	}

	for i, d := range findings {
		pdf.SetFont("Helvetica", "B", 10)
		header := fmt.Sprintf("%d. %s (%s)", i+1, d.RuleId, severityLabel(d.Severity))
		pdf.MultiCell(0, 5, header, "", "L", false)

		if msg := strings.TrimSpace(d.Message); msg != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, msg, "", "L", false)
		}

		meta := findingMetadata(tr, d)
		if meta != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 4, meta, "", "L", false)
		}

		if len(d.Refs) > 0 {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 4, tr.T("report.refs")+": "+strings.Join(d.Refs, ", "), "", "L", false)
		}

		pdf.Ln(2)
	}
}

func addManifestSection(pdf *gofpdf.Fpdf, tr Translator, hash string) error {
	png, err := ManifestHashToQR(hash, 256)
	if err != nil {
		return err
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr.T("report.manifest"))
	pdf.Ln(8)
	pdf.SetFont("Courier", "", 9)
	pdf.MultiCell(0, 4, hash, "", "L", false)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("manifest-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("manifest-qr", pdf.GetX(), pdf.GetY()+2, 30, 30, false, opts, 0, "")
	pdf.Ln(36)
	return nil
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func passLabel(tr Translator, pass bool) string {
	if pass {
		return tr.T("report.pass")
	}
	return tr.T("report.fail")
}

func severityLabel(sev rules.Severity) string {
	if s := strings.TrimSpace(string(sev)); s != "" {
		return s
	}
	return "UNKNOWN"
}

func findingMetadata(tr Translator, d rules.Diagnostic) string {
	parts := make([]string, 0, 6)
	if !d.Ts.IsZero() {
		parts = append(parts, d.Ts.Format(time.RFC3339))
	}
	if d.File != "" {
		parts = append(parts, d.File)
	}
	if d.MessageIndex != 0 || d.Offset != "" {
		parts = append(parts, fmt.Sprintf("%s %d", tr.T("report.message"), d.MessageIndex))
	}
	if d.Offset != "" {
		parts = append(parts, tr.T("report.offset")+" "+d.Offset)
	}
	if d.ApplicationID != "" {
		parts = append(parts, d.ApplicationID+"/"+d.ContextID)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " | ")
}
