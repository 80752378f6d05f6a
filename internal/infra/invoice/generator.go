package invoice

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/adapter"
)

var _ adapter.InvoiceGenerator = (*Generator)(nil)

// Generator renders activation invoices as PDF files under dir.
type Generator struct {
	dir string
}

func NewGenerator(dir string) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create invoice dir: %w", err)
	}
	return &Generator{dir: dir}, nil
}

// Generate writes invoice_<id>.pdf and returns its path.
func (g *Generator) Generate(r *model.ActivationRequest) (string, error) {
	b, err := Render(r)
	if err != nil {
		return "", err
	}
	path := filepath.Join(g.dir, fmt.Sprintf("invoice_%s.pdf", r.ID))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write invoice: %w", err)
	}
	return path, nil
}

// Render produces the invoice PDF bytes for a request.
func Render(r *model.ActivationRequest) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "AppleCare+ Activation Invoice", "", 1, "L", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Customer Name:", r.CustomerName},
		{"Customer Email:", r.CustomerEmail},
		{"Customer Mobile:", r.CustomerMobile},
		{"Dealer Name:", r.DealerName},
		{"Dealer Mobile:", r.DealerMobile},
		{"Model ID:", r.ModelID},
		{"Serial Number:", r.SerialNumber},
		{"Plan:", r.PlanName},
		{"Plan Code:", r.PlanPartCode},
		{"Activation Date:", r.DeviceActivationDate},
		{"Invoice Date:", time.Now().Format("2006-01-02")},
	}

	labelW, valueW := 50.0, 110.0
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(labelW, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(valueW, 8, row[1], "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}
