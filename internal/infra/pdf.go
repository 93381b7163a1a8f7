package infra

// pdf.go: proposal summary sheet using go-pdf/fpdf.
// A4 portrait with:
//   - proposal number, client, sales rep, date and status
//   - line item table with subtotals and total
//   - orders placed per supplier, when any
//   - the rendered history, newest first
//
// The file is written to storagePath/propuesta_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/historial"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerarResumenPDF renders the summary of p and returns the file path.
func GenerarResumenPDF(p *model.Propuesta, registros []model.RegistroEncomenda, lang i18n.Idioma, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("propuesta_%d_%s.pdf", p.NumeroPropuesta, lang))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	// core fonts are cp1252; the translator covers the Portuguese and Spanish accents
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	txt := func(s string) string { return tr(strings.ReplaceAll(s, "→", "->")) }
	label := func(key string) string { return txt(i18n.T(lang, key)) }

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, fmt.Sprintf("%s %s %d", label("doc_propuesta"), label("doc_numero"), p.NumeroPropuesta), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	cabecera := [][2]string{
		{label("doc_cliente"), txt(p.NombreCliente)},
		{label("doc_comercial"), txt(p.NombreComercial)},
		{label("doc_fecha"), p.FechaPropuesta.Format("02/01/2006")},
		{label("doc_estado"), txt(p.Estado.Etiqueta(lang))},
	}
	for _, kv := range cabecera {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW-35, 6, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.55
	col2 := contentW * 0.12
	col3 := contentW * 0.15
	col4 := contentW * 0.18

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, label("doc_articulo"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, label("doc_cantidad"), "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, label("doc_precio"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, label("doc_subtotal"), "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	total := decimal.Zero
	for _, a := range p.Articulos {
		nombre := a.Designacion
		if a.CodigoProducto != nil {
			nombre = *a.CodigoProducto + " " + nombre
		}
		if len([]rune(nombre)) > 60 {
			nombre = string([]rune(nombre)[:59]) + "..."
		}
		sub := a.PrecioUnitario.Mul(decimal.NewFromInt(int64(a.Cantidad)))
		total = total.Add(sub)
		pdf.CellFormat(col1, 5, txt(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", a.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, a.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, sub.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1+col2+col3, 7, label("doc_total")+":", "T", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, total.StringFixed(2), "T", 1, "R", false, 0, "")

	// ── Orders ───────────────────────────────────────────────────────────────
	if len(registros) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 7, label("doc_encomendas"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, r := range registros {
			linea := i18n.T(lang, "hist_encomenda", r.NumeroEncomenda, r.Proveedor, r.FechaEncomenda.Format("2006-01-02"))
			pdf.CellFormat(contentW, 5, txt(linea), "", 1, "L", false, 0, "")
		}
	}

	// ── History ──────────────────────────────────────────────────────────────
	if len(p.Historial) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 7, label("doc_historial"), "", 1, "L", false, 0, "")
		for _, l := range historial.Render(p.Historial) {
			pdf.SetFont("Helvetica", "B", 8)
			pdf.CellFormat(contentW, 5, txt(l.Fecha.Format("02/01/2006 15:04")+"  "+l.Actor), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 8)
			if l.Texto != "" {
				pdf.MultiCell(contentW, 4, txt(l.Texto), "", "L", false)
			}
			for _, punto := range l.Puntos {
				pdf.MultiCell(contentW, 4, txt("- "+punto), "", "L", false)
			}
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
