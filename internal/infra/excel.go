package infra

import (
	"fmt"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// FilaExportacion is one proposal row of the list export.
type FilaExportacion struct {
	Propuesta *model.Propuesta
	Alerta    string // rendered alert reason, empty when none
}

var columnasExportacion = []string{
	"doc_numero", "doc_cliente", "doc_comercial", "doc_fecha",
	"doc_estado", "doc_articulo", "doc_total", "doc_alertas",
}

// ExportarPropuestasXLSX builds the proposal list workbook. The caller owns
// the returned file and must Close it.
func ExportarPropuestasXLSX(filas []FilaExportacion, lang i18n.Idioma) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := i18n.T(lang, "doc_propuesta")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	headStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, key := range columnasExportacion {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, i18n.T(lang, key))
		f.SetCellStyle(sheet, cell, cell, headStyle)
	}

	total := decimal.Zero
	for i, fila := range filas {
		p := fila.Propuesta
		row := i + 2
		valor := decimal.Zero
		for _, a := range p.Articulos {
			valor = valor.Add(a.PrecioUnitario.Mul(decimal.NewFromInt(int64(a.Cantidad))))
		}
		total = total.Add(valor)
		importe, _ := valor.Round(2).Float64()

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.NumeroPropuesta)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.NombreCliente)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.NombreComercial)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.FechaPropuesta.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.Estado.Etiqueta(lang))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), len(p.Articulos))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), importe)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), fila.Alerta)
	}

	sumRow := len(filas) + 2
	sumStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	totalF, _ := total.Round(2).Float64()
	f.SetCellValue(sheet, fmt.Sprintf("A%d", sumRow), i18n.T(lang, "doc_total"))
	f.SetCellValue(sheet, fmt.Sprintf("G%d", sumRow), totalF)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", sumRow), fmt.Sprintf("H%d", sumRow), sumStyle)

	for i, w := range []float64{8, 30, 20, 12, 26, 8, 14, 40} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}
	return f, nil
}
