// Package document renders service-request receipts as PDF.
package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Receipt carries the fields printed on a request receipt.
type Receipt struct {
	Numero          string
	Fecha           string
	TipoSolicitud   string
	TipoPago        string
	Estado          string
	MontoTotal      float64
	MontoPagado     float64
	MontoPendiente  float64
	Cedula          string
	NombreCompleto  string
	Correo          string
	Barrio          string
	CallePrincipal  string
	MedidorCodigo   string
	Cuotas          []ReceiptInstallment
}

// ReceiptInstallment is one deferred installment line.
type ReceiptInstallment struct {
	FechaPago string
	Monto     float64
	Estado    string
}

// Renderer produces PDF receipts for service requests.
type Renderer struct{}

// NewRenderer constructs a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render creates the receipt PDF and returns its bytes.
func (r *Renderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.Numero == "" {
		return nil, fmt.Errorf("receipt requires a request number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "JAAPA - COMPROBANTE DE SOLICITUD", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Solicitud No. %s", receipt.Numero), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	writeRow := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 7, label, "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(125, 7, value, "1", 1, "", false, 0, "")
	}

	writeRow("Fecha", receipt.Fecha)
	writeRow("Tipo de servicio", receipt.TipoSolicitud)
	writeRow("Tipo de pago", receipt.TipoPago)
	writeRow("Estado", receipt.Estado)
	writeRow("Solicitante", receipt.NombreCompleto)
	writeRow("Cédula", receipt.Cedula)
	writeRow("Correo", receipt.Correo)
	writeRow("Barrio", receipt.Barrio)
	writeRow("Calle principal", receipt.CallePrincipal)
	if receipt.MedidorCodigo != "" {
		writeRow("Medidor", receipt.MedidorCodigo)
	}
	writeRow("Monto total", fmt.Sprintf("$ %.2f", receipt.MontoTotal))
	writeRow("Monto pagado", fmt.Sprintf("$ %.2f", receipt.MontoPagado))
	writeRow("Monto pendiente", fmt.Sprintf("$ %.2f", receipt.MontoPendiente))

	if len(receipt.Cuotas) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "PLAN DE PAGOS DIFERIDOS", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, 7, "Fecha de pago", "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 7, "Monto", "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 7, "Estado", "1", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, cuota := range receipt.Cuotas {
			pdf.CellFormat(60, 7, cuota.FechaPago, "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 7, fmt.Sprintf("$ %.2f", cuota.Monto), "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 7, cuota.Estado, "1", 1, "C", false, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
