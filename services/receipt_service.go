package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/skip2/go-qrcode"
)

// ReceiptService renders printable intake receipts
type ReceiptService struct {
	publicURL string
	shopName  string
}

// NewReceiptService creates a ReceiptService; publicURL is the customer-facing site
func NewReceiptService(publicURL string) *ReceiptService {
	return &ReceiptService{publicURL: publicURL, shopName: "Repair Shop"}
}

// TrackingURL is the link encoded in the receipt QR code
func (s *ReceiptService) TrackingURL(orderID uint) string {
	return fmt.Sprintf("%s/client/orders/%d", s.publicURL, orderID)
}

// Render produces the receipt PDF for a fully joined order
func (s *ReceiptService) Render(order *models.RepairOrder) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	// Core fonts are cp1252; characters outside it are replaced
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s - Repair Order #%d", s.shopName, order.ID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Accepted: "+order.DateCreated.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	if order.Status != nil {
		pdf.CellFormat(0, 6, tr("Status: "+order.Status.Name), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
	}
	line := func(label, value string) {
		pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, tr(value), "", "L", false)
	}

	section("Client")
	if order.Client != nil {
		line("Name:", order.Client.Name)
		line("Phone:", order.Client.Phone)
	}
	pdf.Ln(2)

	section("Device")
	if order.Device != nil {
		if order.Device.Type != nil {
			line("Type:", order.Device.Type.Name)
		}
		if order.Device.Brand != nil {
			line("Brand:", order.Device.Brand.Name)
		}
		line("Model:", order.Device.Model)
		if order.Device.SerialNumber != "" {
			line("Serial number:", order.Device.SerialNumber)
		}
	}
	line("Problem:", order.ProblemDescription)
	pdf.Ln(2)

	if len(order.Services) > 0 {
		section("Services")
		for _, svc := range order.Services {
			name := fmt.Sprintf("Service %d", svc.ServiceID)
			if svc.Service != nil {
				name = svc.Service.Name
			}
			pdf.CellFormat(140, 6, tr(name), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, svc.LineTotal().StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(140, 7, "Total", "T", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, order.ServicesTotal().StringFixed(2), "T", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.Ln(2)
	}
	if order.CostEstimate.Valid {
		line("Estimate:", order.CostEstimate.Decimal.StringFixed(2))
	}

	qr, err := qrcode.Encode(s.TrackingURL(order.ID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tracking QR: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("tracking_qr", opts, bytes.NewReader(qr))

	pdf.Ln(4)
	y := pdf.GetY()
	pdf.ImageOptions("tracking_qr", 15, y, 35, 35, false, opts, 0, "")
	pdf.SetXY(55, y+10)
	pdf.MultiCell(0, 6, "Scan to track your repair:\n"+s.TrackingURL(order.ID), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
