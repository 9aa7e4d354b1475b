package services

import (
	"bytes"
	"fmt"
	"kos-marketplace-server/models"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt is the read-only summary of an accepted book, returned as JSON or
// rendered to PDF for download.
type Receipt struct {
	ReceiptNumber string    `json:"receiptNumber"`
	RenterName    string    `json:"renterName"`
	KosName       string    `json:"kosName"`
	KosAddress    string    `json:"kosAddress"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Months        int       `json:"months"`
	PricePerMonth float64   `json:"pricePerMonth"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	IssuedAt      time.Time `json:"issuedAt"`
}

// MonthsBetween charges any started 30-day block as a full month.
func MonthsBetween(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24
	months := int(math.Ceil(days / 30))
	if months < 1 {
		months = 1
	}
	return months
}

// BuildReceipt assembles the receipt for an accepted book. The book must be
// loaded with its Kos and User relations.
func BuildReceipt(book models.Book) Receipt {
	months := MonthsBetween(book.StartDate, book.EndDate)

	r := Receipt{
		ReceiptNumber: fmt.Sprintf("RCPT-%06d", book.ID),
		StartDate:     book.StartDate,
		EndDate:       book.EndDate,
		Months:        months,
		Status:        book.Status,
		IssuedAt:      time.Now(),
	}
	if book.User != nil {
		r.RenterName = book.User.Name
	}
	if book.Kos != nil {
		r.KosName = book.Kos.Name
		r.KosAddress = book.Kos.Address
		r.PricePerMonth = book.Kos.PricePerMonth
		r.Total = float64(months) * book.Kos.PricePerMonth
	}
	return r
}

// RenderReceiptPDF renders the receipt as a single-page A4 document.
func RenderReceiptPDF(r Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Booking Receipt")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Receipt No: %s", r.ReceiptNumber))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Issued: %s", r.IssuedAt.Format("02 Jan 2006")))
	pdf.Ln(12)

	rows := [][2]string{
		{"Renter", r.RenterName},
		{"Kos", r.KosName},
		{"Address", r.KosAddress},
		{"Period", fmt.Sprintf("%s - %s", r.StartDate.Format("02 Jan 2006"), r.EndDate.Format("02 Jan 2006"))},
		{"Duration", fmt.Sprintf("%d month(s)", r.Months)},
		{"Price / month", fmt.Sprintf("Rp %.2f", r.PricePerMonth)},
		{"Status", r.Status},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 10, fmt.Sprintf("Total: Rp %.2f", r.Total))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
