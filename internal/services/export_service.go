package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ExportService renders read-only reports from the same tables the
// reconciliation engine writes. It never mutates anything.
type ExportService struct {
	paymentRepo          repository.PaymentRepository
	collectorPaymentRepo repository.CollectorPaymentRepository
	collectionRepo       repository.CollectionRepository
	creditRepo           repository.CreditRepository
	deductionRepo        repository.DeductionRepository
	userRepo             repository.UserRepository
}

func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{
		paymentRepo:          repos.Payment,
		collectorPaymentRepo: repos.CollectorPayment,
		collectionRepo:       repos.Collection,
		creditRepo:           repos.Credit,
		deductionRepo:        repos.Deduction,
		userRepo:             repos.User,
	}
}

// SettlementWorkbook builds the period settlement workbook: one sheet of
// farmer payments, one of collector payments whose window overlaps the period.
func (s *ExportService) SettlementWorkbook(ctx context.Context, periodStr string) ([]byte, string, error) {
	period, err := models.ParsePeriod(periodStr)
	if err != nil {
		return nil, "", NewValidationError("period", "must be formatted YYYY-MM")
	}

	payments, err := s.paymentRepo.FindByPeriod(ctx, period.String())
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	farmerSheet := "Farmer Payments"
	_ = f.SetSheetName("Sheet1", farmerSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Reference", "Farmer", "Period", "Pending", "Deductions", "Credit Used", "Collector Fee", "Net", "Status", "Paid At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(farmerSheet, cell, h)
		_ = f.SetCellStyle(farmerSheet, cell, cell, headerStyle)
	}

	for row, p := range payments {
		values := []interface{}{
			p.GUID,
			p.Farmer.FullName,
			p.Period,
			p.PendingAmount,
			p.TotalDeductions,
			p.CreditUsed,
			p.CollectorFee,
			p.NetPayment,
			p.Status,
			"",
		}
		if p.PaidAt != nil {
			values[9] = p.PaidAt.Format("2006-01-02 15:04")
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(farmerSheet, cell, v)
		}
	}

	collectorSheet := "Collector Payments"
	_, _ = f.NewSheet(collectorSheet)

	query := repository.NewListQuery()
	query.PerPage = 1000
	collectorPayments, _, err := s.collectorPaymentRepo.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	cHeaders := []string{"Reference", "Collector", "Window Start", "Window End", "Liters", "Fee", "Penalty", "Net", "Status"}
	for i, h := range cHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(collectorSheet, cell, h)
		_ = f.SetCellStyle(collectorSheet, cell, cell, headerStyle)
	}

	row := 2
	for _, cp := range collectorPayments {
		if cp.PeriodEnd.Before(period.Start()) || !cp.PeriodStart.Before(period.End()) {
			continue
		}
		values := []interface{}{
			cp.GUID,
			cp.Collector.FullName,
			cp.PeriodStart.Format("2006-01-02"),
			cp.PeriodEnd.Format("2006-01-02"),
			cp.TotalLiters,
			cp.TotalFee,
			cp.TotalPenalty,
			cp.NetEarnings(),
			cp.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(collectorSheet, cell, v)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("settlement_%s.xlsx", period.String())
	return buf.Bytes(), filename, nil
}

// FarmerStatement renders a farmer's period statement as PDF: collections,
// deductions applied, credit activity and the bottom line.
func (s *ExportService) FarmerStatement(ctx context.Context, farmerID uint, periodStr string) ([]byte, string, error) {
	period, err := models.ParsePeriod(periodStr)
	if err != nil {
		return nil, "", NewValidationError("period", "must be formatted YYYY-MM")
	}

	farmer, err := s.userRepo.FindByID(ctx, farmerID)
	if err != nil {
		return nil, "", ErrNotFound
	}

	payment, err := s.paymentRepo.FindByFarmerAndPeriod(ctx, farmerID, period.String(), false)
	if err != nil {
		return nil, "", ErrNotFound
	}

	collections, err := s.collectionRepo.FindByPaymentID(ctx, payment.ID, false)
	if err != nil {
		return nil, "", err
	}
	applications, err := s.deductionRepo.FindApplicationsForFarmer(ctx, farmerID, period.Start(), period.End())
	if err != nil {
		return nil, "", err
	}
	consumptions, err := s.creditRepo.FindConsumptionsByPayment(ctx, payment.ID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Farmer Statement")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Farmer:")
	pdf.Cell(80, 8, farmer.FullName)
	pdf.Ln(6)
	pdf.Cell(60, 8, "Member Code:")
	pdf.Cell(80, 8, farmer.MemberCode)
	pdf.Ln(6)
	pdf.Cell(60, 8, "Period:")
	pdf.Cell(80, 8, period.String())
	pdf.Ln(6)
	pdf.Cell(60, 8, "Reference:")
	pdf.Cell(80, 8, payment.GUID)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Collections")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, c := range collections {
		pdf.Cell(40, 6, c.CollectionDate.Format("2006-01-02"))
		pdf.Cell(40, 6, fmt.Sprintf("%.3f L", c.Liters))
		pdf.Cell(40, 6, fmt.Sprintf("@ %.2f", c.RatePerLiter))
		pdf.Cell(40, 6, fmt.Sprintf("%.2f", c.TotalAmount))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Deductions")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, a := range applications {
		pdf.Cell(60, 6, a.Deduction.Description)
		pdf.Cell(40, 6, a.DueDate.Format("2006-01-02"))
		pdf.Cell(40, 6, fmt.Sprintf("%.2f", a.Amount))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	if len(consumptions) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 10, "Credit Repayments")
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 10)
		for _, con := range consumptions {
			pdf.Cell(60, 6, fmt.Sprintf("Credit line #%d", con.CreditTransactionID))
			pdf.Cell(40, 6, fmt.Sprintf("%.2f", con.Amount))
			pdf.Ln(6)
		}
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 6, "Gross Earnings:")
	pdf.Cell(40, 6, fmt.Sprintf("%.2f", payment.PendingAmount))
	pdf.Ln(6)
	pdf.Cell(60, 6, "Deductions:")
	pdf.Cell(40, 6, fmt.Sprintf("-%.2f", payment.TotalDeductions))
	pdf.Ln(6)
	pdf.Cell(60, 6, "Credit Repaid:")
	pdf.Cell(40, 6, fmt.Sprintf("-%.2f", payment.CreditUsed))
	pdf.Ln(6)
	pdf.Cell(60, 6, "Collector Fee:")
	pdf.Cell(40, 6, fmt.Sprintf("-%.2f", payment.CollectorFee))
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 6, "Net Payment:")
	pdf.Cell(40, 6, fmt.Sprintf("%.2f", payment.NetPayment))
	pdf.Ln(6)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("statement_%d_%s.pdf", farmerID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
