package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	readiness "plantsched/internal/readiness/domain"
)

// BuildSchedulePDF renders a minimal PDF for a revision schedule proposal.
func BuildSchedulePDF(schedule *readiness.RevisionSchedule) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Revision Schedule Proposal")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Plant: %s", schedule.PlantID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Schedule Date: %s", schedule.ScheduleDate.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", schedule.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(20, 6, "Block", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Forecast (MW)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Scheduled (MW)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Actual (MW)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for i := 1; i <= schedule.TotalBlocks; i++ {
		block := schedule.Blocks[readiness.BlockKey(i)]
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", block.Block), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, block.Time, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", block.Forecast), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", block.Scheduled), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", block.Actual), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildScheduleXLSX renders a minimal XLSX for a revision schedule proposal.
func BuildScheduleXLSX(schedule *readiness.RevisionSchedule) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	blocksSheet := "blocks"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(blocksSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Revision Schedule Proposal")
	_ = f.SetCellValue(summarySheet, "A3", "Plant")
	_ = f.SetCellValue(summarySheet, "B3", schedule.PlantID)
	_ = f.SetCellValue(summarySheet, "A4", "Schedule Date")
	_ = f.SetCellValue(summarySheet, "B4", schedule.ScheduleDate.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "Generated")
	_ = f.SetCellValue(summarySheet, "B5", schedule.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A6", "Blocks")
	_ = f.SetCellValue(summarySheet, "B6", schedule.TotalBlocks)

	_ = f.SetCellValue(blocksSheet, "A1", "Block")
	_ = f.SetCellValue(blocksSheet, "B1", "Time")
	_ = f.SetCellValue(blocksSheet, "C1", "Forecast (MW)")
	_ = f.SetCellValue(blocksSheet, "D1", "Scheduled (MW)")
	_ = f.SetCellValue(blocksSheet, "E1", "Actual (MW)")
	for i := 1; i <= schedule.TotalBlocks; i++ {
		block := schedule.Blocks[readiness.BlockKey(i)]
		row := i + 1
		_ = f.SetCellValue(blocksSheet, fmt.Sprintf("A%d", row), block.Block)
		_ = f.SetCellValue(blocksSheet, fmt.Sprintf("B%d", row), block.Time)
		_ = f.SetCellValue(blocksSheet, fmt.Sprintf("C%d", row), block.Forecast)
		_ = f.SetCellValue(blocksSheet, fmt.Sprintf("D%d", row), block.Scheduled)
		_ = f.SetCellValue(blocksSheet, fmt.Sprintf("E%d", row), block.Actual)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
