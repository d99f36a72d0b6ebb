package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/xuri/excelize/v2"
)

const queueSheet = "Queues"

var queueHeadings = []any{
	"Id", "Date", "Customer", "Status", "Payment Method", "Products", "Total Discount", "Grand Total",
}

type QueueExport struct {
	FileName string `json:"file_name"`
	Rows     int    `json:"rows"`
	Url      string `json:"url,omitempty"`
	Data     []byte `json:"-"`
}

// BuildQueueWorkbook writes one row per queue, dates in loc.
func BuildQueueWorkbook(queues []models.Queue, loc *time.Location) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", queueSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(queueSheet, "A1", &queueHeadings); err != nil {
		_ = f.Close()
		return nil, err
	}
	for i, q := range queues {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		row := []any{
			q.ID,
			q.Date.In(loc).Format("2006-01-02 15:04"),
			q.CustomerName(),
			q.Status.String(),
			q.PaymentMethod.String(),
			productSummary(q),
			q.TotalDiscount(),
			q.GrandTotalPrice().InexactFloat64(),
		}
		if err := f.SetSheetRow(queueSheet, cell, &row); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

func productSummary(q models.Queue) string {
	names := make([]string, 0, len(q.ProductOrders))
	for _, o := range q.ProductOrders {
		names = append(names, fmt.Sprintf("%s x%s", o.ProductName, o.Quantity.String()))
	}
	return strings.Join(names, ", ")
}

// ExportQueues renders queues to xlsx and, when upload is set, stores the
// file under exports/queues/ in GCS_BUCKET.
func ExportQueues(ctx context.Context, queues []models.Queue, loc *time.Location, upload bool) (*QueueExport, error) {
	f, err := BuildQueueWorkbook(queues, loc)
	if err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	export := &QueueExport{
		FileName: fmt.Sprintf("queues-%s.xlsx", uuid.NewString()),
		Rows:     len(queues),
		Data:     buf.Bytes(),
	}
	if upload {
		url, err := utils.UploadBytesToGCS(ctx, "exports/queues/"+export.FileName, export.Data, utils.ContentTypeXlsx)
		if err != nil {
			return nil, err
		}
		export.Url = url
	}
	return export, nil
}
