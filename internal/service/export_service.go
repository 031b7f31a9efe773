package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rosterhub/roster-api/internal/dto"
	appErrors "github.com/rosterhub/roster-api/pkg/errors"
	"github.com/rosterhub/roster-api/pkg/export"
)

// ExportFile is a rendered schedule export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type gridProvider interface {
	Grid(ctx context.Context) (*dto.ScheduleGrid, bool, error)
}

// ExportService renders the schedule grid as downloadable CSV or PDF.
type ExportService struct {
	schedules gridProvider
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService instance.
func NewExportService(schedules gridProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedules: schedules,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		now:       time.Now,
	}
}

// Export renders the current schedule grid in the requested format.
func (s *ExportService) Export(ctx context.Context, format string) (*ExportFile, error) {
	grid, _, err := s.schedules.Grid(ctx)
	if err != nil {
		return nil, err
	}

	dataset := buildScheduleDataset(grid)
	stamp := s.now().Format("20060102")

	switch strings.ToLower(format) {
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("schedule-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "Volunteer Schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("schedule-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func buildScheduleDataset(grid *dto.ScheduleGrid) export.Dataset {
	rows := make([]map[string]string, 0, len(grid.Days))
	for _, day := range grid.Days {
		names := make([]string, 0, len(day.Assigned))
		for _, m := range day.Assigned {
			names = append(names, m.Name)
		}
		status := "Notified"
		if day.Pending {
			status = "Pending"
		}
		if len(day.Assigned) == 0 {
			status = "Unassigned"
		}
		rows = append(rows, map[string]string{
			"Date":       day.Date,
			"Day":        day.Display,
			"Assigned":   strings.Join(names, "; "),
			"Volunteers": fmt.Sprintf("%d", len(day.Assigned)),
			"Status":     status,
		})
	}
	return export.Dataset{
		Headers: []string{"Date", "Day", "Assigned", "Volunteers", "Status"},
		Rows:    rows,
	}
}
