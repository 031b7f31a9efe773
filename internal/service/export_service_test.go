package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhub/roster-api/internal/dto"
	appErrors "github.com/rosterhub/roster-api/pkg/errors"
)

type gridProviderStub struct {
	grid *dto.ScheduleGrid
}

func (s *gridProviderStub) Grid(_ context.Context) (*dto.ScheduleGrid, bool, error) {
	return s.grid, false, nil
}

func sampleGrid() *dto.ScheduleGrid {
	return &dto.ScheduleGrid{
		Days: []dto.ScheduleDay{
			{
				Date:    "2024-06-15",
				Display: "Sat, Jun 15",
				Assigned: []dto.MemberSummary{
					{ID: "1", Name: "Alice Cooper", Email: "alice@example.com"},
					{ID: "2", Name: "Bob Reed", Email: "bob@example.com"},
				},
				Pending: true,
			},
			{Date: "2024-06-22", Display: "Sat, Jun 22"},
		},
	}
}

func TestExportCSV(t *testing.T) {
	svc := NewExportService(&gridProviderStub{grid: sampleGrid()}, nil)

	file, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	content := string(file.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Day,Assigned,Volunteers,Status", lines[0])
	assert.Contains(t, lines[1], "Alice Cooper; Bob Reed")
	assert.Contains(t, lines[1], "Pending")
	assert.Contains(t, lines[2], "Unassigned")
}

func TestExportDefaultsToCSV(t *testing.T) {
	svc := NewExportService(&gridProviderStub{grid: sampleGrid()}, nil)

	file, err := svc.Export(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
}

func TestExportPDF(t *testing.T) {
	svc := NewExportService(&gridProviderStub{grid: sampleGrid()}, nil)

	file, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&gridProviderStub{grid: sampleGrid()}, nil)

	_, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
