package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/appointment-availability-api/internal/dto"
	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
)

type weekStub struct {
	resp *dto.AvailabilityResponse
	err  error
	got  dto.AvailabilityQuery
}

func (s *weekStub) Week(ctx context.Context, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, bool, error) {
	s.got = q
	return s.resp, false, s.err
}

func sampleWeek() *dto.AvailabilityResponse {
	return &dto.AvailabilityResponse{
		ServiceID: "cut/basic",
		Timezone:  "Europe/Berlin",
		WeekStart: "2024-03-11",
		Days: []dto.DayView{
			{Date: "2024-03-11", Weekday: "Monday"},
			{Date: "2024-03-12", Weekday: "Tuesday", Slots: []dto.SlotView{
				{Start: time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC), Time: "09:00", EmployeeIDs: []string{"emp-a", "emp-b"}},
				{Start: time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC), Time: "11:00", EmployeeIDs: []string{"emp-a"}},
			}},
		},
	}
}

func TestExportServiceWeekCSV(t *testing.T) {
	stub := &weekStub{resp: sampleWeek()}
	svc := NewExportService(stub, nil, nil, nil)

	q := dto.AvailabilityQuery{Date: "2024-03-12", ServiceID: "cut/basic"}
	result, err := svc.Week(context.Background(), q, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, q, stub.got)
	assert.Equal(t, "availability_cut-basic_2024-03-11.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
	assert.Equal(t, "Date,Weekday,Time,Employees\n"+
		"2024-03-11,Monday,,\n"+
		"2024-03-12,Tuesday,09:00,\"emp-a, emp-b\"\n"+
		"2024-03-12,Tuesday,11:00,emp-a\n", string(result.Body))
}

func TestExportServiceWeekPDF(t *testing.T) {
	svc := NewExportService(&weekStub{resp: sampleWeek()}, nil, nil, nil)

	result, err := svc.Week(context.Background(), dto.AvailabilityQuery{Date: "2024-03-12", ServiceID: "cut"}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("%PDF-")))
}

func TestExportServicePropagatesAvailabilityErrors(t *testing.T) {
	svc := NewExportService(&weekStub{err: appErrors.InvalidInput("unknown service x")}, nil, nil, nil)
	_, err := svc.Week(context.Background(), dto.AvailabilityQuery{}, ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, format)

	format, err = ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, format)

	_, err = ParseExportFormat("xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}
