// File: services/persistence/sheets.go
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"moveline/models"
	"moveline/services/validation"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Worksheet names inside the booking spreadsheet.
const (
	BookingsSheet  = "Bookings"
	CustomersSheet = "Customers"
	CallLogSheet   = "Call_Log"
)

const sheetTimeLayout = "2006-01-02 15:04:05"

type column struct {
	header string
	field  func(r *models.Record) *string
}

// bookingColumns follow the three fixed leading columns (id, created, status).
var bookingColumns = []column{
	{"Call SID", func(r *models.Record) *string { return &r.CallSID }},
	{"Customer Name", func(r *models.Record) *string { return &r.Name }},
	{"Phone", func(r *models.Record) *string { return &r.Phone }},
	{"Email", func(r *models.Record) *string { return &r.Email }},
	{"Move Type", func(r *models.Record) *string { return &r.MoveType }},
	{"Property Type", func(r *models.Record) *string { return &r.PropertyType }},
	{"Pickup Address", func(r *models.Record) *string { return &r.PickupAddress }},
	{"Pickup Type", func(r *models.Record) *string { return &r.PickupType }},
	{"Pickup Rooms", func(r *models.Record) *string { return &r.PickupRooms }},
	{"Dropoff Address", func(r *models.Record) *string { return &r.DropoffAddress }},
	{"Dropoff Type", func(r *models.Record) *string { return &r.DropoffType }},
	{"Dropoff Rooms", func(r *models.Record) *string { return &r.DropoffRooms }},
	{"Stairs", func(r *models.Record) *string { return &r.Stairs }},
	{"Move Date", func(r *models.Record) *string { return &r.MoveDate }},
	{"Move Time", func(r *models.Record) *string { return &r.MoveTime }},
	{"Packing Service", func(r *models.Record) *string { return &r.Packing }},
	{"Special Items", func(r *models.Record) *string { return &r.SpecialItems }},
	{"Total Distance (miles)", func(r *models.Record) *string { return &r.DistanceMiles }},
	{"Movers", func(r *models.Record) *string { return &r.Movers }},
	{"Estimated Hours", func(r *models.Record) *string { return &r.EstimatedHours }},
	{"Hourly Rate", func(r *models.Record) *string { return &r.HourlyRate }},
	{"Base Price", func(r *models.Record) *string { return &r.BasePrice }},
	{"Mileage Cost", func(r *models.Record) *string { return &r.MileageCost }},
	{"Packing Cost", func(r *models.Record) *string { return &r.PackingCost }},
	{"Total Estimate", func(r *models.Record) *string { return &r.TotalEstimate }},
	{"Outcome", func(r *models.Record) *string { return &r.Outcome }},
	{"Confirmation Sent", func(r *models.Record) *string { return &r.ConfirmationSent }},
}

const bookingLeadColumns = 3

var (
	customerHeaders = []string{"Customer ID", "Name", "Phone", "Email", "Last Booking ID", "First Contact Date"}
	callLogHeaders  = []string{"Call ID", "Call SID", "Phone Number", "Direction", "Status", "Last Step", "Outcome", "Record ID", "Started At", "Ended At"}
)

func bookingHeaders() []string {
	out := []string{"Booking ID", "Date Created", "Status"}
	for _, c := range bookingColumns {
		out = append(out, c.header)
	}
	return out
}

// columnIndex returns the zero-based index of a booking header.
func columnIndex(header string) int {
	for i, c := range bookingColumns {
		if c.header == header {
			return bookingLeadColumns + i
		}
	}
	return -1
}

// columnLetter converts a zero-based column index into A1 notation (0 -> A, 26 -> AA).
func columnLetter(i int) string {
	out := ""
	for i >= 0 {
		out = string(rune('A'+i%26)) + out
		i = i/26 - 1
	}
	return out
}

func lastColumn(width int) string {
	return columnLetter(width - 1)
}

func recordToRow(r models.Record) []interface{} {
	row := []interface{}{r.ID, r.CreatedAt.Format(sheetTimeLayout), string(r.Status)}
	for _, c := range bookingColumns {
		row = append(row, *c.field(&r))
	}
	return row
}

func rowToRecord(row []interface{}) models.Record {
	var r models.Record
	r.ID = cell(row, 0)
	r.CreatedAt, _ = time.Parse(sheetTimeLayout, cell(row, 1))
	r.Status = models.RecordStatus(cell(row, 2))
	for i, c := range bookingColumns {
		*c.field(&r) = cell(row, bookingLeadColumns+i)
	}
	return r
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}

func stringsToRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

// SheetsRecorder keeps bookings, customers and the call log in one Google
// spreadsheet, one worksheet each.
type SheetsRecorder struct {
	values  *sheets.SpreadsheetsValuesService
	sheetID string

	// mu serializes read-modify-write sequences on the spreadsheet.
	mu sync.Mutex
}

// NewSheetsService builds a Sheets client from a service-account credentials file.
func NewSheetsService(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*sheets.Service, error) {
	if credentialsFile != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(credentialsFile)}, opts...)
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewSheetsService: failed to create sheets client: %w", err)
	}
	return srv, nil
}

func NewSheetsRecorder(srv *sheets.Service, sheetID string) *SheetsRecorder {
	return &SheetsRecorder{values: srv.Spreadsheets.Values, sheetID: sheetID}
}

// EnsureHeaders writes the header row of every worksheet that has none.
func (s *SheetsRecorder) EnsureHeaders(ctx context.Context) error {
	for name, headers := range map[string][]string{
		BookingsSheet:  bookingHeaders(),
		CustomersSheet: customerHeaders,
		CallLogSheet:   callLogHeaders,
	} {
		rng := fmt.Sprintf("%s!A1:%s1", name, lastColumn(len(headers)))
		resp, err := s.values.Get(s.sheetID, rng).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("EnsureHeaders: failed to read %s: %w", name, err)
		}
		if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
			continue
		}
		vr := &sheets.ValueRange{Values: [][]interface{}{stringsToRow(headers)}}
		if _, err := s.values.Update(s.sheetID, rng, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("EnsureHeaders: failed to write %s headers: %w", name, err)
		}
	}
	return nil
}

func (s *SheetsRecorder) appendRow(ctx context.Context, sheet string, row []interface{}) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := s.values.Append(s.sheetID, sheet+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// readRows returns every data row of sheet, header excluded.
func (s *SheetsRecorder) readRows(ctx context.Context, sheet string, width int) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!A2:%s", sheet, lastColumn(width))
	resp, err := s.values.Get(s.sheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *SheetsRecorder) readBookings(ctx context.Context) ([]models.Record, error) {
	rows, err := s.readRows(ctx, BookingsSheet, bookingLeadColumns+len(bookingColumns))
	if err != nil {
		return nil, err
	}
	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToRecord(row))
	}
	return out, nil
}

func (s *SheetsRecorder) AppendBooking(ctx context.Context, r models.Record) error {
	r.Status = models.StatusBooking
	if err := s.appendRow(ctx, BookingsSheet, recordToRow(r)); err != nil {
		return fmt.Errorf("AppendBooking: failed to append booking %s: %w", r.ID, err)
	}
	return nil
}

func (s *SheetsRecorder) AppendPartialLead(ctx context.Context, r models.Record) error {
	r.Status = models.StatusPartialLead
	if err := s.appendRow(ctx, BookingsSheet, recordToRow(r)); err != nil {
		return fmt.Errorf("AppendPartialLead: failed to append lead %s: %w", r.ID, err)
	}
	return nil
}

func (s *SheetsRecorder) LogCall(ctx context.Context, entry models.CallLog) error {
	row := []interface{}{
		entry.ID,
		entry.CallSID,
		entry.Phone,
		entry.Direction,
		entry.Status,
		entry.LastStep,
		entry.Outcome,
		entry.RecordID,
		entry.StartedAt.Format(sheetTimeLayout),
		entry.EndedAt.Format(sheetTimeLayout),
	}
	if err := s.appendRow(ctx, CallLogSheet, row); err != nil {
		return fmt.Errorf("LogCall: failed to append call %s: %w", entry.CallSID, err)
	}
	return nil
}

func rowToCustomer(row []interface{}) models.Customer {
	created, _ := time.Parse(sheetTimeLayout, cell(row, 5))
	return models.Customer{
		ID:            cell(row, 0),
		Name:          cell(row, 1),
		Phone:         cell(row, 2),
		Email:         cell(row, 3),
		LastBookingID: cell(row, 4),
		CreatedAt:     created,
	}
}

// findCustomer returns the customer and its sheet row number (1-based).
func (s *SheetsRecorder) findCustomer(ctx context.Context, phone string) (*models.Customer, int, error) {
	rows, err := s.readRows(ctx, CustomersSheet, len(customerHeaders))
	if err != nil {
		return nil, 0, err
	}
	for i, row := range rows {
		if validation.SamePhone(cell(row, 2), phone) {
			c := rowToCustomer(row)
			return &c, i + 2, nil
		}
	}
	return nil, 0, ErrNotFound
}

func (s *SheetsRecorder) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	c, _, err := s.findCustomer(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("FindCustomerByPhone: %w", err)
	}
	return c, nil
}

// SaveCustomer appends a new customer or rewrites the existing row for the same phone.
func (s *SheetsRecorder) SaveCustomer(ctx context.Context, c models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.Phone = PhoneKey(c.Phone)
	existing, rowNum, err := s.findCustomer(ctx, c.Phone)
	switch {
	case err == nil:
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		if c.Email == "" {
			c.Email = existing.Email
		}
	case errors.Is(err, ErrNotFound):
		rowNum = 0
	default:
		return fmt.Errorf("SaveCustomer: %w", err)
	}

	row := []interface{}{c.ID, c.Name, c.Phone, c.Email, c.LastBookingID, c.CreatedAt.Format(sheetTimeLayout)}
	if rowNum == 0 {
		if err := s.appendRow(ctx, CustomersSheet, row); err != nil {
			return fmt.Errorf("SaveCustomer: failed to append customer: %w", err)
		}
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:%s%d", CustomersSheet, rowNum, lastColumn(len(customerHeaders)), rowNum)
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	if _, err := s.values.Update(s.sheetID, rng, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("SaveCustomer: failed to update customer %s: %w", c.ID, err)
	}
	return nil
}

func (s *SheetsRecorder) BookingsOn(ctx context.Context, day time.Time) ([]models.Record, error) {
	all, err := s.readBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("BookingsOn: %w", err)
	}
	date := day.Format(DateLayout)
	var out []models.Record
	for _, r := range all {
		if r.Status == models.StatusBooking && r.MoveDate == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *SheetsRecorder) CountWeekBookings(ctx context.Context, weekStart time.Time) (int, error) {
	all, err := s.readBookings(ctx)
	if err != nil {
		return 0, fmt.Errorf("CountWeekBookings: %w", err)
	}
	count := 0
	for _, r := range all {
		if r.Status == models.StatusBooking && inWeek(r.MoveDate, weekStart) {
			count++
		}
	}
	return count, nil
}

// UpdateLatestBookingAddresses rewrites the pickup and/or dropoff address of
// the most recent booking made from phone. Empty arguments leave the cell alone.
func (s *SheetsRecorder) UpdateLatestBookingAddresses(ctx context.Context, phone, pickup, dropoff string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("UpdateLatestBookingAddresses: %w", err)
	}
	idx := -1
	for i, r := range all {
		if r.Status == models.StatusBooking && validation.SamePhone(r.Phone, phone) {
			idx = i
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("UpdateLatestBookingAddresses: %w", ErrNotFound)
	}

	rec := all[idx]
	rowNum := idx + 2
	updates := []struct {
		header string
		value  string
		target *string
	}{
		{"Pickup Address", pickup, &rec.PickupAddress},
		{"Dropoff Address", dropoff, &rec.DropoffAddress},
	}
	for _, u := range updates {
		if u.value == "" {
			continue
		}
		rng := fmt.Sprintf("%s!%s%d", BookingsSheet, columnLetter(columnIndex(u.header)), rowNum)
		vr := &sheets.ValueRange{Values: [][]interface{}{{u.value}}}
		if _, err := s.values.Update(s.sheetID, rng, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return nil, fmt.Errorf("UpdateLatestBookingAddresses: failed to update %s: %w", u.header, err)
		}
		*u.target = u.value
	}
	return &rec, nil
}
