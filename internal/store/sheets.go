package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/cornerstone-fellowship/backend/config"
	"github.com/cornerstone-fellowship/backend/internal/models"
)

// SheetsStore persists registrations in a Google spreadsheet: one header-less
// tab of registration rows, one control tab, an optional template tab and a
// fail-log tab.
//
// The sheet has no row-level locking, so cross-process races on a brand-new
// email can still double-append; within one process callers serialize per
// email through the shared KeyedMutex. An email -> row index is built on
// first use and maintained on append so lookups do not rescan the sheet per
// request.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	regTab        string
	controlTab    string
	templateTab   string
	failTab       string

	mu      sync.Mutex
	index   map[string]int // normalized email -> 1-based sheet row
	numRows int
	loaded  bool
}

var _ RowStore = (*SheetsStore)(nil)

// NewSheetsStore builds a sheets client from a service account key file, or
// application default credentials when no key path is configured.
func NewSheetsStore(ctx context.Context, cfg config.SheetsConfig) (*SheetsStore, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsStore{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		regTab:        cfg.RegistrationTab,
		controlTab:    cfg.ControlTab,
		templateTab:   cfg.TemplateTab,
		failTab:       cfg.FailLogTab,
	}, nil
}

func (s *SheetsStore) Get(ctx context.Context, email string) (*models.Registration, error) {
	key := models.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok, err := s.lookupLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another process may have appended since the index was built.
		if err := s.reloadIndexLocked(ctx); err != nil {
			return nil, err
		}
		if row, ok = s.index[key]; !ok {
			return nil, ErrNotFound
		}
	}

	values, err := s.readRow(ctx, row)
	if err != nil {
		return nil, err
	}
	reg, err := rowToRegistration(values)
	if err != nil {
		return nil, fmt.Errorf("parse row %d: %w", row, err)
	}
	return reg, nil
}

func (s *SheetsStore) Save(ctx context.Context, reg *models.Registration) error {
	key := models.NormalizeEmail(reg.Email)
	values := toInterfaceRow(registrationToRow(reg))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureIndexLocked(ctx); err != nil {
		return err
	}

	if row, ok := s.index[key]; ok {
		rng := fmt.Sprintf("%s!A%d:%s%d", s.regTab, row, lastColumn, row)
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng,
			&sheets.ValueRange{Values: [][]interface{}{values}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update row %d: %w", row, err)
		}
		return nil
	}

	rng := fmt.Sprintf("%s!A:%s", s.regTab, lastColumn)
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng,
		&sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	s.numRows++
	s.index[key] = s.numRows
	return nil
}

func (s *SheetsStore) SystemOpen(ctx context.Context) (bool, error) {
	rng := fmt.Sprintf("%s!A1:B1", s.controlTab)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read control row: %w", err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) < 2 {
		return false, nil
	}
	if fmt.Sprint(resp.Values[0][0]) != controlKeyword {
		return false, nil
	}
	return isOpenValue(fmt.Sprint(resp.Values[0][1])), nil
}

func (s *SheetsStore) MessageTemplate(ctx context.Context) (string, error) {
	if s.templateTab == "" {
		return "", nil
	}
	rng := fmt.Sprintf("%s!A1", s.templateTab)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return fmt.Sprint(resp.Values[0][0]), nil
}

func (s *SheetsStore) LogDeliveryFailure(ctx context.Context, f models.DeliveryFailure) error {
	rng := fmt.Sprintf("%s!A:C", s.failTab)
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng,
		&sheets.ValueRange{Values: [][]interface{}{{
			f.Email, f.FailedAt.Format(time.RFC3339), f.ErrorMessage,
		}}}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append fail-log row: %w", err)
	}
	return nil
}

func (s *SheetsStore) lookupLocked(ctx context.Context, key string) (int, bool, error) {
	if err := s.ensureIndexLocked(ctx); err != nil {
		return 0, false, err
	}
	row, ok := s.index[key]
	return row, ok, nil
}

func (s *SheetsStore) ensureIndexLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.reloadIndexLocked(ctx)
}

func (s *SheetsStore) reloadIndexLocked(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A:A", s.regTab)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("load email index: %w", err)
	}
	index := make(map[string]int, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		email := models.NormalizeEmail(fmt.Sprint(row[0]))
		if email == "" {
			continue
		}
		index[email] = i + 1
	}
	s.index = index
	s.numRows = len(resp.Values)
	s.loaded = true
	return nil
}

func (s *SheetsStore) readRow(ctx context.Context, row int) ([]string, error) {
	rng := fmt.Sprintf("%s!A%d:%s%d", s.regTab, row, lastColumn, row)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read row %d: %w", row, err)
	}
	if len(resp.Values) == 0 {
		return nil, ErrNotFound
	}
	out := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		out[i] = fmt.Sprint(v)
	}
	return out, nil
}

func toInterfaceRow(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
