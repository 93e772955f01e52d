package google

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spendario/spendario/pkg/expense"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	ledgerDateLayout    = "02/01/2006"
)

// SheetsLedger implements expense.Ledger on a Google Sheets spreadsheet. The
// spreadsheet is looked up by name in Drive and created with a header row
// when missing; the resolved id is kept for the process lifetime, row data
// is never cached.
type SheetsLedger struct {
	auth            *Auth
	spreadsheetName string
	worksheetName   string
	loc             *time.Location

	mu            sync.Mutex
	sheetsService *sheets.Service
	driveService  *drive.Service
	spreadsheetId string
}

func NewSheetsLedger(auth *Auth, spreadsheetName string, worksheetName string, loc *time.Location) *SheetsLedger {
	return &SheetsLedger{
		auth:            auth,
		spreadsheetName: spreadsheetName,
		worksheetName:   worksheetName,
		loc:             loc,
	}
}

func (s *SheetsLedger) Append(ctx context.Context, record expense.Record) error {
	service, spreadsheetId, err := s.prepare(ctx)
	if err != nil {
		return err
	}

	row := &sheets.ValueRange{
		Values: [][]interface{}{{
			record.Date.In(s.loc).Format(ledgerDateLayout),
			record.Amount.StringFixed(2),
			record.Category,
			record.Description,
		}},
	}
	_, err = service.Spreadsheets.Values.Append(spreadsheetId, s.worksheetName+"!A:D", row).
		ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		err := fmt.Errorf("unable to append expense row: %v", err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *SheetsLedger) All(ctx context.Context) ([]expense.Record, error) {
	service, spreadsheetId, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := service.Spreadsheets.Values.Get(spreadsheetId, s.worksheetName+"!A:D").Do()
	if err != nil {
		err := fmt.Errorf("unable to read expense rows: %v", err)
		log.Error(err)
		return nil, err
	}

	records := make([]expense.Record, 0, len(resp.Values))
	for i, row := range resp.Values {
		if i == 0 {
			// header row
			continue
		}
		record, err := s.parseRow(row)
		if err != nil {
			log.Warnf("Skipping unparsable expense row %d: %v", i+1, err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// prepare builds the API clients and resolves the spreadsheet id, once.
func (s *SheetsLedger) prepare(ctx context.Context) (*sheets.Service, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sheetsService != nil && s.spreadsheetId != "" {
		return s.sheetsService, s.spreadsheetId, nil
	}

	client, err := s.auth.Client(ctx)
	if err != nil {
		return nil, "", err
	}

	if s.sheetsService == nil {
		service, err := sheets.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			err := fmt.Errorf("unable to create Sheets client: %v", err)
			log.Error(err)
			return nil, "", err
		}
		s.sheetsService = service
	}
	if s.driveService == nil {
		service, err := drive.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			err := fmt.Errorf("unable to create Drive client: %v", err)
			log.Error(err)
			return nil, "", err
		}
		s.driveService = service
	}

	id, err := s.findSpreadsheet()
	if err != nil {
		return nil, "", err
	}
	if id == "" {
		id, err = s.createSpreadsheet()
		if err != nil {
			return nil, "", err
		}
		log.Infof("Created expense spreadsheet %q (%s)", s.spreadsheetName, id)
	}
	s.spreadsheetId = id

	return s.sheetsService, s.spreadsheetId, nil
}

func (s *SheetsLedger) findSpreadsheet() (string, error) {
	name := strings.ReplaceAll(s.spreadsheetName, "'", "\\'")
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", name, spreadsheetMimeType)

	list, err := s.driveService.Files.List().Q(query).Fields("files(id, name)").PageSize(1).Do()
	if err != nil {
		err := fmt.Errorf("unable to search for spreadsheet in Drive: %v", err)
		log.Error(err)
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (s *SheetsLedger) createSpreadsheet() (string, error) {
	created, err := s.sheetsService.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: s.spreadsheetName},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: s.worksheetName}},
		},
	}).Do()
	if err != nil {
		err := fmt.Errorf("unable to create spreadsheet: %v", err)
		log.Error(err)
		return "", err
	}

	if err := s.writeHeader(created); err != nil {
		return "", err
	}
	return created.SpreadsheetId, nil
}

func (s *SheetsLedger) writeHeader(spreadsheet *sheets.Spreadsheet) error {
	header := &sheets.ValueRange{
		Values: [][]interface{}{{"Data", "Importo", "Categoria", "Descrizione"}},
	}
	_, err := s.sheetsService.Spreadsheets.Values.Update(spreadsheet.SpreadsheetId, s.worksheetName+"!A1:D1", header).
		ValueInputOption("RAW").Do()
	if err != nil {
		err := fmt.Errorf("unable to write spreadsheet header: %v", err)
		log.Error(err)
		return err
	}

	if len(spreadsheet.Sheets) == 0 {
		return nil
	}
	_, err = s.sheetsService.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          spreadsheet.Sheets[0].Properties.SheetId,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   4,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat.bold",
			},
		}},
	}).Do()
	if err != nil {
		// cosmetic only
		log.Warnf("unable to bold spreadsheet header: %v", err)
	}
	return nil
}

func (s *SheetsLedger) parseRow(row []interface{}) (expense.Record, error) {
	if len(row) < 3 {
		return expense.Record{}, fmt.Errorf("row has only %d cells", len(row))
	}

	date, err := time.ParseInLocation(ledgerDateLayout, cellString(row[0]), s.loc)
	if err != nil {
		return expense.Record{}, fmt.Errorf("invalid date %q", cellString(row[0]))
	}
	amount, err := expense.ParseAmount(cellString(row[1]))
	if err != nil {
		return expense.Record{}, fmt.Errorf("invalid amount %q", cellString(row[1]))
	}

	record := expense.Record{
		Date:     date,
		Amount:   amount,
		Category: cellString(row[2]),
	}
	if len(row) > 3 {
		record.Description = cellString(row[3])
	}
	return record, nil
}

func cellString(cell interface{}) string {
	return strings.TrimSpace(fmt.Sprintf("%v", cell))
}
