package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
)

const (
	colName     = "name"
	colEmail    = "email"
	colAmount   = "amount"
	colCurrency = "currency"
	colType     = "type"
	colCampaign = "campaign"
	colMessage  = "message"
)

// headerAliases maps every accepted header spelling to its column.
var headerAliases = map[string]string{
	"name":        colName,
	"donor":       colName,
	"donor name":  colName,
	"email":       colEmail,
	"e-mail":      colEmail,
	"donor email": colEmail,
	"amount":      colAmount,
	"currency":    colCurrency,
	"type":        colType,
	"campaign":    colCampaign,
	"campaign id": colCampaign,
	"message":     colMessage,
	"note":        colMessage,
}

var requiredCols = []string{colEmail, colAmount}

// Row is one parsed data line, ready to be recorded.
type Row struct {
	Line   int
	Params donation.RecordParams
}

// RowError explains why a line was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

var ErrNoHeader = errors.New("no header row with email and amount columns")

type colIndex map[string]int

type parser struct {
	defaultCurrency donation.Currency
}

// parse reads UTF-8 CSV content. Lines before the header are ignored so
// exports with a title block still import.
func (p parser) parse(r io.Reader) ([]Row, []RowError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		cols    colIndex
		rows    []Row
		skipped []RowError
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if cols == nil {
			cols = detectHeader(record)
			continue
		}

		if blank(record) {
			continue
		}

		params, err := p.parseRecord(cols, record)
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err})
			continue
		}

		rows = append(rows, Row{Line: line, Params: params})
	}

	if cols == nil {
		return nil, nil, ErrNoHeader
	}

	return rows, skipped, nil
}

// sniffDelimiter picks ';' or ',' by counting them on the first non-empty line.
func sniffDelimiter(data []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}

		return ','
	}

	return ','
}

// detectHeader returns nil unless every required column is present.
func detectHeader(record []string) colIndex {
	cols := make(colIndex)

	for i, cell := range record {
		name, ok := headerAliases[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			continue
		}

		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	for _, name := range requiredCols {
		if _, ok := cols[name]; !ok {
			return nil
		}
	}

	return cols
}

func (p parser) parseRecord(cols colIndex, record []string) (donation.RecordParams, error) {
	params := donation.RecordParams{
		DonorName:  cell(record, cols, colName),
		DonorEmail: cell(record, cols, colEmail),
		Currency:   p.defaultCurrency,
		Type:       donation.TypeOneTime,
		Message:    cell(record, cols, colMessage),
	}

	amount, err := parseAmount(cell(record, cols, colAmount))
	if err != nil {
		return params, fmt.Errorf("invalid amount %q", cell(record, cols, colAmount))
	}

	params.Amount = amount

	if s := cell(record, cols, colCurrency); s != "" {
		params.Currency = donation.Currency(strings.ToUpper(s))
	}

	if s := cell(record, cols, colType); s != "" {
		params.Type = donation.Type(strings.ToLower(s))
	}

	if s := cell(record, cols, colCampaign); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return params, fmt.Errorf("invalid campaign id %q", s)
		}

		params.CampaignID = &id
	}

	return params, nil
}

func cell(record []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
