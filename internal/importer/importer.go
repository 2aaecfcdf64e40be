package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/encoding"
)

// Recorder is the part of the ledger an import writes through.
type Recorder interface {
	RecordDonation(ctx context.Context, params donation.RecordParams) (*donation.Donation, error)
}

type Service struct {
	ledger Recorder
	parser parser
}

func NewService(ledger Recorder, defaultCurrency donation.Currency) *Service {
	return &Service{
		ledger: ledger,
		parser: parser{defaultCurrency: defaultCurrency},
	}
}

type Result struct {
	Charset  encoding.Charset
	Recorded []*donation.Donation
	Skipped  []RowError
}

// Import records every valid line of a donations CSV. Lines that fail to parse
// or fail ledger validation are reported in Skipped; any other ledger error
// stops the import, leaving earlier lines recorded.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	utf8r, cs, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	rows, skipped, err := s.parser.parse(utf8r)
	if err != nil {
		return nil, err
	}

	result := &Result{Charset: cs, Skipped: skipped}

	for _, row := range rows {
		d, err := s.ledger.RecordDonation(ctx, row.Params)
		if errors.Is(err, donation.ErrValidation) {
			result.Skipped = append(result.Skipped, RowError{Line: row.Line, Err: err})
			continue
		}

		if err != nil {
			return result, fmt.Errorf("line %d: %w", row.Line, err)
		}

		result.Recorded = append(result.Recorded, d)
	}

	return result, nil
}
