package processors

import (
	"fmt"
	"time"

	"invoice_recorder/internal/utils"

	"github.com/shopspring/decimal"
)

// rowReader parses named fields of one row and keeps the first failure, so
// a processor can read every field and check the error once.
type rowReader struct {
	rec map[string]string
	err error
}

func (r *rowReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *rowReader) required(fields []string) {
	for _, f := range fields {
		if r.rec[f] == "" {
			r.fail(fmt.Errorf("required field '%s' is empty", f))
			return
		}
	}
}

func (r *rowReader) text(field string) string { return r.rec[field] }

func (r *rowReader) date(field string) time.Time {
	t, err := utils.ParseDate(r.rec[field])
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", field, err))
	}
	return t
}

func (r *rowReader) optDate(field string) *time.Time {
	if r.rec[field] == "" {
		return nil
	}
	t := r.date(field)
	return &t
}

func (r *rowReader) number(field string) decimal.Decimal {
	d, err := utils.ParseIndianNumber(r.rec[field])
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", field, err))
	}
	return d
}

func (r *rowReader) optNumber(field string) decimal.NullDecimal {
	if r.rec[field] == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(r.number(field))
}

func (r *rowReader) integer(field string) int {
	n, err := utils.ParseInt(r.rec[field])
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", field, err))
	}
	return n
}
