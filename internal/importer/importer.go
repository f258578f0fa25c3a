package importer

import (
	"io"

	"github.com/tiammomo/mamoji/internal/importer/bill"
)

// Parser turns a raw bill export into import records.
type Parser interface {
	Parse(r io.Reader) ([]bill.Record, error)
}
