package fs

import (
	"encoding/csv"
	"io"

	"github.com/fwojciec/winefetch"
)

// WriteFailureLog writes every failed row to path as CSV. The header is
// winefetch.WineHeaders followed by an Error column. Successful rows in
// wines are ignored.
func WriteFailureLog(path string, wines []*winefetch.Wine) error {
	return WriteAtomic(path, func(w io.Writer) error {
		return EncodeFailures(w, wines)
	})
}

// EncodeFailures writes the failure log CSV to w.
func EncodeFailures(w io.Writer, wines []*winefetch.Wine) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, winefetch.WineHeaders...), "Error")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, wine := range wines {
		if !wine.Failed() {
			continue
		}
		if err := cw.Write(append(wine.Values(), wine.Error)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
