package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ReversalScanner/internal/model"
)

// ErrNoUniverse is returned when the instrument names mapping cannot be read.
var ErrNoUniverse = errors.New("universe metadata unavailable")

// LoadNames reads the code-to-name mapping file.
func LoadNames(path string) ([]model.Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoUniverse, err)
	}
	defer f.Close()
	return ReadNames(f)
}

// ReadNames decodes a headed code,name CSV. Codes are left-padded to six digits
// and duplicates keep their first name.
func ReadNames(r io.Reader) ([]model.Instrument, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrNoUniverse, err)
	}
	codeCol, nameCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "code", "代码", "symbol":
			codeCol = i
		case "name", "名称":
			nameCol = i
		}
	}
	if codeCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("%w: names file needs code and name columns", ErrNoUniverse)
	}

	seen := make(map[string]bool)
	var out []model.Instrument
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoUniverse, err)
		}
		code := PadCode(field(rec, codeCol))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, model.Instrument{Code: code, Name: field(rec, nameCol)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: names file is empty", ErrNoUniverse)
	}
	return out, nil
}

// PadCode normalizes a numeric instrument code to six digits.
func PadCode(code string) string {
	code = strings.TrimSuffix(strings.TrimSpace(code), ".0")
	if code == "" {
		return ""
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	if len(code) < 6 {
		code = strings.Repeat("0", 6-len(code)) + code
	}
	return code
}
