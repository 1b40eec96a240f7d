package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
)

var (
	// ErrEmptyInput is returned when the input has no header plus data row.
	ErrEmptyInput = errors.New("ingest: empty input, need a header and at least one data row")
	// ErrMalformedInput is returned when the input cannot be parsed at all.
	// The caller is expected to keep its previous catalog on this error.
	ErrMalformedInput = errors.New("ingest: malformed input")
)

// cell is a loosely typed CSV value: a finite number or a raw string.
// An empty string stays a string, it is never coerced to a number.
type cell struct {
	num   float64
	str   string
	isNum bool
}

func parseCell(raw string) cell {
	v := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	if v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return cell{num: n, isNum: true}
		}
	}
	return cell{str: v}
}

func (c cell) String() string {
	if c.isNum {
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	}
	return c.str
}

// Ingest parses comma-separated text into an ordered sequence of players.
//
// The first non-blank line is the header: fields are trimmed, stray double
// quotes stripped and lower-cased before matching. "athlete name" and
// "player" both map to the player name. Splitting is a plain comma split;
// commas inside quoted fields misalign columns. That limitation is kept on
// purpose, consumers rely on the simple splitting for already-clean exports.
//
// Rows that yield no usable name are dropped silently. Any panic during
// parsing is converted into ErrMalformedInput rather than propagated.
func Ingest(text string) (players []models.Player, err error) {
	defer func() {
		if r := recover(); r != nil {
			players = nil
			err = fmt.Errorf("%w: %v", ErrMalformedInput, r)
		}
	}()

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, ErrEmptyInput
	}

	header := make([]string, 0, 8)
	for _, h := range strings.Split(lines[0], ",") {
		h = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(h, `"`, "")))
		header = append(header, h)
	}

	players = make([]models.Player, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := strings.Split(line, ",")
		row := make(map[string]cell, len(header))
		for i, key := range header {
			if i >= len(values) {
				break
			}
			row[key] = parseCell(values[i])
		}

		p, ok := rowToPlayer(row)
		if !ok {
			// No usable name, drop the row.
			continue
		}
		players = append(players, p)
	}

	return players, nil
}

// rowToPlayer resolves a loosely typed row into the fixed player schema.
func rowToPlayer(row map[string]cell) (models.Player, bool) {
	name := lookupString(row, "athlete name", "player", "name")
	if name == "" {
		return models.Player{}, false
	}

	p := models.Player{
		AthleteID:       lookupString(row, "athlete_id", "athleteid", "id"),
		Name:            name,
		Team:            lookupString(row, "team"),
		Position:        lookupString(row, "position", "pos"),
		ContractType:    lookupString(row, "contract_type", "contract"),
		Salary:          lookupNumber(row, "salary_2025_num", "salary"),
		TsPercentile:    lookupNumber(row, "ts_pctile", "tspercentile"),
		UsagePercentile: lookupNumber(row, "usage_pctile", "usagepercentile"),
		DefPercentile:   lookupNumber(row, "def_pctile", "defpercentile"),
		AstPercentile:   lookupNumber(row, "ast_pctile", "astpercentile"),
	}
	return p, true
}

func lookupString(row map[string]cell, keys ...string) string {
	for _, k := range keys {
		if c, ok := row[k]; ok {
			if s := c.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

func lookupNumber(row map[string]cell, keys ...string) *float64 {
	for _, k := range keys {
		if c, ok := row[k]; ok && c.isNum {
			n := c.num
			return &n
		}
	}
	return nil
}
