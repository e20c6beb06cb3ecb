package parsers

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"saltbath/model"
)

// PartitionYearThreshold separates two digit partition-year markers from serials.
// Tokens below it are year markers. This is a fixed shop-floor convention.
const PartitionYearThreshold = 50

// MaxSerial is the exclusive upper bound of a five digit serial.
const MaxSerial = 100000

// CurrentPartitionYear returns the two digit year used when no marker precedes a serial.
func CurrentPartitionYear(now time.Time) int {
	return now.Year() - 2000
}

// ClearAbnormalCharacters replaces everything that is not a digit or whitespace with a
// space, collapses whitespace runs and trims the result.
// "DL24-07698" becomes "24 07698".
func ClearAbnormalCharacters(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// ParseIdentifiers turns free text such as "24 07698 13456 25 19778" into identifiers.
// Tokens below PartitionYearThreshold switch the partition year for the serials that
// follow; defaultPartition applies until the first marker.
func ParseIdentifiers(raw string, defaultPartition int) ([]model.Identifier, error) {
	cleaned := ClearAbnormalCharacters(raw)
	if cleaned == "" {
		return nil, &model.ParseError{Input: raw, Reason: "no numeric tokens"}
	}

	var ids []model.Identifier
	partition := defaultPartition
	for _, tok := range strings.Fields(cleaned) {
		n, err := strconv.Atoi(toASCIIDigits(tok))
		if err != nil {
			return nil, &model.ParseError{Input: raw, Reason: "token " + tok + " is not a number"}
		}
		if n < PartitionYearThreshold {
			partition = n
			continue
		}
		if n >= MaxSerial {
			return nil, &model.ParseError{Input: raw, Reason: "serial " + tok + " exceeds five digits"}
		}
		ids = append(ids, model.Identifier{PartitionYear: partition, Serial: n})
	}
	return ids, nil
}

// ParseFullIdentifier parses a single printed label such as "DL24-07698".
func ParseFullIdentifier(raw string, defaultPartition int) (model.Identifier, error) {
	ids, err := ParseIdentifiers(raw, defaultPartition)
	if err != nil {
		return model.Identifier{}, err
	}
	if len(ids) != 1 {
		return model.Identifier{}, &model.ParseError{Input: raw, Reason: "expected exactly one identifier, got " + strconv.Itoa(len(ids))}
	}
	return ids[0], nil
}

// toASCIIDigits maps every decimal digit (full-width, Arabic-Indic, Devanagari...)
// to its ASCII form so Atoi accepts it.
func toASCIIDigits(tok string) string {
	ascii := true
	for _, r := range tok {
		if r > unicode.MaxASCII {
			ascii = false
			break
		}
	}
	if ascii {
		return tok
	}
	var sb strings.Builder
	for _, r := range tok {
		if v, ok := digitValue(r); ok {
			sb.WriteRune('0' + rune(v))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// digitValue returns the value of a decimal digit rune. Unicode encodes each
// script's digits as a contiguous 0-9 run, so the offset within the Nd range
// modulo ten is the value.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	for _, rng := range unicode.Nd.R16 {
		lo, hi := rune(rng.Lo), rune(rng.Hi)
		if r >= lo && r <= hi && rng.Stride == 1 {
			return int(r-lo) % 10, true
		}
	}
	for _, rng := range unicode.Nd.R32 {
		lo, hi := rune(rng.Lo), rune(rng.Hi)
		if r >= lo && r <= hi && rng.Stride == 1 {
			return int(r-lo) % 10, true
		}
	}
	return 0, false
}
