package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/logger"
)

// numberStopWords are legal-entity suffixes and connector words stripped
// from party names before extracting initials. Punctuation is removed
// first, so dotted forms like "S.A. DE C.V." arrive as bare tokens.
var numberStopWords = map[string]struct{}{
	// Legal-entity suffixes
	"SA": {}, "CV": {}, "SAPI": {}, "SRL": {}, "SC": {}, "RL": {},
	"SOCIEDAD": {}, "ANONIMA": {}, "CIVIL": {}, "RESPONSABILIDAD": {},
	"LIMITADA": {}, "CAPITAL": {}, "VARIABLE": {},
	"INC": {}, "CORP": {}, "LLC": {}, "LTD": {}, "CO": {}, "COMPANY": {},
	// Connector words
	"DE": {}, "DEL": {}, "LA": {}, "EL": {}, "LOS": {}, "LAS": {},
	"CON": {}, "SIN": {}, "PARA": {}, "POR": {},
	"AND": {}, "OF": {}, "THE": {},
}

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// NumberingService allocates internal sequence numbers and generates
// public manifest codes from party names.
type NumberingService struct {
	store ManifestStore
	log   *logger.Logger
	now   func() time.Time
}

// NewNumberingService creates a new numbering service
func NewNumberingService(store ManifestStore, log *logger.Logger) *NumberingService {
	return &NumberingService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// NextInternalSequence reserves the next globally unique sequence value.
// Allocated once per lineage, never on re-issuance.
func (s *NumberingService) NextInternalSequence(ctx context.Context) (int64, error) {
	seq, err := s.store.NextInternalSequence(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate internal sequence: %w", err)
	}

	s.log.Debug("allocated internal sequence", "sequence", seq)
	return seq, nil
}

// BaseCode derives the prefix-and-date base of a public manifest code
// from the generator party name: initials of the first two significant
// words plus the reference date as DDMMYYYY.
// Example: "DENSO MEXICO, S.A. DE C.V." on 2025-04-28 -> "DM-28042025"
func (s *NumberingService) BaseCode(partyName string, referenceDate time.Time) (string, error) {
	name := strings.TrimSpace(partyName)
	if name == "" {
		return "", fmt.Errorf("%w: a party name is required to generate a manifest number", models.ErrInvalidInput)
	}

	upper := strings.ToUpper(name)
	clean := nonWordPattern.ReplaceAllString(upper, " ")
	words := strings.Fields(clean)

	var significant []string
	for _, word := range words {
		if len([]rune(word)) <= 1 {
			continue
		}
		if _, excluded := numberStopWords[word]; excluded {
			continue
		}
		significant = append(significant, word)
	}

	var prefix string
	switch {
	case len(significant) >= 2:
		prefix = firstRunes(significant[0], 1) + firstRunes(significant[1], 1)
	case len(significant) == 1:
		prefix = firstRunes(significant[0], 2)
	default:
		// Fallback: first two characters of the cleaned name
		prefix = firstRunes(strings.Join(words, ""), 2)
	}

	if referenceDate.IsZero() {
		referenceDate = s.now()
	}

	return fmt.Sprintf("%s-%s", prefix, referenceDate.Format("02012006")), nil
}

// ResolveCollision appends a disambiguation suffix when other codes with
// the same base already exist. The prefix search and the insert that
// follows must share a transaction (see ManifestStore.LockNumberBase) for
// the suffix to be strictly unique.
func (s *NumberingService) ResolveCollision(ctx context.Context, base string, disambiguator int) (string, error) {
	count, err := s.store.CountByNumberPrefix(ctx, base)
	if err != nil {
		return "", fmt.Errorf("failed to check existing codes for %s: %w", base, err)
	}

	if count == 0 {
		return base, nil
	}

	suffix := disambiguator
	if suffix <= 0 {
		suffix = count + 1
	}

	return fmt.Sprintf("%s-%02d", base, suffix), nil
}

// GeneratePublicNumber derives the full public manifest code for a party
// name and reference date. A zero referenceDate means today; a
// disambiguator <= 0 means derive the suffix from the existing count.
func (s *NumberingService) GeneratePublicNumber(ctx context.Context, partyName string, referenceDate time.Time, disambiguator int) (string, error) {
	base, err := s.BaseCode(partyName, referenceDate)
	if err != nil {
		return "", err
	}

	number, err := s.ResolveCollision(ctx, base, disambiguator)
	if err != nil {
		return "", err
	}

	s.log.Debug("generated public number", "base", base, "number", number)
	return number, nil
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}
