package services

import (
	"slices"
	"strings"

	"github.com/plcassist/backend/internal/models"
)

// maxSearchResults caps the number of error texts returned by Search
const maxSearchResults = 10

// CatalogRepository is the interface that wraps read access to the static error and schematic tables
type CatalogRepository interface {
	// Method ErrorTexts returns all known error texts in catalog order.
	ErrorTexts() []string
	// Method GetEntry returns the entry with exactly "errorText", false if there is none.
	GetEntry(errorText string) (models.ErrorEntry, bool)
	// Method GetSchematic returns the schematic filename of "part", false if the part is unknown.
	GetSchematic(part string) (string, bool)
}

type lookupService struct {
	catalog CatalogRepository
}

// NewLookupService creates a new lookup service
func NewLookupService(catalog CatalogRepository) *lookupService {
	return &lookupService{catalog: catalog}
}

// Search returns up to 10 error texts containing query, ignoring letter case, in catalog order.
// An empty query matches nothing.
func (s *lookupService) Search(query string) []string {
	result := []string{}
	if query == "" {
		return result
	}

	q := strings.ToLower(query)
	for _, text := range s.catalog.ErrorTexts() {
		if strings.Contains(strings.ToLower(text), q) {
			result = append(result, text)
			if len(result) == maxSearchResults {
				break
			}
		}
	}
	return result
}

// ListAll returns all error texts sorted lexicographically
func (s *lookupService) ListAll() []string {
	texts := slices.Clone(s.catalog.ErrorTexts())
	if texts == nil {
		texts = []string{}
	}
	slices.Sort(texts)
	return texts
}

// RemedyAndParts returns the remedy and parts for the exact error text.
// Unknown texts get the "no data" remedy with an empty parts list.
func (s *lookupService) RemedyAndParts(errorText string) models.RemedyResponse {
	entry, ok := s.catalog.GetEntry(errorText)
	if !ok {
		return models.RemedyResponse{Remedy: models.NoDataRemedy, Parts: []string{}}
	}

	parts := slices.Clone(entry.Parts)
	if parts == nil {
		parts = []string{}
	}
	return models.RemedyResponse{Remedy: entry.Remedy, Parts: parts}
}

// SchematicFor returns the schematic filename of the part
func (s *lookupService) SchematicFor(part string) (string, bool) {
	return s.catalog.GetSchematic(part)
}
