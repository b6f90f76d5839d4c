package repositories

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/plcassist/backend/internal/models"
	"go.uber.org/zap"
)

//go:embed data/catalog.json
var defaultCatalog []byte

// catalogRepository holds the error and schematic tables. It is built once and never mutated,
// so reads need no locking.
type catalogRepository struct {
	errors     []string
	entries    map[string]models.ErrorEntry
	schematics map[string]string
}

// NewCatalogRepository loads the catalog from path, or the embedded default catalog when path is empty
func NewCatalogRepository(path string, logger *zap.Logger) (*catalogRepository, error) {
	data := defaultCatalog
	source := "embedded"
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		source = path
	}

	repo, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", source, err)
	}

	logger.Info("catalog loaded",
		zap.String("source", source),
		zap.Int("errors", len(repo.errors)),
		zap.Int("schematics", len(repo.schematics)),
	)
	return repo, nil
}

// ParseCatalog builds the lookup tables from the JSON catalog format.
// Every part referenced by an error gets a schematic; explicit schematic entries take precedence
// over the derived plan_<part>.pdf filename.
func ParseCatalog(data []byte) (*catalogRepository, error) {
	var catalog models.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	repo := &catalogRepository{
		errors:     make([]string, 0, len(catalog.Errors)),
		entries:    make(map[string]models.ErrorEntry, len(catalog.Errors)),
		schematics: make(map[string]string),
	}

	for _, entry := range catalog.Errors {
		if entry.Error == "" {
			return nil, fmt.Errorf("catalog entry without error text")
		}
		if _, exists := repo.entries[entry.Error]; exists {
			return nil, fmt.Errorf("duplicate error text %q", entry.Error)
		}
		if entry.Parts == nil {
			entry.Parts = []string{}
		}
		repo.errors = append(repo.errors, entry.Error)
		repo.entries[entry.Error] = entry

		for _, part := range entry.Parts {
			repo.schematics[part] = SchematicFilename(part)
		}
	}

	for _, p := range catalog.Schematics {
		if p.Part == "" || p.Schematic == "" {
			return nil, fmt.Errorf("schematic entry needs part and schematic")
		}
		repo.schematics[p.Part] = p.Schematic
	}

	return repo, nil
}

// SchematicFilename derives the schematic document name for a part
func SchematicFilename(part string) string {
	return "plan_" + strings.ReplaceAll(strings.ToLower(part), " ", "_") + ".pdf"
}

// Method ErrorTexts returns all error texts in catalog order.
func (r *catalogRepository) ErrorTexts() []string {
	return r.errors
}

// Method GetEntry returns the catalog entry with exactly the given error text.
func (r *catalogRepository) GetEntry(errorText string) (models.ErrorEntry, bool) {
	entry, ok := r.entries[errorText]
	return entry, ok
}

// Method GetSchematic returns the schematic filename of the part.
func (r *catalogRepository) GetSchematic(part string) (string, bool) {
	schematic, ok := r.schematics[part]
	return schematic, ok
}
