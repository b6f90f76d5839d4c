package models

// NoDataRemedy is returned for error texts missing from the catalog
const NoDataRemedy = "Keine Daten gefunden."

// ErrorEntry describes a known controller error with its remedy and replaceable parts
type ErrorEntry struct {
	Error  string   `json:"error"`
	Remedy string   `json:"remedy"`
	Parts  []string `json:"parts"`
}

// PartEntry links a replaceable part to its schematic document
type PartEntry struct {
	Part      string `json:"part"`
	Schematic string `json:"schematic"`
}

// Catalog is the on-disk format of the lookup data
type Catalog struct {
	Errors     []ErrorEntry `json:"errors"`
	Schematics []PartEntry  `json:"schematics,omitempty"`
}

// RemedyResponse is the result of a remedy lookup
type RemedyResponse struct {
	Remedy string   `json:"remedy"`
	Parts  []string `json:"parts"`
}

// PartsRequest represents a remedy and parts lookup request
type PartsRequest struct {
	Error string `json:"error"`
}

// SchematicRequest represents a schematic lookup request
type SchematicRequest struct {
	Part string `json:"part"`
}

// SchematicResponse holds the schematic filename, nil when the part is unknown
type SchematicResponse struct {
	Schematic *string `json:"schematic"`
}
