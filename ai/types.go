package ai

// ConceptTypes defines the valid categories for extracted concepts.
// Document text tends to name institutions, people and places far more often
// than chat does, so the list leans toward those.
var ConceptTypes = []string{
	"abstract_concept",
	"academic_field",
	"activity",
	"award",
	"building",
	"date",
	"degree",
	"event",
	"facility",
	"law",
	"measurement",
	"occupation",
	"organization",
	"person",
	"place",
	"program",
	"publication",
	"role",
	"software",
	"technology",
	"time",
}
