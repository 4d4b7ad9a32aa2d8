package models

// Category classifies a deliverable by the kind of work it represents.
type Category string

const (
	CategoryDocumentation Category = "documentation"
	CategoryFrontend      Category = "frontend_development"
	CategoryBackend       Category = "backend_development"
	CategoryDatabase      Category = "database"
	CategoryTesting       Category = "testing"
	CategorySecurity      Category = "security"
	CategoryDeployment    Category = "deployment"
	CategoryOther         Category = "other"
)

// Valid reports whether c is one of the known category values.
func (c Category) Valid() bool {
	switch c {
	case CategoryDocumentation, CategoryFrontend, CategoryBackend, CategoryDatabase,
		CategoryTesting, CategorySecurity, CategoryDeployment, CategoryOther:
		return true
	}
	return false
}

// Complexity represents the assumed technical difficulty of a deliverable.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Valid reports whether c is one of the known complexity values.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// DeliverableItem is a named unit of project output read from the input
// source. Items are immutable once ingested; category is inferred once
// from keyword heuristics at read time.
type DeliverableItem struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Category    Category   `yaml:"category,omitempty" json:"category,omitempty"`
	Complexity  Complexity `yaml:"complexity,omitempty" json:"complexity,omitempty"`
}
