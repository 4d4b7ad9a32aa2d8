package core

import (
	"strings"

	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// categoryRule maps keywords to a deliverable category. Rules are checked
// in table order and the first match wins, so the ordering is part of the
// inference contract: "Login Screen" with a "User authentication UI"
// description matches frontend before security.
type categoryRule struct {
	category models.Category
	keywords []string
}

var categoryRules = []categoryRule{
	{models.CategoryDocumentation, []string{"requirements", "specification", "definition", "document", "manual"}},
	{models.CategoryFrontend, []string{"frontend", "screen", "ui", "ux", "page", "form"}},
	{models.CategoryBackend, []string{"backend", "api", "server", "service", "endpoint"}},
	{models.CategoryDatabase, []string{"database", "db", "table", "schema", "migration"}},
	{models.CategoryTesting, []string{"test", "testing", "qa"}},
	{models.CategorySecurity, []string{"security", "encryption", "authentication", "authorization"}},
	{models.CategoryDeployment, []string{"deploy", "deployment", "operation", "infrastructure", "ci/cd"}},
}

// InferCategory classifies a deliverable by substring match over its
// lowercased name and description. Unmatched deliverables fall through
// to CategoryOther.
func InferCategory(name, description string) models.Category {
	text := strings.ToLower(name + " " + description)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}
