package core

import (
	"testing"

	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        models.Category
	}{
		{"Requirements Definition", "project scope document", models.CategoryDocumentation},
		{"Login Screen", "User authentication UI", models.CategoryFrontend},
		{"Order API", "REST endpoints for orders", models.CategoryBackend},
		{"Customer Schema", "table design and migration plan", models.CategoryDatabase},
		{"Integration Testing", "end to end checks", models.CategoryTesting},
		{"Encryption at Rest", "data protection", models.CategorySecurity},
		{"Production Deploy", "infrastructure rollout", models.CategoryDeployment},
		{"Vendor Workshop", "kickoff session", models.CategoryOther},
	}

	for _, tt := range tests {
		if got := InferCategory(tt.name, tt.description); got != tt.want {
			t.Errorf("InferCategory(%q, %q) = %s, want %s", tt.name, tt.description, got, tt.want)
		}
	}
}

// Rule order is part of the contract: a deliverable matching both the
// frontend and security tables takes the earlier frontend rule.
func TestInferCategoryFirstMatchWins(t *testing.T) {
	got := InferCategory("Login Screen", "User authentication UI")
	if got != models.CategoryFrontend {
		t.Errorf("InferCategory = %s, want %s", got, models.CategoryFrontend)
	}
}

func TestInferCategoryIsCaseInsensitive(t *testing.T) {
	if got := InferCategory("BACKEND Batch", ""); got != models.CategoryBackend {
		t.Errorf("InferCategory = %s, want %s", got, models.CategoryBackend)
	}
}
