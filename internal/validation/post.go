package validation

import (
	"fmt"
	"slices"
	"strings"

	"croctop/internal/models"
)

// ValidateTitle checks a post title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > 200 {
		return fmt.Errorf("title must not exceed 200 characters")
	}
	return nil
}

// ValidateCategory checks category against models.PostCategories.
func ValidateCategory(category string) error {
	if !slices.Contains(models.PostCategories, category) {
		return fmt.Errorf("category must be one of: %s", strings.Join(models.PostCategories, ", "))
	}
	return nil
}

// ValidateAllergens checks every entry against models.Allergens and rejects repeats.
func ValidateAllergens(allergens []string) error {
	seen := make(map[string]struct{}, len(allergens))
	for _, a := range allergens {
		if !slices.Contains(models.Allergens, a) {
			return fmt.Errorf("unknown allergen %q", a)
		}
		if _, dup := seen[a]; dup {
			return fmt.Errorf("allergen %q listed twice", a)
		}
		seen[a] = struct{}{}
	}
	return nil
}

// ValidateDurations checks preparation and cooking times in minutes.
func ValidateDurations(prepTime, cookTime int) error {
	if prepTime < 0 || cookTime < 0 {
		return fmt.Errorf("prep_time and cook_time cannot be negative")
	}
	return nil
}

// ValidateIngredients requires a name, quantity and unit on every line.
func ValidateIngredients(ingredients []models.Ingredient) error {
	for i, ing := range ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("ingredient %d: name is required", i+1)
		}
		if strings.TrimSpace(ing.Quantity) == "" {
			return fmt.Errorf("ingredient %d: quantity is required", i+1)
		}
		if strings.TrimSpace(ing.Unit) == "" {
			return fmt.Errorf("ingredient %d: unit is required", i+1)
		}
	}
	return nil
}

// ValidateSteps rejects blank preparation steps or photo references.
func ValidateSteps(field string, values []string) error {
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s %d cannot be empty", field, i+1)
		}
	}
	return nil
}

// ValidateComment checks comment content.
func ValidateComment(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("content is required")
	}
	if len(content) > 2000 {
		return fmt.Errorf("content must not exceed 2000 characters")
	}
	return nil
}
