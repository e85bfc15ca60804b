// Package validation provides data validation for the nutrient export API.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/beanhealth/nutridb-export/converter/entities"
	"github.com/beanhealth/nutridb-export/interfaces"
	"github.com/beanhealth/nutridb-export/logging"
)

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Input validation: alphanumeric + accents + punctuation found in food names
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+',()àâäéèêëïîôöùûüÿç]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	// strings.Contains is 5-10x faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${", // Command injection
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://", // Path traversal
		// LDAP injection patterns
		"*)(", "*|(", "*)%", // LDAP injection
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:", // NoSQL injection
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateNutrient checks if a nutrient record is valid. An empty name is
// allowed here since the cleaning step keeps such rows; it is surfaced by
// ReportDataQuality instead.
func (v *DataValidatorImpl) ValidateNutrient(n *entities.Nutrient) error {
	if n == nil {
		return fmt.Errorf("nutrient is nil")
	}

	if len(n.Name) > 200 {
		return fmt.Errorf("food name too long: %d characters", len(n.Name))
	}

	values := []struct {
		label string
		value float64
	}{
		{"calories", n.Calories},
		{"proteinG", n.ProteinG},
		{"fatG", n.FatG},
		{"carbG", n.CarbG},
		{"sodiumMg", n.SodiumMg},
		{"potassiumMg", n.PotassiumMg},
		{"phosphorusMg", n.PhosphorusMg},
	}

	for _, f := range values {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("non-finite %s for %q", f.label, n.Name)
		}
		if f.value < 0 {
			return fmt.Errorf("negative %s for %q: %v", f.label, n.Name, f.value)
		}
	}

	return nil
}

// ValidateRecords performs comprehensive validation of an export batch.
// An empty batch is rejected so a broken export can never replace served data.
func (v *DataValidatorImpl) ValidateRecords(nutrients []entities.Nutrient) error {
	if len(nutrients) == 0 {
		return fmt.Errorf("no nutrient records found")
	}

	for i := range nutrients {
		if err := v.ValidateNutrient(&nutrients[i]); err != nil {
			return fmt.Errorf("invalid nutrient record at index %d: %w", i, err)
		}
	}

	return nil
}

// ReportDataQuality surveys an export batch for advisory issues: duplicate
// food names, blank names, and records that are entirely or calorically zero.
func (v *DataValidatorImpl) ReportDataQuality(nutrients []entities.Nutrient) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateNames: []string{},
	}

	seen := make(map[string]bool, len(nutrients))
	reported := make(map[string]bool)

	for i := range nutrients {
		n := &nutrients[i]

		key := strings.ToLower(strings.TrimSpace(n.Name))
		if key == "" {
			report.EmptyNames++
		} else {
			if seen[key] && !reported[key] {
				report.DuplicateNames = append(report.DuplicateNames, n.Name)
				reported[key] = true
			}
			seen[key] = true
		}

		if n.Calories == 0 {
			report.ZeroCalorieCount++
		}

		if n.Calories == 0 && n.ProteinG == 0 && n.FatG == 0 && n.CarbG == 0 &&
			n.SodiumMg == 0 && n.PotassiumMg == 0 && n.PhosphorusMg == 0 {
			report.AllZeroRecords++
		}
	}

	if len(report.DuplicateNames) > 0 {
		logging.Warn("Duplicate food names detected",
			"count", len(report.DuplicateNames),
			"names", report.DuplicateNames,
		)
	}

	return report
}

// ValidateInput validates user input strings with enhanced security
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("input too short: minimum 3 characters")
	}

	if len(input) > 50 {
		return fmt.Errorf("input too long: maximum 50 characters")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	// Check for potentially dangerous patterns using string matching (5-10x faster than regex)
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	// Allow only characters that appear in real food names: letters, numbers,
	// spaces, hyphens, apostrophes, periods, commas, parentheses, plus sign
	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, commas, parentheses, plus sign, and accented characters are allowed")
	}

	// Additional checks for repeated characters (potential DoS)
	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
