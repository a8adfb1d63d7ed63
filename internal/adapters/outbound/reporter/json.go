package reporter

import (
	"encoding/json"

	"github.com/abdidvp/dbtguard/internal/domain"
)

// JSON renders the full result as indented JSON, the machine-readable
// format for CI consumers.
func JSON(result *domain.ValidationResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
