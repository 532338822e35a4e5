package auth

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// permissionsJSON encodes an admin permission list for the jsonb column.
func permissionsJSON(perms []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(perms)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
