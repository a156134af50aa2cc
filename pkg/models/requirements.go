package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// MarshalRequirements encodes a requirements list into the JSON column
// representation. A nil or empty list encodes as an empty JSON array so
// round trips never produce null.
func MarshalRequirements(requirements []string) datatypes.JSON {
	if requirements == nil {
		requirements = []string{}
	}
	data, err := json.Marshal(requirements)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}

// RequirementsList decodes the JSON requirements column back into a slice
func (j *Job) RequirementsList() []string {
	if len(j.Requirements) == 0 {
		return []string{}
	}
	var requirements []string
	if err := json.Unmarshal(j.Requirements, &requirements); err != nil {
		return []string{}
	}
	return requirements
}
