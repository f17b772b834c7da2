package errors

import "unicode"

// ValidateNodeID validates a node identifier for the graph layers.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains control characters")
		}
	}

	return nil
}

// ValidateRecords validates a parallel species/collectors record batch.
//
// The two lists must have equal length; every species id and every collector
// id must pass ValidateNodeID. Empty collector teams are allowed (a record
// may carry a species observation with no attributed collector).
func ValidateRecords(species []string, collectors [][]string) error {
	if len(species) != len(collectors) {
		return New(ErrCodeInvalidRecords,
			"species and collectors lists differ in length: %d != %d", len(species), len(collectors))
	}

	for i, sp := range species {
		if err := ValidateNodeID(sp); err != nil {
			return Wrap(ErrCodeInvalidRecords, err, "record %d: bad species id", i)
		}
	}
	for i, team := range collectors {
		for _, col := range team {
			if err := ValidateNodeID(col); err != nil {
				return Wrap(ErrCodeInvalidRecords, err, "record %d: bad collector id", i)
			}
		}
	}
	return nil
}
