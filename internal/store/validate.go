package store

// ValidateDayKey checks the 8-digit YYYYMMDD partition key.
func ValidateDayKey(dayKey string) error {
	if len(dayKey) != 8 {
		return &ValidationError{Field: "day_key", Message: "must be 8 digits (YYYYMMDD)"}
	}
	for _, c := range dayKey {
		if c < '0' || c > '9' {
			return &ValidationError{Field: "day_key", Message: "must be 8 digits (YYYYMMDD)"}
		}
	}
	return nil
}

// ValidateQuarter checks the 1..6 quarter range.
func ValidateQuarter(quarter int) error {
	if quarter < 1 || quarter > 6 {
		return &ValidationError{Field: "quarter", Message: "must be between 1 and 6"}
	}
	return nil
}
