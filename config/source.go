package config

// Source is a configuration data source. Sources are merged by the Loader
// in priority order; higher priority overrides lower.
type Source interface {
	// Name identifies the source in logs and error messages.
	Name() string

	// Priority orders merging; higher wins.
	Priority() int

	// Load returns a flat map with dot-separated keys.
	Load() (map[string]interface{}, error)
}

// Validator is implemented by package configs that can check themselves
// after unmarshalling.
type Validator interface {
	Validate() error
}

// ValidateAll runs Validate on each config, stopping at the first error.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
