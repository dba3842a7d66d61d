package complexity

// Config analyzer settings. All knobs have workable defaults so the
// analyzer can be constructed from an empty config.
type Config struct {
	// Budget maximum allowed score; 0 disables the budget check at the
	// controller level (the analyzer itself never rejects).
	Budget int `mapstructure:"budget"`

	// MaxDepth recursion ceiling, enforced independently of the score to
	// bound CPU on pathological documents.
	MaxDepth int `mapstructure:"max_depth"`

	// MaxFragmentExpansions total fragment spreads inlined per document.
	MaxFragmentExpansions int `mapstructure:"max_fragment_expansions"`

	// ExpensiveFields substrings marking known-expensive operations
	// (free-text search, aggregation, export, report generation).
	ExpensiveFields []string `mapstructure:"expensive_fields"`

	// PaginationArguments argument names treated as page-size parameters.
	PaginationArguments []string `mapstructure:"pagination_arguments"`
}

// ApplyDefaults fills zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 25
	}
	if c.MaxFragmentExpansions <= 0 {
		c.MaxFragmentExpansions = 100
	}
	if len(c.ExpensiveFields) == 0 {
		c.ExpensiveFields = []string{"search", "aggregate", "export", "report"}
	}
	if len(c.PaginationArguments) == 0 {
		c.PaginationArguments = []string{"first", "last", "limit", "pageSize", "page_size"}
	}
}
