package contracts

// Cohort represents the funds of one category eligible for ranking,
// built by the classifier from the full scheme list.
type Cohort struct {
	Category string            `json:"category"`
	Funds    []Fund            `json:"funds"`
	Excluded map[string]string `json:"excluded,omitempty"` // scheme code: reason
}

// Contains checks if a scheme code is in the cohort.
func (c *Cohort) Contains(schemeCode string) bool {
	for _, f := range c.Funds {
		if f.SchemeCode == schemeCode {
			return true
		}
	}
	return false
}

// IsExcluded checks if a scheme code was excluded with reason.
func (c *Cohort) IsExcluded(schemeCode string) (bool, string) {
	reason, exists := c.Excluded[schemeCode]
	return exists, reason
}

// Count returns the number of eligible funds.
func (c *Cohort) Count() int {
	return len(c.Funds)
}
