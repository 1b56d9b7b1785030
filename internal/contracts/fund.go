package contracts

// Fund identifies a mutual fund scheme.
type Fund struct {
	SchemeCode string `json:"scheme_code"`
	Name       string `json:"name"`
	FundHouse  string `json:"fund_house,omitempty"`
	Category   string `json:"category,omitempty"`
}
