package domain

import "time"

// Well-known setting keys.
const (
	SettingBaseCurrency    = "base_currency"
	SettingFiscalYearStart = "fiscal_year_start"
	SettingNumberFormat    = "number_format"
)

const DefaultBaseCurrency = "USD"

type Setting struct {
	Key           string    `json:"key"`
	Value         string    `json:"value"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
