package dto

import "github.com/SscSPs/ledger_engine/internal/core/domain"

type SetSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ListSettingsResponse struct {
	Settings []domain.Setting `json:"settings"`
}
