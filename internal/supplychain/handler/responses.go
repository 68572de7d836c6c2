package handler

import (
	"coldchain/internal/supplychain/events"
	"coldchain/internal/supplychain/service"
	id "coldchain/pkg/domain"
)

// BatchItemResponse reports one batch entry at its submitted index. Exactly
// one of Result and Error is set.
type BatchItemResponse struct {
	Index            int             `json:"index"`
	Result           *service.Result `json:"result,omitempty"`
	Error            string          `json:"error,omitempty"`
	ErrorDescription string          `json:"error_description,omitempty"`
}

type BatchResponse struct {
	Succeeded int                 `json:"succeeded"`
	Results   []BatchItemResponse `json:"results"`
}

type EventsResponse struct {
	ContractID id.ContractID  `json:"contract_id"`
	Events     []events.Event `json:"events"`
}
