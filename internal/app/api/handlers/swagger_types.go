package handlers

import (
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statistics"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespHealth struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    map[string]string        `json:"data"`
}

type RespRecordStateChange struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    RecordStateChangeResponse `json:"data"`
}

type RespStateChange struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.StateChange       `json:"data"`
}

type RespStateChanges struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.StateChange     `json:"data"`
}

// RespListStateChanges wraps ScanStateChangesResponse in the standard envelope.
type RespListStateChanges struct {
	Code    response.APIResponseCode             `json:"code"`
	Message string                               `json:"message"`
	Data    statechange.ScanStateChangesResponse `json:"data"`
}

// RespStateChangeStatistic wraps StateChangeStatisticResponse in the standard envelope.
type RespStateChangeStatistic struct {
	Code    response.APIResponseCode                `json:"code"`
	Message string                                  `json:"message"`
	Data    statistics.StateChangeStatisticResponse `json:"data"`
}

// RespIssueAPIToken wraps IssueAPITokenResponse in the standard envelope.
type RespIssueAPIToken struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    IssueAPITokenResponse    `json:"data"`
}
