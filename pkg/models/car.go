// Package models defines the records stored by carstore and the read-only
// views composed from them.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CarStatus string

const (
	CarStatusAvailable CarStatus = "available"
	CarStatusSold      CarStatus = "sold"
)

func (s CarStatus) Valid() bool {
	switch s {
	case CarStatusAvailable, CarStatusSold:
		return true
	default:
		return false
	}
}

type Car struct {
	VIN       string          `json:"vin"`
	Model     int             `json:"model"` // Model.ID
	Price     decimal.Decimal `json:"price"`
	DateStart time.Time       `json:"date_start"`
	Status    CarStatus       `json:"status"`
}

func (c Car) Key() string { return c.VIN }
