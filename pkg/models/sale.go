package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	SalesNumber string          `json:"sales_number"`
	CarVIN      string          `json:"car_vin"`
	SalesDate   time.Time       `json:"sales_date"`
	Cost        decimal.Decimal `json:"cost"`
}

func (s Sale) Key() string { return s.SalesNumber }
