package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CarFullInfo joins a car with its model and, once sold, its sale. SalesDate
// and SalesCost are nil for cars that have not been sold.
type CarFullInfo struct {
	VIN           string           `json:"vin"`
	CarModelName  string           `json:"car_model_name"`
	CarModelBrand string           `json:"car_model_brand"`
	Price         decimal.Decimal  `json:"price"`
	DateStart     time.Time        `json:"date_start"`
	Status        CarStatus        `json:"status"`
	SalesDate     *time.Time       `json:"sales_date"`
	SalesCost     *decimal.Decimal `json:"sales_cost"`
}

// NewCarFullInfo composes the view. sale may be nil.
func NewCarFullInfo(car Car, model Model, sale *Sale) CarFullInfo {
	info := CarFullInfo{
		VIN:           car.VIN,
		CarModelName:  model.Name,
		CarModelBrand: model.Brand,
		Price:         car.Price,
		DateStart:     car.DateStart,
		Status:        car.Status,
	}
	if sale != nil {
		date, cost := sale.SalesDate, sale.Cost
		info.SalesDate = &date
		info.SalesCost = &cost
	}
	return info
}

type ModelSaleStats struct {
	CarModelName string `json:"car_model_name"`
	Brand        string `json:"brand"`
	SalesNumber  int    `json:"sales_number"`
}
