/*
	Basic Script that seeds a carstore directory with random models, cars and sales.
*/

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xRadioAc7iv/go-carstore/pkg/carstore"
	"github.com/0xRadioAc7iv/go-carstore/pkg/models"
)

const (
	totalModels = 20
	totalCars   = 500

	// Share of cars that get sold, and of those, share reverted afterwards
	soldPercent     = 40
	revertedPercent = 10

	progressEvery = 100
)

var brands = []string{"Tesla", "Toyota", "Skoda", "Volvo", "Kia", "Renault"}

func main() {
	dir := flag.String("dir", "./carstore-data", "Directory Path to be seeded")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	start := time.Now()
	fmt.Printf("Seeding %v\n", *dir)

	store, err := carstore.Open(*dir)
	if err != nil {
		fmt.Println("open error:", err)
		return
	}

	rng := rand.New(rand.NewSource(*seed))

	if err := seedModels(store, rng); err != nil {
		fmt.Println("model error:", err)
		return
	}

	sold, err := seedCars(store, rng)
	if err != nil {
		fmt.Println("car error:", err)
		return
	}

	reverted := 0
	for i, salesNumber := range sold {
		if rng.Intn(100) >= revertedPercent {
			continue
		}
		if _, err := store.RevertSale(salesNumber); err != nil {
			fmt.Printf("revert %s error: %v\n", salesNumber, err)
			return
		}
		reverted++

		if (i+1)%progressEvery == 0 {
			fmt.Printf("checked %d sales for revert\n", i+1)
		}
	}

	top, err := store.TopModelsBySales()
	if err != nil {
		fmt.Println("top models error:", err)
		return
	}

	fmt.Printf("Inserted %d models, %d cars, %d sales (%d reverted) in %v\n",
		totalModels, totalCars, len(sold), reverted, time.Since(start))
	for _, stat := range top {
		fmt.Printf("  %s %s: %d\n", stat.Brand, stat.CarModelName, stat.SalesNumber)
	}
}

func seedModels(store *carstore.Service, rng *rand.Rand) error {
	for id := 1; id <= totalModels; id++ {
		model := models.Model{
			ID:    id,
			Name:  fmt.Sprintf("Model-%02d", id),
			Brand: brands[rng.Intn(len(brands))],
		}
		if _, err := store.AddModel(model); err != nil {
			return err
		}
	}
	return nil
}

// seedCars adds totalCars cars and sells some of them, returning the sales
// numbers in insertion order.
func seedCars(store *carstore.Service, rng *rand.Rand) ([]string, error) {
	var sold []string
	epoch := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < totalCars; i++ {
		price := decimal.New(int64(15000+rng.Intn(60000)), 0)
		car := models.Car{
			VIN:       makeVIN(rng),
			Model:     1 + rng.Intn(totalModels),
			Price:     price,
			DateStart: epoch.AddDate(0, 0, rng.Intn(365)),
		}
		if _, err := store.AddCar(car); err != nil {
			return nil, err
		}

		if rng.Intn(100) < soldPercent {
			sale := models.Sale{
				SalesNumber: fmt.Sprintf("S-%05d", len(sold)+1),
				CarVIN:      car.VIN,
				SalesDate:   car.DateStart.AddDate(0, 0, 1+rng.Intn(60)),
				Cost:        price.Sub(decimal.New(int64(rng.Intn(2000)), 0)),
			}
			if _, err := store.SellCar(sale); err != nil {
				return nil, err
			}
			sold = append(sold, sale.SalesNumber)
		}

		if (i+1)%progressEvery == 0 {
			fmt.Printf("inserted %d cars\n", i+1)
		}
	}
	return sold, nil
}

const vinAlphabet = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"

// makeVIN returns a random 17 character VIN. Collisions are not checked.
func makeVIN(rng *rand.Rand) string {
	b := make([]byte, 17)
	for i := range b {
		b[i] = vinAlphabet[rng.Intn(len(vinAlphabet))]
	}
	return string(b)
}
