package carstore_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xRadioAc7iv/go-carstore/core"
	"github.com/0xRadioAc7iv/go-carstore/internal"
	"github.com/0xRadioAc7iv/go-carstore/internal/fs"
	"github.com/0xRadioAc7iv/go-carstore/pkg/carstore"
	"github.com/0xRadioAc7iv/go-carstore/pkg/models"
)

func openStore(t *testing.T, dir string, opts ...carstore.Option) *carstore.Service {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	s, err := carstore.Open(dir, opts...)
	require.NoError(t, err)
	return s
}

func testConfig(dir string) *internal.Config {
	cfg := internal.DefaultConfig(dir, core.DefaultLineTerminator)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func date(day int) time.Time {
	return time.Date(2024, time.March, day, 10, 0, 0, 0, time.UTC)
}

func addModels(t *testing.T, s *carstore.Service, ms ...models.Model) {
	t.Helper()
	for _, m := range ms {
		_, err := s.AddModel(m)
		require.NoError(t, err)
	}
}

func addCar(t *testing.T, s *carstore.Service, vin string, model int) models.Car {
	t.Helper()
	car, err := s.AddCar(models.Car{
		VIN:       vin,
		Model:     model,
		Price:     decimal.NewFromInt(20000),
		DateStart: date(1),
	})
	require.NoError(t, err)
	return car
}

func sell(t *testing.T, s *carstore.Service, number, vin string, day int) models.Car {
	t.Helper()
	car, err := s.SellCar(models.Sale{
		SalesNumber: number,
		CarVIN:      vin,
		SalesDate:   date(day),
		Cost:        decimal.NewFromInt(19000),
	})
	require.NoError(t, err)
	return car
}

func TestAddCarDefaultsToAvailable(t *testing.T) {
	s := openStore(t, "")
	addModels(t, s, models.Model{ID: 1, Name: "Civic", Brand: "Honda"})

	car := addCar(t, s, "VIN1", 1)
	assert.Equal(t, models.CarStatusAvailable, car.Status)

	_, err := s.AddCar(models.Car{VIN: "VIN2", Model: 1, Status: "reserved"})
	assert.ErrorIs(t, err, carstore.ErrInvalidStatus)

	_, err = s.AddCar(models.Car{VIN: "VIN1", Model: 1})
	assert.ErrorIs(t, err, carstore.ErrDuplicateKey)

	for _, name := range []string{"cars.dat", "cars_index.dat", "models.dat", "models_index.dat"} {
		_, err := os.Stat(filepath.Join(s.DirectoryPath(), name))
		assert.NoError(t, err, name)
	}
}

func TestSellCar(t *testing.T) {
	s := openStore(t, "")
	addModels(t, s, models.Model{ID: 1, Name: "Civic", Brand: "Honda"})
	addCar(t, s, "VIN1", 1)
	addCar(t, s, "VIN2", 1)

	car := sell(t, s, "S1", "VIN1", 5)
	assert.Equal(t, models.CarStatusSold, car.Status)

	available, err := s.ListAvailableCars()
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "VIN2", available[0].VIN)

	sold, err := s.ListCars(models.CarStatusSold)
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, "VIN1", sold[0].VIN)

	t.Run("already sold", func(t *testing.T) {
		_, err := s.SellCar(models.Sale{SalesNumber: "S2", CarVIN: "VIN1"})
		assert.ErrorIs(t, err, carstore.ErrCarNotAvailable)
	})

	t.Run("unknown car", func(t *testing.T) {
		_, err := s.SellCar(models.Sale{SalesNumber: "S3", CarVIN: "NOPE"})
		assert.ErrorIs(t, err, carstore.ErrNotFound)
	})

	t.Run("duplicate sale number", func(t *testing.T) {
		_, err := s.SellCar(models.Sale{SalesNumber: "S1", CarVIN: "VIN2"})
		assert.ErrorIs(t, err, carstore.ErrDuplicateKey)

		info, err := s.GetCarInfo("VIN2")
		require.NoError(t, err)
		assert.Equal(t, models.CarStatusAvailable, info.Status)
	})
}

func TestListCarsRejectsUnknownStatus(t *testing.T) {
	s := openStore(t, "")

	_, err := s.ListCars("reserved")
	assert.ErrorIs(t, err, carstore.ErrInvalidStatus)

	cars, err := s.ListAvailableCars()
	require.NoError(t, err)
	assert.Empty(t, cars)
}

func TestGetCarInfo(t *testing.T) {
	s := openStore(t, "")
	addModels(t, s,
		models.Model{ID: 1, Name: "Civic", Brand: "Honda"},
		models.Model{ID: 2, Name: "Corolla", Brand: "Toyota"},
	)
	addCar(t, s, "VIN1", 1)
	addCar(t, s, "VIN2", 2)
	sell(t, s, "S1", "VIN2", 7)

	t.Run("available car has no sale", func(t *testing.T) {
		info, err := s.GetCarInfo("VIN1")
		require.NoError(t, err)
		assert.Equal(t, "VIN1", info.VIN)
		assert.Equal(t, "Civic", info.CarModelName)
		assert.Equal(t, "Honda", info.CarModelBrand)
		assert.Equal(t, models.CarStatusAvailable, info.Status)
		assert.Nil(t, info.SalesDate)
		assert.Nil(t, info.SalesCost)
	})

	t.Run("sold car carries its sale", func(t *testing.T) {
		info, err := s.GetCarInfo("VIN2")
		require.NoError(t, err)
		assert.Equal(t, "Corolla", info.CarModelName)
		assert.Equal(t, models.CarStatusSold, info.Status)
		require.NotNil(t, info.SalesDate)
		require.NotNil(t, info.SalesCost)
		assert.True(t, date(7).Equal(*info.SalesDate))
		assert.True(t, decimal.NewFromInt(19000).Equal(*info.SalesCost))
	})

	t.Run("unknown car", func(t *testing.T) {
		info, err := s.GetCarInfo("NOPE")
		assert.ErrorIs(t, err, carstore.ErrNotFound)
		assert.Nil(t, info)
	})

	t.Run("missing model", func(t *testing.T) {
		addCar(t, s, "ORPHAN", 99)

		_, err := s.GetCarInfo("ORPHAN")
		assert.ErrorIs(t, err, carstore.ErrNotFound)
	})
}

func TestUpdateVIN(t *testing.T) {
	s := openStore(t, "")
	addModels(t, s, models.Model{ID: 1, Name: "Civic", Brand: "Honda"})
	addCar(t, s, "VIN1", 1)
	addCar(t, s, "VIN2", 1)
	sell(t, s, "S1", "VIN1", 3)

	car, err := s.UpdateVIN("VIN1", "VIN9")
	require.NoError(t, err)
	assert.Equal(t, "VIN9", car.VIN)
	assert.Equal(t, models.CarStatusSold, car.Status)

	_, err = s.GetCarInfo("VIN1")
	assert.ErrorIs(t, err, carstore.ErrNotFound)

	info, err := s.GetCarInfo("VIN9")
	require.NoError(t, err)
	require.NotNil(t, info.SalesDate)
	assert.True(t, date(3).Equal(*info.SalesDate))

	reverted, err := s.RevertSale("S1")
	require.NoError(t, err)
	assert.Equal(t, "VIN9", reverted.VIN)

	t.Run("errors", func(t *testing.T) {
		_, err := s.UpdateVIN("NOPE", "X")
		assert.ErrorIs(t, err, carstore.ErrNotFound)

		_, err = s.UpdateVIN("VIN9", "VIN2")
		assert.ErrorIs(t, err, carstore.ErrDuplicateKey)
	})

	t.Run("insert after rename", func(t *testing.T) {
		addCar(t, s, "VIN3", 1)

		for _, vin := range []string{"VIN9", "VIN2", "VIN3"} {
			_, err := s.GetCarInfo(vin)
			assert.NoError(t, err, vin)
		}
	})
}

func TestRevertSale(t *testing.T) {
	s := openStore(t, "")
	addModels(t, s, models.Model{ID: 1, Name: "Civic", Brand: "Honda"})
	for i := 1; i <= 3; i++ {
		addCar(t, s, fmt.Sprintf("VIN%d", i), 1)
		sell(t, s, fmt.Sprintf("S%d", i), fmt.Sprintf("VIN%d", i), i)
	}

	car, err := s.RevertSale("S2")
	require.NoError(t, err)
	assert.Equal(t, "VIN2", car.VIN)
	assert.Equal(t, models.CarStatusAvailable, car.Status)

	info, err := s.GetCarInfo("VIN2")
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusAvailable, info.Status)
	assert.Nil(t, info.SalesDate)

	idx, err := os.ReadFile(filepath.Join(s.DirectoryPath(), "sales_index.dat"))
	require.NoError(t, err)
	assert.Equal(t, "{\"S1\":1}\n{\"S3\":2}\n", strings.ReplaceAll(string(idx), "\r\n", "\n"))

	for vin, day := range map[string]int{"VIN1": 1, "VIN3": 3} {
		info, err := s.GetCarInfo(vin)
		require.NoError(t, err)
		require.NotNil(t, info.SalesDate)
		assert.True(t, date(day).Equal(*info.SalesDate), vin)
	}

	t.Run("unknown sale", func(t *testing.T) {
		_, err := s.RevertSale("S2")
		assert.ErrorIs(t, err, carstore.ErrNotFound)
	})

	t.Run("sell again after revert", func(t *testing.T) {
		sell(t, s, "S4", "VIN2", 9)

		info, err := s.GetCarInfo("VIN2")
		require.NoError(t, err)
		require.NotNil(t, info.SalesDate)
		assert.True(t, date(9).Equal(*info.SalesDate))
	})
}

func TestSellRevertInverse(t *testing.T) {
	s := openStore(t, "")
	addModels(t, s, models.Model{ID: 1, Name: "Civic", Brand: "Honda"})
	addCar(t, s, "VIN1", 1)

	sell(t, s, "S1", "VIN1", 2)
	car, err := s.RevertSale("S1")
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusAvailable, car.Status)

	top, err := s.TopModelsBySales()
	require.NoError(t, err)
	assert.Empty(t, top)

	available, err := s.ListAvailableCars()
	require.NoError(t, err)
	require.Len(t, available, 1)
}

func TestRevertSaleRequiresSoldCar(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	addModels(t, s, models.Model{ID: 1, Name: "Civic", Brand: "Honda"})
	addCar(t, s, "VIN1", 1)
	sell(t, s, "S1", "VIN1", 2)

	// flip the car back behind the facade's back
	cars := core.NewTable[models.Car](core.CarsTableName, testConfig(dir), nil)
	car, err := cars.Get("VIN1")
	require.NoError(t, err)
	car.Status = models.CarStatusAvailable
	_, err = cars.Update("VIN1", car)
	require.NoError(t, err)

	_, err = s.RevertSale("S1")
	assert.ErrorIs(t, err, carstore.ErrCarNotSold)
}

func TestRevertSaleFailureKeepsSales(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	s := openStore(t, "", carstore.WithFileSystem(ffs))
	addModels(t, s, models.Model{ID: 1, Name: "Civic", Brand: "Honda"})
	addCar(t, s, "VIN1", 1)
	addCar(t, s, "VIN2", 1)
	sell(t, s, "S1", "VIN1", 1)
	sell(t, s, "S2", "VIN2", 2)

	ffs.AddRule("sales.dat"+".tmp", fs.Fault{FailAfterBytes: -1, FailOnRename: true})

	_, err := s.RevertSale("S1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrInjected))

	info, err := s.GetCarInfo("VIN1")
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusSold, info.Status)
	require.NotNil(t, info.SalesDate)

	ffs.ClearRules()
	_, err = s.RevertSale("S1")
	require.NoError(t, err)
}

func TestTopModelsBySales(t *testing.T) {
	s := openStore(t, "")
	addModels(t, s,
		models.Model{ID: 1, Name: "M1", Brand: "B1"},
		models.Model{ID: 2, Name: "M2", Brand: "B2"},
		models.Model{ID: 3, Name: "M3", Brand: "B3"},
	)

	sold := []int{1, 1, 2, 1, 3}
	for i, model := range sold {
		vin := fmt.Sprintf("VIN%d", i)
		addCar(t, s, vin, model)
		sell(t, s, fmt.Sprintf("S%d", i), vin, i+1)
	}

	top, err := s.TopModelsBySales()
	require.NoError(t, err)
	assert.Equal(t, []models.ModelSaleStats{
		{CarModelName: "M1", Brand: "B1", SalesNumber: 3},
		{CarModelName: "M2", Brand: "B2", SalesNumber: 1},
		{CarModelName: "M3", Brand: "B3", SalesNumber: 1},
	}, top)

	t.Run("limit", func(t *testing.T) {
		top, err := s.TopModels(1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "M1", top[0].CarModelName)

		top, err = s.TopModels(0)
		require.NoError(t, err)
		assert.Empty(t, top)
	})
}

func TestTopModelsTiesKeepEncounterOrder(t *testing.T) {
	s := openStore(t, "")
	addModels(t, s,
		models.Model{ID: 1, Name: "M1", Brand: "B"},
		models.Model{ID: 2, Name: "M2", Brand: "B"},
		models.Model{ID: 3, Name: "M3", Brand: "B"},
		models.Model{ID: 4, Name: "M4", Brand: "B"},
	)

	for i, model := range []int{4, 3, 2, 1} {
		vin := fmt.Sprintf("VIN%d", i)
		addCar(t, s, vin, model)
		sell(t, s, fmt.Sprintf("S%d", i), vin, i+1)
	}

	top, err := s.TopModelsBySales()
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "M4", top[0].CarModelName)
	assert.Equal(t, "M3", top[1].CarModelName)
	assert.Equal(t, "M2", top[2].CarModelName)
}

func TestPersistenceAcrossOpen(t *testing.T) {
	dir := t.TempDir()

	{
		s := openStore(t, dir)
		addModels(t, s, models.Model{ID: 1, Name: "Civic", Brand: "Honda"})
		addCar(t, s, "VIN1", 1)
		sell(t, s, "S1", "VIN1", 4)
	}

	// reopen
	{
		s := openStore(t, dir)
		info, err := s.GetCarInfo("VIN1")
		require.NoError(t, err)
		assert.Equal(t, models.CarStatusSold, info.Status)
		assert.Equal(t, "Civic", info.CarModelName)
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := carstore.Open(t.TempDir(), carstore.WithRecordWidth(1))
	assert.Error(t, err)

	_, err = carstore.Open(t.TempDir(), carstore.WithLineTerminator("|"))
	assert.Error(t, err)

	_, err = carstore.Open("")
	assert.Error(t, err)
}

func TestRecordTooWide(t *testing.T) {
	s := openStore(t, "", carstore.WithRecordWidth(64))

	_, err := s.AddModel(models.Model{ID: 1, Name: strings.Repeat("n", 80), Brand: "B"})
	require.Error(t, err)

	_, err = s.AddModel(models.Model{ID: 2, Name: "Short", Brand: "B"})
	require.NoError(t, err)
}
