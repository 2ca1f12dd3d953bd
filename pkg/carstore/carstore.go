package carstore

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/0xRadioAc7iv/go-carstore/core"
	"github.com/0xRadioAc7iv/go-carstore/internal"
	"github.com/0xRadioAc7iv/go-carstore/pkg/models"
)

// DefaultTopModels is the number of entries returned by TopModelsBySales.
const DefaultTopModels = 3

type Service struct {
	cfg *internal.Config
	log *core.Logger

	cars   *core.Table[models.Car]
	models *core.Table[models.Model]
	sales  *core.Table[models.Sale]
}

// Open prepares a Service rooted at directoryPath, creating the directory if
// needed. Table files are created on first write.
func Open(directoryPath string, opts ...Option) (*Service, error) {
	cfg := internal.DefaultConfig(directoryPath, core.DefaultLineTerminator)
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 0 (special bit - ignored), 7 (rwx - owner), 5 (r-x - user group), 5 (r-x - others)
	if err := cfg.FS.MkdirAll(cfg.DirectoryPath, 0755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", cfg.DirectoryPath, err)
	}

	log := core.FromSlog(cfg.Logger)

	return &Service{
		cfg:    cfg,
		log:    log,
		cars:   core.NewTable[models.Car](core.CarsTableName, cfg, log),
		models: core.NewTable[models.Model](core.ModelsTableName, cfg, log),
		sales:  core.NewTable[models.Sale](core.SalesTableName, cfg, log),
	}, nil
}

func (s *Service) DirectoryPath() string { return s.cfg.DirectoryPath }

func (s *Service) AddModel(model models.Model) (models.Model, error) {
	return s.models.Insert(model)
}

// AddCar stores a new car. An empty status is stored as available.
func (s *Service) AddCar(car models.Car) (models.Car, error) {
	if car.Status == "" {
		car.Status = models.CarStatusAvailable
	}
	if !car.Status.Valid() {
		return car, fmt.Errorf("%w: %q", ErrInvalidStatus, car.Status)
	}
	return s.cars.Insert(car)
}

// SellCar records sale and marks the sold car. The car must be available.
func (s *Service) SellCar(sale models.Sale) (models.Car, error) {
	car, err := s.cars.Get(sale.CarVIN)
	if err != nil {
		return models.Car{}, err
	}
	if car.Status != models.CarStatusAvailable {
		return car, fmt.Errorf("%w: %s is %s", ErrCarNotAvailable, car.VIN, car.Status)
	}

	if _, err := s.sales.Insert(sale); err != nil {
		return car, err
	}

	car.Status = models.CarStatusSold
	if _, err := s.cars.Update(car.VIN, car); err != nil {
		return car, err
	}

	s.log.Info("car sold", "vin", car.VIN, "sales_number", sale.SalesNumber)
	return car, nil
}

// ListCars returns every car whose status equals status, in insertion order.
func (s *Service) ListCars(status models.CarStatus) ([]models.Car, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	cars := []models.Car{}
	for car, err := range s.cars.Scan() {
		if err != nil {
			return nil, err
		}
		if car.Status == status {
			cars = append(cars, car)
		}
	}
	return cars, nil
}

func (s *Service) ListAvailableCars() ([]models.Car, error) {
	return s.ListCars(models.CarStatusAvailable)
}

// GetCarInfo joins the car with its model and, if it was sold, with the sale
// referencing its VIN.
func (s *Service) GetCarInfo(vin string) (*models.CarFullInfo, error) {
	car, err := s.cars.Get(vin)
	if err != nil {
		return nil, err
	}

	model, err := s.models.Get(models.ModelKey(car.Model))
	if err != nil {
		return nil, fmt.Errorf("car %s: %w", vin, err)
	}

	var sale *models.Sale
	if car.Status == models.CarStatusSold {
		sale, err = s.findSaleByVIN(vin)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, fmt.Errorf("car %s is sold: sale %w", vin, core.ErrNotFound)
		}
	}

	info := models.NewCarFullInfo(car, model, sale)
	return &info, nil
}

func (s *Service) findSaleByVIN(vin string) (*models.Sale, error) {
	for sale, err := range s.sales.Scan() {
		if err != nil {
			return nil, err
		}
		if sale.CarVIN == vin {
			return &sale, nil
		}
	}
	return nil, nil
}

// UpdateVIN renames a car. Sales referencing the old VIN are updated in place
// so they keep pointing at the car.
func (s *Service) UpdateVIN(vin, newVIN string) (models.Car, error) {
	car, err := s.cars.Get(vin)
	if err != nil {
		return models.Car{}, err
	}

	car.VIN = newVIN
	if _, err := s.cars.Rename(vin, car); err != nil {
		return car, err
	}
	if vin == newVIN {
		return car, nil
	}

	var linked []models.Sale
	for sale, err := range s.sales.Scan() {
		if err != nil {
			return car, err
		}
		if sale.CarVIN == vin {
			linked = append(linked, sale)
		}
	}
	for _, sale := range linked {
		sale.CarVIN = newVIN
		if _, err := s.sales.Update(sale.SalesNumber, sale); err != nil {
			return car, fmt.Errorf("relink sale %s: %w", sale.SalesNumber, err)
		}
	}

	s.log.Info("vin updated", "old_vin", vin, "new_vin", newVIN, "sales_relinked", len(linked))
	return car, nil
}

// RevertSale deletes a sale and makes its car available again.
func (s *Service) RevertSale(salesNumber string) (models.Car, error) {
	sale, err := s.sales.Get(salesNumber)
	if err != nil {
		return models.Car{}, err
	}

	car, err := s.cars.Get(sale.CarVIN)
	if err != nil {
		return models.Car{}, fmt.Errorf("sale %s: %w", salesNumber, err)
	}
	if car.Status != models.CarStatusSold {
		return car, fmt.Errorf("%w: %s is %s", ErrCarNotSold, car.VIN, car.Status)
	}

	if _, err := s.sales.Delete(salesNumber); err != nil {
		return car, err
	}

	car.Status = models.CarStatusAvailable
	if _, err := s.cars.Update(car.VIN, car); err != nil {
		return car, err
	}

	s.log.Info("sale reverted", "vin", car.VIN, "sales_number", salesNumber)
	return car, nil
}

func (s *Service) TopModelsBySales() ([]models.ModelSaleStats, error) {
	return s.TopModels(DefaultTopModels)
}

// TopModels returns the n models with the most sales, most sold first. Models
// with equal counts keep the order in which their first sale appears.
func (s *Service) TopModels(n int) ([]models.ModelSaleStats, error) {
	if n < 1 {
		return []models.ModelSaleStats{}, nil
	}

	carIndex, err := s.cars.LoadIndex()
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	var order []int
	for sale, err := range s.sales.Scan() {
		if err != nil {
			return nil, err
		}
		car, err := s.cars.GetWith(carIndex, sale.CarVIN)
		if err != nil {
			return nil, fmt.Errorf("sale %s: %w", sale.SalesNumber, err)
		}
		if _, seen := counts[car.Model]; !seen {
			order = append(order, car.Model)
		}
		counts[car.Model]++
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(counts[b], counts[a])
	})
	order = order[:min(n, len(order))]

	modelIndex, err := s.models.LoadIndex()
	if err != nil {
		return nil, err
	}

	stats := make([]models.ModelSaleStats, 0, len(order))
	for _, id := range order {
		model, err := s.models.GetWith(modelIndex, models.ModelKey(id))
		if err != nil {
			return nil, err
		}
		stats = append(stats, models.ModelSaleStats{
			CarModelName: model.Name,
			Brand:        model.Brand,
			SalesNumber:  counts[id],
		})
	}
	return stats, nil
}
