package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/0xRadioAc7iv/go-carstore/pkg/carstore"
	"github.com/0xRadioAc7iv/go-carstore/pkg/models"
)

const dateLayout = "2006-01-02"

var errUsage = errors.New("usage")

const helpString = `
Available Commands:

ADD-MODEL <id> <name> <brand>
  Store a new car model. Quote names containing spaces.

ADD-CAR <vin> <model-id> <price> [date-start YYYY-MM-DD]
  Store a new available car.

SELL <sales-number> <vin> <cost> [sales-date YYYY-MM-DD]
  Record a sale and mark the car as sold.

LIST [available|sold]
  List cars with the given status (default: available).

INFO <vin>
  Show a car with its model and, if sold, its sale.

RENAME-VIN <vin> <new-vin>
  Change the VIN of a car.

REVERT <sales-number>
  Delete a sale and make its car available again.

TOP [n]
  Show the n best-selling models (default: 3).

BACKUP <file>
  Write a zstd-compressed tar archive of every table file.

HELP
  Show this help message.

EXIT
  Quit.
`

func execute(store *carstore.Service, cmd string, args []string) (string, error) {
	switch cmd {
	case "add-model":
		return handleAddModel(store, args)
	case "add-car":
		return handleAddCar(store, args)
	case "sell":
		return handleSell(store, args)
	case "list":
		return handleList(store, args)
	case "info":
		return handleInfo(store, args)
	case "rename-vin":
		return handleRenameVIN(store, args)
	case "revert":
		return handleRevert(store, args)
	case "top":
		return handleTop(store, args)
	case "backup":
		return handleBackup(store, args)
	case "help":
		return strings.TrimSpace(helpString), nil
	default:
		return "", fmt.Errorf("invalid command %q", cmd)
	}
}

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func render(v any) (string, error) {
	out, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parseDate(args []string, i int) (time.Time, error) {
	if len(args) <= i {
		return time.Now().UTC().Truncate(time.Second), nil
	}
	return time.Parse(dateLayout, args[i])
}

func handleAddModel(store *carstore.Service, args []string) (string, error) {
	if len(args) != 3 {
		return "", usage("add-model <id> <name> <brand>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("model id: %w", err)
	}

	model, err := store.AddModel(models.Model{ID: id, Name: args[1], Brand: args[2]})
	if err != nil {
		return "", err
	}
	return render(model)
}

func handleAddCar(store *carstore.Service, args []string) (string, error) {
	if len(args) < 3 || len(args) > 4 {
		return "", usage("add-car <vin> <model-id> <price> [date-start]")
	}
	modelID, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("model id: %w", err)
	}
	price, err := decimal.NewFromString(args[2])
	if err != nil {
		return "", fmt.Errorf("price: %w", err)
	}
	start, err := parseDate(args, 3)
	if err != nil {
		return "", fmt.Errorf("date start: %w", err)
	}

	car, err := store.AddCar(models.Car{VIN: args[0], Model: modelID, Price: price, DateStart: start})
	if err != nil {
		return "", err
	}
	return render(car)
}

func handleSell(store *carstore.Service, args []string) (string, error) {
	if len(args) < 3 || len(args) > 4 {
		return "", usage("sell <sales-number> <vin> <cost> [sales-date]")
	}
	cost, err := decimal.NewFromString(args[2])
	if err != nil {
		return "", fmt.Errorf("cost: %w", err)
	}
	when, err := parseDate(args, 3)
	if err != nil {
		return "", fmt.Errorf("sales date: %w", err)
	}

	car, err := store.SellCar(models.Sale{SalesNumber: args[0], CarVIN: args[1], SalesDate: when, Cost: cost})
	if err != nil {
		return "", err
	}
	return render(car)
}

func handleList(store *carstore.Service, args []string) (string, error) {
	if len(args) > 1 {
		return "", usage("list [available|sold]")
	}
	status := models.CarStatusAvailable
	if len(args) == 1 {
		status = models.CarStatus(strings.ToLower(args[0]))
	}

	cars, err := store.ListCars(status)
	if err != nil {
		return "", err
	}
	if len(cars) == 0 {
		return "nil", nil
	}
	return render(cars)
}

func handleInfo(store *carstore.Service, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("info <vin>")
	}

	info, err := store.GetCarInfo(args[0])
	if errors.Is(err, carstore.ErrNotFound) {
		return "nil", nil
	}
	if err != nil {
		return "", err
	}
	return render(info)
}

func handleRenameVIN(store *carstore.Service, args []string) (string, error) {
	if len(args) != 2 {
		return "", usage("rename-vin <vin> <new-vin>")
	}

	car, err := store.UpdateVIN(args[0], args[1])
	if err != nil {
		return "", err
	}
	return render(car)
}

func handleRevert(store *carstore.Service, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("revert <sales-number>")
	}

	car, err := store.RevertSale(args[0])
	if err != nil {
		return "", err
	}
	return render(car)
}

func handleTop(store *carstore.Service, args []string) (string, error) {
	if len(args) > 1 {
		return "", usage("top [n]")
	}
	n := carstore.DefaultTopModels
	if len(args) == 1 {
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil {
			return "", fmt.Errorf("n: %w", err)
		}
	}

	stats, err := store.TopModels(n)
	if err != nil {
		return "", err
	}
	if len(stats) == 0 {
		return "nil", nil
	}
	return render(stats)
}

func handleBackup(store *carstore.Service, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("backup <file>")
	}

	f, err := os.Create(args[0])
	if err != nil {
		return "", err
	}
	if err := store.Backup(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return "OK", nil
}
