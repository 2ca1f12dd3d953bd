// Package carstore stores cars, car models and sales in fixed-width slot
// files under a single directory and implements the dealership operations on
// top of them.
//
// Example:
//
//	store, err := carstore.Open("./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err = store.AddModel(models.Model{ID: 1, Name: "Civic", Brand: "Honda"})
//	_, err = store.AddCar(models.Car{VIN: "VIN1", Model: 1, Price: decimal.NewFromInt(20000)})
//	car, err := store.SellCar(models.Sale{SalesNumber: "S1", CarVIN: "VIN1", Cost: decimal.NewFromInt(19500)})
//
// A Service is not safe for concurrent use, and a directory must only be used
// by one Service at a time.
package carstore
