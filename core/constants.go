package core

import "github.com/0xRadioAc7iv/go-carstore/internal"

const (
	DefaultRecordWidth = internal.DEFAULT_RECORD_WIDTH

	DataFileExt     = ".dat"
	IndexFileSuffix = "_index"

	CarsTableName   = "cars"
	ModelsTableName = "models"
	SalesTableName  = "sales"
)

// DataFileName returns the slot file name of a table, e.g. "cars.dat".
func DataFileName(table string) string {
	return table + DataFileExt
}

// IndexFileName returns the index file name of a table, e.g. "cars_index.dat".
func IndexFileName(table string) string {
	return table + IndexFileSuffix + DataFileExt
}
