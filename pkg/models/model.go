package models

import "strconv"

type Model struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

func (m Model) Key() string { return ModelKey(m.ID) }

// ModelKey is the index key of the model with the given ID.
func ModelKey(id int) string { return strconv.Itoa(id) }
