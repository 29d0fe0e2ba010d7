package models

import "time"

// Package is one physical parcel of a label.
type Package struct {
	ID          string    `json:"id"`
	LabelID     string    `json:"labelId"`
	Description *string   `json:"description"`
	Weight      float64   `json:"weight"`
	Length      float64   `json:"length"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Value       *float64  `json:"value"`
	Contents    *string   `json:"contents"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
