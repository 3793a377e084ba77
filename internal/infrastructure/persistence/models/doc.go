// Package models holds the gorm persistence models and their conversion to
// and from domain types.
//
// Line items persist their inputs and the rates applied to them. Derived
// amounts are recomputed by the fiscal calculator on load.
package models
