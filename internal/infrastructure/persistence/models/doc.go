// Package models holds the GORM row types and their conversions to and from
// domain entities.
//
// - base.go: BaseModel
// - dates.go: calendar date helpers
// - organization.go: estate hierarchy (divisi, gang, blok, pemanen, tph)
// - identity.go: user profiles
// - harvest.go: harvest records
// - spb.go: delivery notes and their per-day number sequence
package models
