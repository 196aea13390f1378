// Package models contains GORM persistence models for the finance tables.
// Domain entities carry no ORM tags; each model converts with ToDomain and
// FromDomain, and repositories only ever read and write models.
//
// Nullable text columns map to *string so an empty domain value is stored
// as NULL rather than an empty string.
package models
