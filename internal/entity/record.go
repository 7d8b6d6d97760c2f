package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
)

// ShipmentFields are the structured values extracted from a receipt image.
type ShipmentFields struct {
	Code        string `json:"code"`
	SenderName  string `json:"sender_name"`
	PhoneNumber string `json:"phone_number"`
	Province    string `json:"province"`
	Price       string `json:"price"`
	CompanyName string `json:"company_name"`
}

// Merge fills any field of f that is empty with the corresponding value
// from other. Existing values are never overwritten.
func (f *ShipmentFields) Merge(other ShipmentFields) {
	if f.Code == "" {
		f.Code = other.Code
	}
	if f.SenderName == "" {
		f.SenderName = other.SenderName
	}
	if f.PhoneNumber == "" {
		f.PhoneNumber = other.PhoneNumber
	}
	if f.Province == "" {
		f.Province = other.Province
	}
	if f.Price == "" {
		f.Price = other.Price
	}
	if f.CompanyName == "" {
		f.CompanyName = other.CompanyName
	}
}

// Override replaces fields of f with non-empty values from other.
func (f *ShipmentFields) Override(other ShipmentFields) {
	if other.Code != "" {
		f.Code = other.Code
	}
	if other.SenderName != "" {
		f.SenderName = other.SenderName
	}
	if other.PhoneNumber != "" {
		f.PhoneNumber = other.PhoneNumber
	}
	if other.Province != "" {
		f.Province = other.Province
	}
	if other.Price != "" {
		f.Price = other.Price
	}
	if other.CompanyName != "" {
		f.CompanyName = other.CompanyName
	}
}

// ExtractionRecord is the central entity: one receipt image moving through
// the pipeline from ingestion to a reviewed, structured shipment entry.
type ExtractionRecord struct {
	ID     uuid.UUID
	Number int // ordinal within the session, display ordering
	File   *SourceFile
	Status constants.RecordStatus

	ShipmentFields
	ExtractedText string
	Confidence    int // 0..100
	Method        constants.ExtractionMethod

	// Submitted is one-way: once true it never reverts.
	Submitted    bool
	AddedAt      time.Time
	ProcessingID string // distinguishes concurrent ingestion attempts
	ErrorMessage string
}

// RequiredComplete reports whether the three mandatory fields are present.
// The record collection auto-promotes status to completed as soon as this
// holds, whether the values came from extraction or user edits.
func (r *ExtractionRecord) RequiredComplete() bool {
	return r.Code != "" && r.SenderName != "" && r.PhoneNumber != ""
}

// Clone returns a shallow copy of the record. The source file is shared;
// it is immutable by contract.
func (r *ExtractionRecord) Clone() *ExtractionRecord {
	cp := *r
	return &cp
}
