package photos

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	assetTable       = "ZASSET"
	legacyAssetTable = "ZGENERICASSET"
	attributesTable  = "ZADDITIONALASSETATTRIBUTES"

	modernGeneration = "ZASSET (iOS 15+)"
	legacyGeneration = "ZGENERICASSET (iOS 13-14)"
)

// SchemaState is the outcome of inspecting a photo library.
type SchemaState int

const (
	SchemaCompatible SchemaState = iota
	SchemaLegacy                 // a known older generation we do not read
	SchemaUnknown
)

func (s SchemaState) String() string {
	switch s {
	case SchemaCompatible:
		return "compatible"
	case SchemaLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// SchemaError reports a photo library that cannot be read.
type SchemaError struct {
	State      SchemaState
	Generation string // table generation found, empty when unknown
	Err        error  // underlying query error, if any
}

func (e *SchemaError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("photo library schema incompatible: %v", e.Err)
	case e.State == SchemaLegacy:
		return fmt.Sprintf("photo library uses the %s schema, only %s is supported", e.Generation, modernGeneration)
	default:
		return fmt.Sprintf("unrecognized photo library schema: neither %s nor %s table found", assetTable, legacyAssetTable)
	}
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// DetectSchema classifies the library by the asset table it contains.
func DetectSchema(db *gorm.DB) SchemaState {
	m := db.Migrator()
	switch {
	case m.HasTable(assetTable):
		return SchemaCompatible
	case m.HasTable(legacyAssetTable):
		return SchemaLegacy
	default:
		return SchemaUnknown
	}
}

// VerifySchema returns a *SchemaError unless the library is compatible.
// Only table existence is checked here.
func VerifySchema(db *gorm.DB) error {
	switch state := DetectSchema(db); state {
	case SchemaCompatible:
		return nil
	case SchemaLegacy:
		return &SchemaError{State: state, Generation: legacyGeneration}
	default:
		return &SchemaError{State: state}
	}
}
