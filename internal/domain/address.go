package domain

import (
	"encoding/json"
	"strings"
)

// Address is the canonical structured delivery address. Coordinates are
// plain WGS84 degrees; zero means unknown.
type Address struct {
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (a Address) Empty() bool {
	return strings.TrimSpace(a.Street) == ""
}

// AddressInput accepts either a bare string or a structured address on the
// wire. A bare string becomes the street line with city/state/zip empty and
// coordinates zero; nothing is geocoded or rejected. Clients that care about
// the structured fields must send the object form.
type AddressInput struct {
	raw        string
	structured *Address
}

func (in *AddressInput) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		in.raw = s
		in.structured = nil
		return nil
	}

	var a Address
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	in.structured = &a
	return nil
}

func (in AddressInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.Normalize())
}

// Normalize resolves the string-or-object ambiguity into one Address value.
func (in AddressInput) Normalize() Address {
	if in.structured != nil {
		return *in.structured
	}
	return Address{Street: strings.TrimSpace(in.raw)}
}

func (in AddressInput) Empty() bool {
	return in.Normalize().Empty()
}

// StructuredAddress builds an AddressInput from an already-normalized
// address, mainly for tests and internal callers.
func StructuredAddress(a Address) AddressInput {
	return AddressInput{structured: &a}
}

// RawAddress builds an AddressInput from the bare-string form.
func RawAddress(s string) AddressInput {
	return AddressInput{raw: s}
}
