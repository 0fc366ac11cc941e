// Package address resolves Vietnamese administrative unit codes against
// immutable reference tables loaded once at startup.
package address

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Sentinel errors for address resolution.
var (
	// ErrIncompleteAddress indicates one or more codes of the
	// province/district/ward triple are empty.
	ErrIncompleteAddress = errors.New("incomplete address")

	// ErrUnknownCode indicates a code does not exist in the reference table
	// or does not belong to its stated parent.
	ErrUnknownCode = errors.New("unknown address code")
)

// Unit is one administrative unit: a province, district or ward.
type Unit struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ParentCode string `json:"parent_code,omitempty"`
}

// Names is a fully resolved location triple.
type Names struct {
	Province string
	District string
	Ward     string
}

// Resolver is a pure lookup over the reference tables. Safe for concurrent
// use; never mutated after construction.
type Resolver struct {
	provinces map[string]Unit
	districts map[string]Unit
	wards     map[string]Unit
}

// New builds a resolver from unit slices.
func New(provinces, districts, wards []Unit) *Resolver {
	r := &Resolver{
		provinces: make(map[string]Unit, len(provinces)),
		districts: make(map[string]Unit, len(districts)),
		wards:     make(map[string]Unit, len(wards)),
	}
	for _, u := range provinces {
		r.provinces[u.Code] = u
	}
	for _, u := range districts {
		r.districts[u.Code] = u
	}
	for _, u := range wards {
		r.wards[u.Code] = u
	}
	return r
}

type dataset struct {
	Provinces []Unit `json:"provinces"`
	Districts []Unit `json:"districts"`
	Wards     []Unit `json:"wards"`
}

// LoadFile builds a resolver from a JSON reference file.
func LoadFile(path string) (*Resolver, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading address data: %w", err)
	}
	return load(raw)
}

func load(raw []byte) (*Resolver, error) {
	var ds dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parsing address data: %w", err)
	}
	return New(ds.Provinces, ds.Districts, ds.Wards), nil
}

// Resolve maps a province/district/ward code triple to names. All problems
// are reported at once (joined), so a caller can surface every missing field
// in a single round trip. errors.Is matches ErrIncompleteAddress and
// ErrUnknownCode through the joined error.
func (r *Resolver) Resolve(provinceCode, districtCode, wardCode string) (*Names, error) {
	var errs []error
	if provinceCode == "" {
		errs = append(errs, fmt.Errorf("%w: province_code", ErrIncompleteAddress))
	}
	if districtCode == "" {
		errs = append(errs, fmt.Errorf("%w: district_code", ErrIncompleteAddress))
	}
	if wardCode == "" {
		errs = append(errs, fmt.Errorf("%w: ward_code", ErrIncompleteAddress))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	province, ok := r.provinces[provinceCode]
	if !ok {
		errs = append(errs, fmt.Errorf("%w: province_code %q", ErrUnknownCode, provinceCode))
	}
	district, ok := r.districts[districtCode]
	if !ok {
		errs = append(errs, fmt.Errorf("%w: district_code %q", ErrUnknownCode, districtCode))
	} else if district.ParentCode != provinceCode {
		errs = append(errs, fmt.Errorf("%w: district %q not in province %q", ErrUnknownCode, districtCode, provinceCode))
	}
	ward, ok := r.wards[wardCode]
	if !ok {
		errs = append(errs, fmt.Errorf("%w: ward_code %q", ErrUnknownCode, wardCode))
	} else if ward.ParentCode != districtCode {
		errs = append(errs, fmt.Errorf("%w: ward %q not in district %q", ErrUnknownCode, wardCode, districtCode))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Names{
		Province: province.Name,
		District: district.Name,
		Ward:     ward.Name,
	}, nil
}
