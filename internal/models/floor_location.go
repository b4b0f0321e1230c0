package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FloorLocation is a QR-addressable floor within a facility.
type FloorLocation struct {
	ScopedBase  `bson:",inline"`
	FloorNumber int    `bson:"floorNumber" json:"floorNumber"`
	FloorName   string `bson:"floorName" json:"floorName"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	QRCode      string `bson:"qrCode" json:"qrCode"`
	IsActive    bool   `bson:"isActive" json:"isActive"`
}

// UnmarshalJSON treats a missing isActive as true so a floor is scannable as soon
// as it is created.
func (l *FloorLocation) UnmarshalJSON(data []byte) error {
	type plain FloorLocation
	decoded := plain{IsActive: true}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*l = FloorLocation(decoded)
	return nil
}

func (l *FloorLocation) Validate() error {
	if l.FacilityID.IsZero() {
		return errors.New("facilityId is required")
	}
	if strings.TrimSpace(l.FloorName) == "" {
		return errors.New("floorName is required")
	}
	if l.QRCode == "" {
		return errors.New("qrCode is required")
	}
	return nil
}

// BuildQRCode renders the QR payload FL_{facilityId}_{floorNumber}_{suffix}.
// The suffix is expected to be 8 uppercase hex characters.
func BuildQRCode(l *FloorLocation, suffix string) string {
	return fmt.Sprintf("FL_%s_%d_%s", l.FacilityID.Hex(), l.FloorNumber, strings.ToUpper(suffix))
}

// QRSuffix returns the random tail of a code built by BuildQRCode.
func QRSuffix(code string) string {
	if i := strings.LastIndex(code, "_"); i >= 0 {
		return code[i+1:]
	}
	return ""
}
