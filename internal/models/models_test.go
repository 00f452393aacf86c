package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "inventory-service/pkg/errors"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name    string
		current UnitStatus
		event   UnitEvent
		want    UnitStatus
		wantErr bool
	}{
		{"device start", StatusAvailable, EventStartDeviceConfig, StatusRebooted, false},
		{"device finalize", StatusRebooted, EventFinalizeDeviceConfig, StatusConfigured, false},
		{"card configure", StatusAvailable, EventConfigureCard, StatusConfigured, false},
		{"ship available", StatusAvailable, EventShip, StatusShipped, false},
		{"ship configured", StatusConfigured, EventShip, StatusShipped, false},
		{"defective from available", StatusAvailable, EventMarkDefective, StatusDefective, false},
		{"defective from rebooted", StatusRebooted, EventMarkDefective, StatusDefective, false},
		{"defective from configured", StatusConfigured, EventMarkDefective, StatusDefective, false},
		{"finalize without start", StatusAvailable, EventFinalizeDeviceConfig, "", true},
		{"start twice", StatusRebooted, EventStartDeviceConfig, "", true},
		{"configure card twice", StatusConfigured, EventConfigureCard, "", true},
		{"ship rebooted", StatusRebooted, EventShip, "", true},
		{"shipped is terminal", StatusShipped, EventMarkDefective, "", true},
		{"defective is terminal", StatusDefective, EventShip, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := NextStatus(tt.current, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestValidateManualStatus(t *testing.T) {
	assert.NoError(t, ValidateManualStatus(StatusConfigured, StatusAvailable))
	assert.NoError(t, ValidateManualStatus(StatusDefective, StatusAvailable))
	assert.NoError(t, ValidateManualStatus(StatusAvailable, StatusDefective))

	err := ValidateManualStatus(StatusShipped, StatusAvailable)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))

	err = ValidateManualStatus(StatusAvailable, StatusShipped)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))

	err = ValidateManualStatus(StatusAvailable, UnitStatus("BROKEN"))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestShippableStatus(t *testing.T) {
	assert.Equal(t, StatusConfigured, ShippableStatus(TypeDevice))
	assert.Equal(t, StatusConfigured, ShippableStatus(TypeStorageCard))
	assert.Equal(t, StatusAvailable, ShippableStatus(TypeCableUSB))
	assert.Equal(t, StatusAvailable, ShippableStatus(TypeCableEthernet))
	assert.Equal(t, StatusAvailable, ShippableStatus(TypeCableC))
}

func TestReferencePrefix(t *testing.T) {
	want := map[ProductType]string{
		TypeDevice:        "DIS",
		TypeStorageCard:   "SD",
		TypeCableUSB:      "USB",
		TypeCableEthernet: "ETH",
		TypeCableC:        "TC",
	}
	for ptype, prefix := range want {
		got, err := ReferencePrefix(ptype)
		require.NoError(t, err)
		assert.Equal(t, prefix, got)
	}

	_, err := ReferencePrefix(ProductType("UNKNOWN"))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}
