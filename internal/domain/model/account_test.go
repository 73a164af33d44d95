package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestAccount_WithSnapshot(t *testing.T) {
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	observed := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	base := Account{
		ID:           7,
		Name:         "box",
		Location:     "KL-DC1",
		CreationDate: ptrTime(old),
		ValidUntil:   ptrTime(old),
		IP:           "2602::1",
		CookieStatus: CookieStatusInvalid,
	}

	tests := []struct {
		name         string
		snap         Snapshot
		wantLocation string
		wantCreation *time.Time
		wantIP       string
		wantValid    *time.Time
	}{
		{
			name:         "all present overwrites",
			snap:         Snapshot{ValidUntil: ptrTime(newer), IP: "2602::2", Location: "SG-1", CreationDate: ptrTime(newer), ObservedAt: observed},
			wantLocation: "SG-1",
			wantCreation: ptrTime(newer),
			wantIP:       "2602::2",
			wantValid:    ptrTime(newer),
		},
		{
			name:         "absent location and creation are sticky",
			snap:         Snapshot{ValidUntil: ptrTime(newer), IP: "2602::2", ObservedAt: observed},
			wantLocation: "KL-DC1",
			wantCreation: ptrTime(old),
			wantIP:       "2602::2",
			wantValid:    ptrTime(newer),
		},
		{
			name:         "valid until and ip are overwritten even when absent",
			snap:         Snapshot{Location: "SG-1", ObservedAt: observed},
			wantLocation: "SG-1",
			wantCreation: ptrTime(old),
			wantIP:       "",
			wantValid:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.WithSnapshot(tt.snap)

			assert.Equal(t, int64(7), got.ID)
			assert.Equal(t, "box", got.Name)
			assert.Equal(t, tt.wantLocation, got.Location)
			assert.Equal(t, tt.wantCreation, got.CreationDate)
			assert.Equal(t, tt.wantIP, got.IP)
			assert.Equal(t, tt.wantValid, got.ValidUntil)
			assert.Equal(t, CookieStatusNormal, got.CookieStatus)
			require.NotNil(t, got.UpdateTime)
			assert.True(t, got.UpdateTime.Equal(observed))
		})
	}

	// The receiver is a value; the original must be untouched.
	assert.Equal(t, CookieStatusInvalid, base.CookieStatus)
	assert.Nil(t, base.UpdateTime)
}

func TestAccount_WithFailure(t *testing.T) {
	valid := time.Date(2025, 12, 5, 14, 30, 0, 0, time.UTC)
	observed := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	base := Account{
		ValidUntil:   ptrTime(valid),
		IP:           "192.168.1.100",
		Location:     "KL-DC1",
		CookieStatus: CookieStatusNormal,
	}

	got := base.WithFailure(observed)

	assert.Equal(t, CookieStatusInvalid, got.CookieStatus)
	require.NotNil(t, got.UpdateTime)
	assert.True(t, got.UpdateTime.Equal(observed))
	assert.Equal(t, ptrTime(valid), got.ValidUntil)
	assert.Equal(t, "192.168.1.100", got.IP)
	assert.Equal(t, "KL-DC1", got.Location)
}

func TestAccountUpdate_IsEmpty(t *testing.T) {
	name := "x"
	assert.True(t, AccountUpdate{}.IsEmpty())
	assert.False(t, AccountUpdate{Name: &name}.IsEmpty())
}
