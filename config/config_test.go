package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVICE_FEE_RATE", "")
	t.Setenv("RESTAURANT_TIMEZONE", "Asia/Colombo")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.05, cfg.Business.ServiceFeeRate)
	assert.Equal(t, 90, cfg.Business.ReservationMinutes)
	assert.Equal(t, "Asia/Colombo", cfg.Business.Location.String())
	assert.Equal(t, "notifications_fanout", cfg.Broker.Exchange)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVICE_FEE_RATE", "1.5")
	t.Setenv("DEFAULT_RESERVATION_MINUTES", "400")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "SERVICE_FEE_RATE")
	assert.Contains(t, err.Error(), "DEFAULT_RESERVATION_MINUTES")
}

func TestDSNPrefersURL(t *testing.T) {
	d := Database{URL: "postgres://u:p@db/x", Host: "ignored"}
	assert.Equal(t, "postgres://u:p@db/x", d.DSN())

	d = Database{Host: "db", Port: "5432", User: "u", Password: "p", Name: "x"}
	assert.Equal(t, "host=db user=u password=p dbname=x port=5432 sslmode=disable", d.DSN())
}

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(`
categories: [Rice, Drinks]
deliveryZones:
  - name: Colombo 03
    deliveryFee: 150
    estimatedTime: 30
    status: active
operatingHours:
  - day: 1
    open: "10:00"
    close: "22:00"
    isOpen: true
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Rice", "Drinks"}, seed.Categories)
	require.Len(t, seed.DeliveryZones, 1)
	assert.Equal(t, 150.0, seed.DeliveryZones[0].DeliveryFee)
	assert.True(t, seed.OperatingHours[0].IsOpen)

	_, err = ParseSeed([]byte("operatingHours:\n  - day: 9\n"))
	assert.Error(t, err)
}

func TestShippedSeedFileParses(t *testing.T) {
	seed, err := LoadSeed("../seed.yaml")
	require.NoError(t, err)
	require.NotNil(t, seed.Admin)
	assert.Len(t, seed.OperatingHours, 7)
	assert.NotEmpty(t, seed.Menu)
}
