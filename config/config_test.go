package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testYAML = `
input:
  series_path: data/series.csv
battery:
  capacity_kwh: 20
  power_limit_kw: 10
  efficiency: 0.9
  min_soc: 0.1
  max_soc: 0.9
  initial_soc: 0.5
tariff:
  day_rate_nok: 0.3059
  night_rate_nok: 0.2319
  summer_tax_nok: 0.1541
  winter_tax_nok: 0.0891
  brackets:
    - { lower_kw: 0, upper_kw: 5, cost_nok: 160 }
    - { lower_kw: 5, upper_kw: 10, cost_nok: 265 }
    - { lower_kw: 10, upper_kw: 0, cost_nok: 420 }
degradation:
  cycle_life: 6000
optimizer:
  mode: rolling
  horizon_hours: 12
  tariff_aware: true
  battery_cost_nok_per_kwh: 3500
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", testYAML))
	require.NoError(t, err)
	require.Equal(t, "data/series.csv", cfg.Input.SeriesPath)

	bat := cfg.Battery.State()
	require.Equal(t, 20.0, bat.CapacityKWh)
	require.Equal(t, 10.0, bat.EnergyKWh)

	// Embedded optimizer settings flatten into the section's keys; a decode
	// that drops them would leave the defaults (24h horizon, tariff-unaware,
	// zero wear cost) in place.
	require.Equal(t, "rolling", cfg.Optimizer.Mode)
	require.Equal(t, 12.0, cfg.Optimizer.HorizonHours)
	require.True(t, cfg.Optimizer.TariffAware)
	require.Equal(t, 3500.0, cfg.Optimizer.BatteryCostNOKPerKWh)

	// Omitted fields get defaults.
	require.Equal(t, 6, cfg.Tariff.DayStartHour)
	require.Equal(t, 22, cfg.Tariff.DayEndHour)
	require.Equal(t, 6000.0, cfg.Degradation.CycleLife)
	require.Equal(t, 15.0, cfg.Degradation.CalendarYears)
	require.Equal(t, 20.0, cfg.Degradation.EOLPercent)
	require.Equal(t, 10.0, cfg.Economics.LifetimeYears)
	require.Equal(t, 0.05, cfg.Economics.DiscountRate)

	table, err := cfg.Tariff.Table()
	require.NoError(t, err)
	// upper_kw 0 marks the open-ended top bracket.
	require.Equal(t, 420.0, table.Cost(1e9))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("K_OPTIMIZER__MODE", "block")
	cfg, err := Load(writeConfig(t, "config.yaml", testYAML))
	require.NoError(t, err)
	require.Equal(t, "block", cfg.Optimizer.Mode)
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	cases := map[string]string{
		"bad mode": `
battery: { capacity_kwh: 20, power_limit_kw: 10, efficiency: 0.9, min_soc: 0.1, max_soc: 0.9 }
optimizer: { mode: warp }
`,
		"bad battery": `
battery: { capacity_kwh: 20, power_limit_kw: 10, efficiency: 1.5 }
`,
		"bad brackets": `
battery: { capacity_kwh: 20, power_limit_kw: 10, efficiency: 0.9, min_soc: 0.1, max_soc: 0.9 }
tariff:
  brackets:
    - { lower_kw: 3, upper_kw: 0, cost_nok: 100 }
`,
	}
	for name, content := range cases {
		_, err := Load(writeConfig(t, "config.yaml", content))
		require.Error(t, err, name)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	require.Error(t, err)
}
