package categories

import "github.com/JonMunkholm/mapsdir/internal/core"

// Defaults is the built-in category set, in display order. Paths are
// relative to the dataset base.
var Defaults = []core.Category{
	{ID: "restaurants", Label: "Restaurants", Path: "/data/R8_google_maps_data.csv"},
	{ID: "gas-stations", Label: "Gas Stations", Path: "/data/gas_stations_google_maps_data.csv"},
	{ID: "government", Label: "Government", Path: "/data/government_departments_google_maps_data.csv"},
	{ID: "hardware-stores", Label: "Hardware Stores", Path: "/data/hardware_store_google_maps_data.csv"},
	{ID: "medical-clinics", Label: "Medical Clinics", Path: "/data/medical_clinic_google_maps_data.csv"},
}

func init() {
	registerDefaults()
}

func registerDefaults() {
	for _, c := range Defaults {
		core.Register(c)
	}
}

// Reset restores the built-in set, dropping anything registered since.
func Reset() {
	core.Clear()
	registerDefaults()
}
