package domain

import "strings"

// Fallback colors for names absent from the tables.
const (
	DefaultSectorColor      = "#1d6ab2"
	DefaultCompartmentColor = "#999999"
)

// LegendItem pairs a category name with its display color.
type LegendItem struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// sectorColors is ordered: partial matches resolve to the first entry that
// matches.
var sectorColors = []LegendItem{
	{Name: "Gestion des déchets et effluents", Color: "#8B4513"},
	{Name: "Carrière et extraction", Color: "#708090"},
	{Name: "Service secteur routier", Color: "#FF6B35"},
	{Name: "Traffic routier (tunnel, autoroute..)", Color: "#2F4F4F"},
	{Name: "Secteur du décolletage", Color: "#4169E1"},
	{Name: "Industrie", Color: "#9932CC"},
	{Name: "Production de chaleur", Color: "#DC143C"},
	{Name: "Production d'énergie électrique", Color: "#FFD700"},
	{Name: DefaultSector, Color: "#999999"},
}

var compartmentColors = []LegendItem{
	{Name: "Air", Color: "#87CEEB"},
	{Name: "Eau", Color: "#1E90FF"},
	{Name: "Sol", Color: "#8B4513"},
	{Name: "Sous-sol", Color: "#654321"},
	{Name: "Nappe phréatique", Color: "#4169E1"},
}

// SectorColor returns the marker color for an activity sector.
func SectorColor(sector string) string {
	return lookupColor(sectorColors, sector, DefaultSectorColor)
}

// CompartmentColor returns the color for an environmental compartment.
func CompartmentColor(compartment string) string {
	return lookupColor(compartmentColors, compartment, DefaultCompartmentColor)
}

// SectorLegend lists the sectors shown in the map legend. The unspecified
// bucket is left out.
func SectorLegend() []LegendItem {
	out := make([]LegendItem, 0, len(sectorColors))
	for _, item := range sectorColors {
		if item.Name == DefaultSector {
			continue
		}
		out = append(out, item)
	}
	return out
}

// CompartmentLegend lists the compartments offered as filters.
func CompartmentLegend() []LegendItem {
	out := make([]LegendItem, len(compartmentColors))
	copy(out, compartmentColors)
	return out
}

// lookupColor tries an exact match, then a case-insensitive substring match in
// either direction, then the fallback.
func lookupColor(table []LegendItem, name, fallback string) string {
	for _, item := range table {
		if item.Name == name {
			return item.Color
		}
	}

	lower := strings.ToLower(name)
	for _, item := range table {
		key := strings.ToLower(item.Name)
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			return item.Color
		}
	}

	return fallback
}
