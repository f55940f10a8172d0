package domain

import "sort"

// SectorCount is the number of sites in one sector.
type SectorCount struct {
	Sector string `json:"sector"`
	Color  string `json:"color"`
	Sites  int    `json:"sites"`
}

// Summary aggregates a SitesResult for operators.
type Summary struct {
	Sites             int            `json:"sites"`
	DiffuseSites      int            `json:"diffuse_sites"`
	PollutionEntries  int            `json:"pollution_entries"`
	SitesWithoutData  int            `json:"sites_without_pollutions"`
	SectorBreakdown   []SectorCount  `json:"sectors"`
	CompartmentCounts map[string]int `json:"compartments"`
}

// Summarize counts sites, entries and sectors across both collections.
// Sectors are sorted by descending site count, then name.
func Summarize(r SitesResult) Summary {
	s := Summary{
		Sites:             len(r.Sites),
		DiffuseSites:      len(r.DiffuseSites),
		CompartmentCounts: make(map[string]int),
	}

	sectors := make(map[string]int)
	add := func(b SiteBase) {
		s.PollutionEntries += len(b.Pollutions)
		if len(b.Pollutions) == 0 {
			s.SitesWithoutData++
		}
		sectors[b.Sector]++
		for _, p := range b.Pollutions {
			if p.EnvironmentalCompartment != "" {
				s.CompartmentCounts[p.EnvironmentalCompartment]++
			}
		}
	}
	for _, site := range r.Sites {
		add(site.SiteBase)
	}
	for _, site := range r.DiffuseSites {
		add(site.SiteBase)
	}

	for name, n := range sectors {
		s.SectorBreakdown = append(s.SectorBreakdown, SectorCount{Sector: name, Color: SectorColor(name), Sites: n})
	}
	sort.Slice(s.SectorBreakdown, func(i, j int) bool {
		if s.SectorBreakdown[i].Sites != s.SectorBreakdown[j].Sites {
			return s.SectorBreakdown[i].Sites > s.SectorBreakdown[j].Sites
		}
		return s.SectorBreakdown[i].Sector < s.SectorBreakdown[j].Sector
	})
	return s
}
