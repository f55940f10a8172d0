package domain

import "strings"

// Fallback values for blank cells.
const (
	DefaultSiteName = "Site inconnu"
	DefaultSector   = "Non spécifié"
)

// PollutionEntry is one observed pollutant or pathway at a site.
type PollutionEntry struct {
	EnvironmentalCompartment string `json:"environmentalCompartment"`
	ChemicalForm             string `json:"chemicalForm"`
	ChemicalFamilies         string `json:"chemicalFamilies"`
	Frequency                string `json:"frequency"`
	HealthImpact             string `json:"healthImpact"`
}

// IsEmpty reports whether every field of the entry is blank.
func (e PollutionEntry) IsEmpty() bool {
	return e.EnvironmentalCompartment == "" &&
		e.ChemicalForm == "" &&
		e.ChemicalFamilies == "" &&
		e.Frequency == "" &&
		e.HealthImpact == ""
}

// SiteBase holds the identity and metadata shared by every kind of site.
type SiteBase struct {
	ID            int              `json:"id"`
	Name          string           `json:"name"`
	Location      string           `json:"location"`
	Sector        string           `json:"sector"`
	PollutionType string           `json:"pollutionType"`
	Pollutions    []PollutionEntry `json:"pollutions"`
	Accidents     string           `json:"accidents"`
	Link          string           `json:"link"`
}

// Coordinates is a WGS-84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PollutionSite is a site with a point location, shown as a map marker.
type PollutionSite struct {
	SiteBase
	Coordinates Coordinates `json:"coordinates"`
}

// DiffusePollutionSite is a source without a usable point location.
// Coordinates is always nil and serializes as null.
type DiffusePollutionSite struct {
	SiteBase
	Coordinates *Coordinates `json:"coordinates"`
}

// Site is the common view of either kind, used for lookups.
type Site struct {
	SiteBase
	Coordinates *Coordinates `json:"coordinates"`
}

// Geolocated reports whether the site has a point location.
func (s Site) Geolocated() bool { return s.Coordinates != nil }

// Site returns the common view of a geolocated site.
func (s PollutionSite) Site() Site {
	c := s.Coordinates
	return Site{SiteBase: s.SiteBase, Coordinates: &c}
}

// Site returns the common view of a diffuse site.
func (s DiffusePollutionSite) Site() Site {
	return Site{SiteBase: s.SiteBase}
}

// SitesResult is the output of one ingestion pass: two disjoint collections in
// first-occurrence order.
type SitesResult struct {
	Sites        []PollutionSite        `json:"sites"`
	DiffuseSites []DiffusePollutionSite `json:"diffuseSites"`
}

// FindByID returns the first geolocated site with the given number, falling
// back to the diffuse sites.
func (r SitesResult) FindByID(id int) (Site, bool) {
	for _, s := range r.Sites {
		if s.ID == id {
			return s.Site(), true
		}
	}
	for _, s := range r.DiffuseSites {
		if s.ID == id {
			return s.Site(), true
		}
	}
	return Site{}, false
}

// SiteFilter narrows a SitesResult. Empty fields match everything; matching is
// case-insensitive substring.
type SiteFilter struct {
	Sector      string
	Compartment string
	Query       string
}

// IsZero reports whether the filter has no criteria.
func (f SiteFilter) IsZero() bool {
	return f.Sector == "" && f.Compartment == "" && f.Query == ""
}

// Apply returns the sites of r matching every criterion of f, preserving order.
func (f SiteFilter) Apply(r SitesResult) SitesResult {
	if f.IsZero() {
		return r
	}
	out := SitesResult{
		Sites:        []PollutionSite{},
		DiffuseSites: []DiffusePollutionSite{},
	}
	for _, s := range r.Sites {
		if f.matches(s.SiteBase) {
			out.Sites = append(out.Sites, s)
		}
	}
	for _, s := range r.DiffuseSites {
		if f.matches(s.SiteBase) {
			out.DiffuseSites = append(out.DiffuseSites, s)
		}
	}
	return out
}

func (f SiteFilter) matches(s SiteBase) bool {
	if f.Sector != "" && !containsFold(s.Sector, f.Sector) {
		return false
	}
	if f.Query != "" && !containsFold(s.Name, f.Query) && !containsFold(s.Location, f.Query) {
		return false
	}
	if f.Compartment != "" {
		for _, p := range s.Pollutions {
			if containsFold(p.EnvironmentalCompartment, f.Compartment) {
				return true
			}
		}
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
