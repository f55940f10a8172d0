package domain

// Column positions in the inventory spreadsheet.
const (
	colID               = 0
	colName             = 1
	colSector           = 3
	colPollutionType    = 4
	colLocation         = 5
	colLatitude         = 6
	colLongitude        = 7
	colCompartment      = 8
	colChemicalForm     = 9
	colChemicalFamilies = 10
	colFrequency        = 11
	colHealthImpact     = 12
	colAccidents        = 13
	colLink             = 14
)

// siteRef addresses a site in the arena. The same key may exist once per
// collection.
type siteRef struct {
	key        string
	geolocated bool
}

// scanState is the accumulator threaded through the row scan.
type scanState struct {
	lastCompartment      string
	lastChemicalForm     string
	lastChemicalFamilies string
	active               *siteRef
}

type siteRecord struct {
	base   SiteBase
	coords Coordinates
}

// siteArena owns every site built in one pass. geolocated and diffuse index
// it in first-occurrence order.
type siteArena struct {
	sites      map[siteRef]*siteRecord
	geolocated []siteRef
	diffuse    []siteRef
}

// BuildSites classifies rows into main entries and continuation rows and
// returns the sites they describe. It never fails: missing or malformed cells
// fall back to defaults or are left out.
func BuildSites(rows []Row) SitesResult {
	arena := &siteArena{sites: make(map[siteRef]*siteRecord)}

	var state scanState
	for _, row := range rows {
		state = arena.consume(state, row)
	}

	return arena.result()
}

// consume applies one row and returns the next scan state.
func (a *siteArena) consume(state scanState, row Row) scanState {
	if len(row.Cells) == 0 {
		return state
	}

	entry, state := state.fill(row)

	idCell := row.Cell(colID)
	if !idCell.IsNumber() {
		if state.active != nil && !entry.IsEmpty() {
			if rec, ok := a.sites[*state.active]; ok {
				rec.base.Pollutions = append(rec.base.Pollutions, entry)
			}
		}
		return state
	}

	name := row.Cell(colName).String()
	coords, geolocated := rowCoordinates(row)
	ref := siteRef{key: formatNumber(idCell.Number) + "-" + name, geolocated: geolocated}
	state.active = &ref

	if _, seen := a.sites[ref]; seen {
		return state
	}

	pollutions := []PollutionEntry{}
	if !entry.IsEmpty() {
		pollutions = append(pollutions, entry)
	}

	a.sites[ref] = &siteRecord{
		base: SiteBase{
			ID:            int(idCell.Number),
			Name:          orDefault(name, DefaultSiteName),
			Location:      row.Cell(colLocation).String(),
			Sector:        orDefault(row.Cell(colSector).String(), DefaultSector),
			PollutionType: row.Cell(colPollutionType).String(),
			Pollutions:    pollutions,
			Accidents:     row.Cell(colAccidents).String(),
			Link:          row.Cell(colLink).String(),
		},
		coords: coords,
	}
	if geolocated {
		a.geolocated = append(a.geolocated, ref)
	} else {
		a.diffuse = append(a.diffuse, ref)
	}
	return state
}

// fill builds the row's pollution entry, forward-filling columns 8–10 from
// earlier rows, and returns the updated carry-over state.
func (s scanState) fill(row Row) (PollutionEntry, scanState) {
	compartment := row.Cell(colCompartment).String()
	form := row.Cell(colChemicalForm).String()
	families := row.Cell(colChemicalFamilies).String()

	entry := PollutionEntry{
		EnvironmentalCompartment: orDefault(compartment, s.lastCompartment),
		ChemicalForm:             orDefault(form, s.lastChemicalForm),
		ChemicalFamilies:         orDefault(families, s.lastChemicalFamilies),
		Frequency:                row.Cell(colFrequency).String(),
		HealthImpact:             row.Cell(colHealthImpact).String(),
	}

	if compartment != "" {
		s.lastCompartment = compartment
	}
	if form != "" {
		s.lastChemicalForm = form
	}
	if families != "" {
		s.lastChemicalFamilies = families
	}
	return entry, s
}

func (a *siteArena) result() SitesResult {
	out := SitesResult{
		Sites:        make([]PollutionSite, 0, len(a.geolocated)),
		DiffuseSites: make([]DiffusePollutionSite, 0, len(a.diffuse)),
	}
	for _, ref := range a.geolocated {
		rec := a.sites[ref]
		out.Sites = append(out.Sites, PollutionSite{SiteBase: rec.base, Coordinates: rec.coords})
	}
	for _, ref := range a.diffuse {
		out.DiffuseSites = append(out.DiffuseSites, DiffusePollutionSite{SiteBase: a.sites[ref].base})
	}
	return out
}

// rowCoordinates reads columns 6–7 and reports whether they form a valid
// position.
func rowCoordinates(row Row) (Coordinates, bool) {
	lat, latOK := row.Cell(colLatitude).Float()
	lng, lngOK := row.Cell(colLongitude).Float()
	if !latOK || !lngOK {
		return Coordinates{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Coordinates{}, false
	}
	return Coordinates{Lat: lat, Lng: lng}, true
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
