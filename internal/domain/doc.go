// Package domain models the pollution site inventory published as a shared
// Google Sheets spreadsheet.
//
// # Data Source
//
// The inventory is maintained by volunteers in a spreadsheet and read through
// the Google Visualization query endpoint:
//
//	https://docs.google.com/spreadsheets/d/<id>/gviz/tq?tqx=out:json
//
// The body is not plain JSON. It is a JavaScript call wrapping the payload:
//
//	/*O_o*/
//	google.visualization.Query.setResponse({"version":"0.6",...,"table":{...}});
//
// [UnwrapEnvelope] extracts the argument and [ParseTable] decodes the table.
// Each cell is either null or an object with a raw value "v" (string, number,
// boolean or null) and an optional display string "f". Cells are normalised
// into the closed [Cell] union at this boundary.
//
// # Column Layout
//
// Columns are positional:
//
//	 0  N° (site number, numeric on the first row of a site)
//	 1  Identification (site name)
//	 2  Secteur d'activité (free-text description, unused)
//	 3  Secteur d'activité (legend category)
//	 4  Pollution actuelle/passée
//	 5  Localisation du site émetteur
//	 6  Latitude
//	 7  Longitude
//	 8  Compartiment environnemental de rejet
//	 9  Forme physico-chimique
//	10  Famille(s) chimique(s) de polluant(s)
//	11  Ponctuelle/continue
//	12  Impact sanitaire ou environnemental
//	13  Accidents recensés
//	14  Lien du site ou référence
//
// # Multi-row Sites
//
// A site starts on a row whose N° cell holds a number (a main entry). The
// following rows with an empty N° are continuation rows: each one adds a
// pollutant observation to the most recent site. Volunteers leave columns
// 8–10 blank when they repeat the row above, so those columns are forward
// filled from the last non-empty value in row order. The fill is not reset
// between sites: a blank compartment on a new site inherits the value of the
// previous site's last row. Downstream consumers depend on this output, so it
// is kept as is.
//
// # Geolocation
//
// Sites with both coordinates present, finite and in range (lat ∈ [-90, 90],
// lng ∈ [-180, 180]) are map markers. Everything else is a diffuse source,
// listed beside the map without a position. Bad coordinates are never an
// error.
//
// # Identity
//
// Site numbers are not unique on their own. A site is identified by
// "<id>-<name>" within its collection; repeated main rows for the same key
// do not create a second site.
package domain
