// Package domain models monthly weather-station series and their
// percentile-of-score summaries.
//
// # Data Source
//
// Station files come from the regional climate data export. Each monitored
// station gets one plain-text file per variable (temperature or
// precipitation), dropped into a per-variable directory tree. The file name
// starts with the station code, e.g. "E000V00035_temp.txt". Nothing else
// about the name or the directory structure is guaranteed.
//
// # Station File Conventions
//
// Line format:
//
//	"<year> <month> <value>"  →  e.g. "2022 1 15.3"
//	Fields are separated by any run of whitespace. There is no header row.
//	Blank lines are ignored. Every other line must have exactly three fields.
//
// Encoding:
//
//	Files are exported in a single-byte Windows/Latin locale. They are decoded
//	as ISO-8859-1, which maps every byte and never fails. Bytes in the C1
//	control range (0x80–0x9F) decode to invisible control characters. They
//	usually mean the exporter used Windows-1252, so [DecodeLatin1] reports
//	their offsets instead of hiding them.
//
// # Percentile Of Score
//
// For the latest observation x and the sample S of every observation sharing
// x's calendar month (x included), with n = |S|:
//
//	mean:   100 * (count(s < x) + 0.5*count(s == x)) / n   (default)
//	rank:   mean rank of x among tied values, as a percentage
//	weak:   100 * count(s <= x) / n
//	strict: 100 * count(s <  x) / n
//
// "mean" credits ties at half weight. A sample that holds only x scores 50.
//
// # Output Conventions
//
// Field names in the output artifact are fixed Spanish literals consumed by
// the map front end: "percentil", "valor_actual", "ultimo_mes",
// "datos_historicos_usados" and "error". Floats are rounded to two decimals and
// always carry a fractional part ("50.0", not "50"). See [Decimal].
package domain
