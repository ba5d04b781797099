// Package domain models historical storm-track observations and trajectory
// predictions.
//
// # Data Source
//
// Observations come from an IBTrACS-style CSV export: one row per fix of a
// tropical cyclone, with a header row naming the columns. The columns the
// service relies on are:
//
//	STORM ID (or SID)  storm identifier, repeated on every fix of the storm
//	SEASON             season year, e.g. "2020"
//	LAT, LON           position in decimal degrees
//	STORM SPEED        translation speed of the system
//	STORM DIR          heading of the system in degrees
//	DIST2LAND          distance to the nearest land in km
//
// Cells are frequently blank. Numeric cells that are blank or unparsable are
// kept as absent (nil) on [StormRecord]; aggregations decide per field what an
// absent value means. The only such rule today is in [Summarize], where an
// absent storm speed counts as 0.
//
// # Grouping
//
// Rows are kept in source order. "First" always means first in the file, so
// a storm's representative fix in [AggregateStorms] is the earliest row that
// carries its identifier.
//
// # Predictions
//
// The model service returns, per horizon (6H, 12H, 24H), a predicted
// position and its distance from the query point. [Interpret] derives:
//
//	direction  16-point compass heading of atan2(Δlon, Δlat)
//	region     coarse basin classification of the predicted point
//	speed      distance ÷ horizon hours, in km/h
//
// The heading uses longitude difference as the x axis and latitude difference
// as the y axis on a flat grid. It is not a great-circle bearing; values match
// what forecasters see in the existing dashboards.
package domain
