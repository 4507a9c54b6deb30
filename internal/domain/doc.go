// Package domain models NASA/JPL near-Earth object (NEO) and close-approach data.
//
// # Data Source
//
// NEO records come from the JPL Small-Body Database as a CSV export
// (neos.csv); close approaches come from the JPL SBDB Close-Approach Data API
// as JSON (cad.json) with a "fields" header and positional "data" rows. The
// extract package turns both into field-name-keyed records and hands them to
// [NewNEO] and [NewApproach].
//
// # JPL Data Conventions
//
// NEO columns used:
//
//	pdes      primary designation, e.g. "433" or "2020 AB". Required and unique.
//	name      IAU name, e.g. "Eros". Empty for most objects.
//	diameter  kilometers as a decimal, e.g. "16.84". Empty when unknown.
//	pha       potentially hazardous flag: "Y", "N", or empty.
//
// Close-approach columns used:
//
//	des    primary designation of the approaching NEO.
//	cd     calendar date of closest approach, "YYYY-Mon-DD hh:mm" in TDB,
//	       treated as UTC, e.g. "1900-Dec-27 01:30".
//	dist   nominal approach distance in astronomical units.
//	v_rel  velocity relative to Earth in km/s.
//
// Field names are matched case-insensitively; other columns are ignored.
//
// # Unknown values
//
//	An empty name is absent, not an empty string: [NEO.Name] reports ok=false
//	and serialization emits null.
//	An empty diameter is unknown and stored as NaN. Always test it with
//	[NEO.DiameterKnown]; NaN compares unequal to everything, including zero.
//	Only "y" (any case) marks an object hazardous. "N", empty, and missing
//	all mean not hazardous.
//
// # Linkage
//
// Entities are constructed independently. An [Approach] starts with an
// unresolved NEO reference; [NEO.Append] resolves it and registers the
// approach in the NEO's ordered list in a single step, so the two sides of
// the link can never disagree.
//
// # Time format
//
// The canonical textual form of an approach time is "2006-01-02 15:04" with
// no seconds, produced by [FormatDateTime]. It is shared by the human-readable
// descriptions and every output format.
package domain
