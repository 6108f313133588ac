// Package ux extracts rendering annotations from schema nodes. Annotations may
// live in a nested object under the `_ux` key or in flat keys such as
// `_ux.card.title`; Extract merges both notations into one Config where a flat
// key always wins for the exact path it touches while untouched nested fields
// survive. Unknown fields are preserved in Config.Raw so newer annotations pass
// through to the widget layer unchanged.
package ux
