// Package likestests contains the likes API contract tests themselves and their supporting API.
//
// Test runner infrastructure that is not specific to the likes API, such as scenario ordering,
// filtering and result reporting, is in the lower-level framework package.
package likestests
