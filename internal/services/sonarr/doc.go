// Package sonarr talks to a Sonarr v3 API and re-queues exported series.
//
// Deletion is episode-aware: when the exporter parsed season/episode
// numbers out of a release name, only those episode files are removed and
// re-searched. A whole-season spec, or the season delete scope, widens
// deletion to every file in the season. Titles without parsed episode info
// fall back to deleting all of the series' files.
package sonarr
