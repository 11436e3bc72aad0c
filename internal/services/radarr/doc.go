// Package radarr talks to a Radarr v3 API and re-queues exported movies.
//
// The flow per title: find the movie in the library by normalized title,
// fall back to the lookup endpoint, then either delete the existing entry's
// files and trigger a targeted search, or add the movie and search. Fuzzy
// title matching is deliberately absent; a wrong match would delete the
// wrong movie's files.
package radarr
