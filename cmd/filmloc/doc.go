// Command filmloc seeds and inspects the filming-locations catalog.
//
// Subcommands load the bundled sample data, import popular titles from TMDB,
// run the source scheduler, push JSON-lines record files through the
// reconciliation pipeline, and print catalog statistics.
package main
