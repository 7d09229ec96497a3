// Package winefetch provides a CLI-based scraper for wine reviews.
// It logs into the review site with a headless browser, fetches per-wine
// pages under a concurrency cap and a global request rate, retries
// transient failures, and exports the extracted records to a spreadsheet.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, goquery/).
package winefetch
