// Package download streams response bodies to disk with optional checksum
// validation and progress logging, and runs batches of downloads with a
// bounded [Queue].
//
// [Save] writes into a temporary file next to the destination and renames
// it into place only once every check has passed:
//
//	err := download.Save(ctx, resp.Body, resp.ContentLength, destPath, logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//	)
package download
