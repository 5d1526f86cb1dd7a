// Package gdrive implements the document source port against the
// Google Drive v3 API using service-account credentials.
package gdrive
