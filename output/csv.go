// Package output serializes a run's profile records and status to disk.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nehilsa2/linkedin_profile_scraper/search"
)

// Header is the fixed CSV header row
var Header = []string{"title", "link", "scraped_at"}

// TimestampLayout formats scraped_at (ISO-8601)
const TimestampLayout = time.RFC3339

// WriteCSV writes the header and one row per record
func WriteCSV(w io.Writer, records []search.ProfileRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Title, r.Link, r.ScrapedAt.Format(TimestampLayout)}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Stamp returns a copy of records with every ScrapedAt set to at
func Stamp(records []search.ProfileRecord, at time.Time) []search.ProfileRecord {
	out := make([]search.ProfileRecord, len(records))
	for i, r := range records {
		r.ScrapedAt = at
		out[i] = r
	}
	return out
}

// SaveCSV stamps records with at and writes them to path, creating or
// replacing the file. The CSV is built in memory and moved into place with
// a rename, so a failed run never leaves a half-written file behind.
func SaveCSV(path string, records []search.ProfileRecord, at time.Time) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Stamp(records, at)); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

// Filename returns base, or base with a _YYYYMMDD_HHMMSS suffix before the
// extension when useTimestamp is set.
func Filename(base string, useTimestamp bool, now time.Time) string {
	if !useTimestamp {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
