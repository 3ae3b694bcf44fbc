package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// versionWidth matches the six-digit prefixes under migrations/
const versionWidth = 6

var header = template.Must(template.New("header").Parse(
	`-- Migration: {{.File.Name}}{{if .Down}} (Rollback){{end}}
-- Created: {{.File.Timestamp}}
{{- if and (not .Down) .File.Description}}
-- Description: {{.File.Description}}
{{- end}}

`))

var (
	wordSeparators = regexp.MustCompile(`[\s_-]+`)
	unusable       = regexp.MustCompile(`[^a-z0-9_]`)
)

// MigrationFile is a created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair numbered one past the highest
// version already in dir. Existing files are never overwritten.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	version := fmt.Sprintf("%0*d", versionWidth, nextVersion(existing))
	base := filepath.Join(dir, version+"_"+slug)

	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}
	if err := writeHeader(mf.UpPath, mf, false); err != nil {
		return nil, err
	}
	if err := writeHeader(mf.DownPath, mf, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeHeader(path string, mf *MigrationFile, down bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	err = header.Execute(f, struct {
		File *MigrationFile
		Down bool
	}{mf, down})
	return errors.Join(err, f.Close())
}

// sanitizeName lower-cases name into snake case and drops everything else
func sanitizeName(name string) string {
	s := wordSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	s = unusable.ReplaceAllString(s, "")
	return strings.Trim(s, "_")
}

func nextVersion(names []string) int {
	highest := 0
	for _, n := range names {
		prefix, _, _ := strings.Cut(n, "_")
		if v, err := strconv.Atoi(prefix); err == nil {
			highest = max(highest, v)
		}
	}
	return highest + 1
}

// ListMigrations returns the sorted base names of the up files in dir. A
// missing directory has none.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if base, ok := strings.CutSuffix(e.Name(), ".up.sql"); ok && !e.IsDir() && base != "" {
			names = append(names, base)
		}
	}
	slices.Sort(names)
	return names, nil
}
