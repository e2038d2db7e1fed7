package upload

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ResolveFiles turns a target into the list of files to upload. A single
// input file is joined under SourceDir when both are given, and a relative
// input path is kept in its key. Directories are listed one level deep and
// only regular files are kept.
func ResolveFiles(t Target, logger *zap.Logger) ([]FileEntry, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if t.InputFile != "" {
		p := t.InputFile
		if t.SourceDir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(t.SourceDir, p)
		}
		entry, err := statEntry(p, ObjectKey(t.Prefix, inputKeyName(t.InputFile)))
		if err != nil {
			return nil, err
		}
		if entry.Size < 0 {
			return nil, newError(KindFilesystem, "stat", p, "", ErrNotRegular)
		}
		return []FileEntry{entry}, nil
	}

	dirEntries, err := os.ReadDir(t.SourceDir)
	if err != nil {
		return nil, newError(KindFilesystem, "readdir", t.SourceDir, "", err)
	}

	files := make([]FileEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		p := filepath.Join(t.SourceDir, de.Name())
		if de.IsDir() {
			logger.Debug("skipping subdirectory", zap.String("path", p))
			continue
		}
		entry, err := statEntry(p, ObjectKey(t.Prefix, de.Name()))
		if err != nil {
			return nil, err
		}
		if entry.Size < 0 {
			logger.Debug("skipping non-regular file", zap.String("path", p))
			continue
		}
		files = append(files, entry)
	}
	return files, nil
}

// inputKeyName is the key name of an input file: the cleaned relative path in
// slash form, or the base name for absolute paths and paths leaving the
// working directory.
func inputKeyName(input string) string {
	clean := filepath.Clean(input)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return filepath.Base(clean)
	}
	return filepath.ToSlash(clean)
}

// statEntry follows symlinks; non-regular files come back with Size -1.
func statEntry(p, key string) (FileEntry, error) {
	info, err := os.Stat(p)
	if err != nil {
		return FileEntry{}, newError(KindFilesystem, "stat", p, "", err)
	}
	entry := FileEntry{
		Path: p,
		Key:  key,
		Size: info.Size(),
	}
	if !info.Mode().IsRegular() {
		entry.Size = -1
	}
	return entry, nil
}
