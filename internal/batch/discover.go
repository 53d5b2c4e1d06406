package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ConfigurationError is fatal for a run: the input directory is missing or
// holds no matching documents, or the output directory cannot be created.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Discover lists the files directly inside dir whose extension matches ext,
// case-insensitively, sorted by name.
func Discover(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("input folder %q does not exist", dir)}
		}
		return nil, &ConfigurationError{Msg: fmt.Sprintf("cannot read input folder %q", dir), Err: err}
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("no %s files found in %q", ext, dir)}
	}

	sort.Strings(files)
	return files, nil
}

var boilerplateTokens = map[string]bool{
	"statement": true,
	"deposit":   true,
	"deposits":  true,
}

var illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// OutputName derives the output base name (no extension) from an input path:
// "Deposits-statement-1000073282-202508.pdf" becomes "1000073282_202508".
func OutputName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var kept []string
	for _, part := range strings.Split(base, "-") {
		if !boilerplateTokens[strings.ToLower(part)] {
			kept = append(kept, part)
		}
	}

	name := base
	if len(kept) > 0 {
		name = strings.Join(kept, "_")
	}
	return illegalFilenameChars.ReplaceAllString(name, "_")
}
