package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sys/unix"

	"letterbox/internal/config"
)

// Pass names accepted by RunAll.
const (
	PassDetect = "detect"
	PassCrop   = "crop"
)

// Result reports the outcome of a single preflight check. A warning passes
// but carries a detail the operator should see.
type Result struct {
	Name    string
	Passed  bool
	Warning bool
	Detail  string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Warnings returns the passing results that carry a warning.
func Warnings(results []Result) []Result {
	var warned []Result
	for _, r := range results {
		if r.Passed && r.Warning {
			warned = append(warned, r)
		}
	}
	return warned
}

// RunAll checks the filesystem locations the named passes touch; with no
// passes it checks for both.
//
// Detect rewrites the metadata table, so the table and its directory (atomic
// saves create a sibling temp file) must be writable. Crop only reads the
// table but writes the crop directory, and removes sources from the raw
// directory on the degenerate move branch. The raw directory is input: a
// missing one is a warning because every row is then skipped.
func RunAll(cfg *config.Config, passes ...string) []Result {
	if cfg == nil {
		return nil
	}
	detect := len(passes) == 0 || slices.Contains(passes, PassDetect)
	crop := len(passes) == 0 || slices.Contains(passes, PassCrop)

	var results []Result
	if detect {
		results = append(results,
			CheckFileAccess("Metadata table", cfg.Paths.Metadata),
			CheckDirectoryAccess("Metadata directory", filepath.Dir(cfg.Paths.Metadata)),
		)
	} else {
		results = append(results, CheckReadableFile("Metadata table", cfg.Paths.Metadata))
	}
	results = append(results, CheckSourceDirectory("Raw directory", cfg.Paths.RawDir, crop))
	if crop {
		results = append(results, CheckCreatableDirectory("Crop directory", cfg.Paths.CropDir))
	}
	if cfg.Journal.Enabled {
		results = append(results, CheckCreatableDirectory("State directory", cfg.Paths.StateDir))
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if res, ok := statDirectory(name, path); !ok {
		return res
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSourceDirectory verifies that an input directory can be listed and
// read. A missing directory passes with a warning. When wantWrite is set, a
// directory that cannot be written (or sits on a read-only mount) also
// warns, since only moving sources out of it needs write access.
func CheckSourceDirectory(name, path string, wantWrite bool) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Warning: true, Detail: fmt.Sprintf("%s (warning: does not exist; every row will be skipped)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	if wantWrite {
		if err := unix.Access(path, unix.W_OK); err != nil {
			return Result{Name: name, Passed: true, Warning: true, Detail: fmt.Sprintf("%s (warning: not writable, degenerate moves will fail: %v)", path, err)}
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckFileAccess verifies that a regular file exists and is readable/writable.
func CheckFileAccess(name, path string) Result {
	if res, ok := statRegular(name, path); !ok {
		return res
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadableFile verifies that a regular file exists and is readable.
func CheckReadableFile(name, path string) Result {
	if res, ok := statRegular(name, path); !ok {
		return res
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckCreatableDirectory passes when path is an accessible directory or
// could be created under its nearest existing ancestor.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func statDirectory(name, path string) (Result, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, false
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}, false
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}, false
	}
	return Result{}, true
}

func statRegular(name, path string) (Result, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, false
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}, false
	}
	if !info.Mode().IsRegular() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a regular file)", path)}, false
	}
	return Result{}, true
}
