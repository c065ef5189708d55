package simpletokenizer

import (
    "fmt"
    "io/fs"
    "os"
    "path/filepath"
    "strings"
)

var documentExtensions = map[string]bool{ ".txt": true, ".json": true }

func isDocumentFile(path string) bool {
    return documentExtensions[strings.ToLower(filepath.Ext(path))]
}

/* This function can NEVER fail. All errors are simply reported as failures and
 * the associated paths are ignored. Hidden subdirectories are skipped, as are
 * files that don't look like documents.
 */
func listDocumentFiles(dir string) ([]string, []string) {
    curcontents := []string{}
    curfailures := []string{}

    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            curfailures = append(curfailures, fmt.Sprintf("failed to walk %q; %v", path, err))
            return nil
        }

        if d.IsDir() {
            if path != dir && strings.HasPrefix(filepath.Base(path), ".") {
                return fs.SkipDir
            }
            return nil
        }

        // Symbolic links to files are followed, but not links to directories.
        if d.Type() & os.ModeSymlink != 0 {
            info, err := os.Stat(path)
            if err != nil {
                curfailures = append(curfailures, fmt.Sprintf("failed to stat %q; %v", path, err))
                return nil
            }
            if info.IsDir() {
                return nil
            }
        }

        if isDocumentFile(path) {
            curcontents = append(curcontents, path)
        }
        return nil
    })

    if err != nil {
        curfailures = append(curfailures, fmt.Sprintf("failed to walk %q; %v", dir, err))
    }
    return curcontents, curfailures
}

// Directories are replaced by the document files inside them, while other
// paths are passed through as-is.
func expandDocumentPaths(paths []string) ([]string, []string) {
    expanded := []string{}
    failures := []string{}
    for _, p := range paths {
        info, err := os.Stat(p)
        if err != nil || !info.IsDir() {
            expanded = append(expanded, p)
            continue
        }
        found, curfailures := listDocumentFiles(p)
        expanded = append(expanded, found...)
        failures = append(failures, curfailures...)
    }
    return expanded, failures
}
