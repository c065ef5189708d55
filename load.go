package simpletokenizer

import (
    "bufio"
    "bytes"
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
)

type loadedDocuments struct {
    Path string
    Failure error
    Texts []string
}

// A .json file should contain an array of strings, each of which is a
// document. Anything else is read as plain text with one document per
// non-empty line.
func loadDocumentFile(f string) *loadedDocuments {
    output := &loadedDocuments{ Path: f, Failure: nil }

    raw, err := os.ReadFile(f)
    if err != nil {
        output.Failure = fmt.Errorf("failed to read %q; %w", f, err)
        return output
    }

    if strings.EqualFold(filepath.Ext(f), ".json") {
        var vals []string
        err = json.Unmarshal(raw, &vals)
        if err != nil {
            output.Failure = fmt.Errorf("failed to parse %q; %w", f, err)
            return output
        }
        output.Texts = vals
        return output
    }

    scanner := bufio.NewScanner(bytes.NewReader(raw))
    scanner.Buffer(make([]byte, 0, 64 * 1024), len(raw) + 1)
    for scanner.Scan() {
        line := strings.TrimSpace(scanner.Text())
        if line != "" {
            output.Texts = append(output.Texts, line)
        }
    }
    if err := scanner.Err(); err != nil {
        output.Failure = fmt.Errorf("failed to scan %q; %w", f, err)
        output.Texts = nil
    }

    return output
}

func loadDocuments(paths []string) []*loadedDocuments {
    assets := make([]*loadedDocuments, len(paths))

    var wg sync.WaitGroup
    wg.Add(len(paths))
    for i, f := range paths {
        go func(i int, f string) {
            defer wg.Done()
            assets[i] = loadDocumentFile(f)
        }(i, f)
    }

    wg.Wait()
    return assets
}

// AddFiles loads every file and adds its documents to the index. Directories
// are searched for .txt and .json files. Files that cannot be read or parsed
// are skipped and reported in the returned failure messages; err is only set
// if the index itself could not be updated.
func (idx *Index) AddFiles(paths []string) ([]int64, []string, error) {
    expanded, all_failures := expandDocumentPaths(paths)
    texts := []string{}

    for _, asset := range loadDocuments(expanded) {
        if asset.Failure != nil {
            all_failures = append(all_failures, asset.Failure.Error())
            continue
        }
        texts = append(texts, asset.Texts...)
    }

    ids, err := idx.AddDocuments(texts)
    if err != nil {
        return nil, all_failures, err
    }
    return ids, all_failures, nil
}
