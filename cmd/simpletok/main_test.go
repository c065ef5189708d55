package main

import (
    "bytes"
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "testing"
    "time"

    st "github.com/hanzi-fts/simpletokenizer"
)

func runCommand(t *testing.T, args ...string) string {
    var out bytes.Buffer
    root := newRootCommand(&out)
    root.SetArgs(args)
    err := root.Execute()
    if err != nil {
        t.Fatalf("failed to run %q; %v", args, err)
    }
    return out.String()
}

func TestDecomposeCommand(t *testing.T) {
    out := runCommand(t, "decompose", "guo", "ba")
    if out != "guo\tg+u+o gu+o guo\nba\tb+a ba\n" {
        t.Fatalf("unexpected output %q", out)
    }
}

func TestNormalizeCommand(t *testing.T) {
    out := runCommand(t, "normalize", "Running", "Zoë")
    if out != "Running\trunning\trun\nZoë\tzoe\tzoe\n" {
        t.Fatalf("unexpected output %q", out)
    }
}

func TestTokenizeCommand(t *testing.T) {
    out := runCommand(t, "tokenize", "国家")
    if out != "guo\t0\t3\ngu\t3\t6\njia\t3\t6\njie\t3\t6\n" {
        t.Fatalf("unexpected output %q", out)
    }

    out = runCommand(t, "tokenize", "--reason", "query", "国家")
    if out != "国\t0\t3\n家\t3\t6\n" {
        t.Fatalf("unexpected output %q", out)
    }

    out = runCommand(t, "--disable-pinyin", "tokenize", "国家")
    if out != "国\t0\t3\n家\t3\t6\n" {
        t.Fatalf("unexpected output %q", out)
    }

    var buf bytes.Buffer
    root := newRootCommand(&buf)
    root.SetArgs([]string{ "tokenize", "--reason", "whee", "国家" })
    if root.Execute() == nil {
        t.Fatalf("expected an error for an unknown reason")
    }

    root = newRootCommand(&buf)
    root.SetArgs([]string{ "tokenize", "--tokenizer", "whee", "国家" })
    if root.Execute() == nil {
        t.Fatalf("expected an error for an unknown tokenizer")
    }
}

func TestQueryCommand(t *testing.T) {
    out := runCommand(t, "query", "国")
    if out != "(g+u+o* OR gu+o* OR guo*)\n" {
        t.Fatalf("unexpected output %q", out)
    }

    out = runCommand(t, "--disable-pinyin", "query", "国")
    if out != "(国*)\n" {
        t.Fatalf("unexpected output %q", out)
    }
}

func TestConfigFile(t *testing.T) {
    tmp, err := os.MkdirTemp("", "")
    if err != nil {
        t.Fatalf(err.Error())
    }
    defer os.RemoveAll(tmp)

    config_path := filepath.Join(tmp, "config.yaml")
    err = os.WriteFile(config_path, []byte("disable_pinyin: true\ncache_size: 10\n"), 0644)
    if err != nil {
        t.Fatalf(err.Error())
    }

    out := runCommand(t, "--config", config_path, "query", "国")
    if out != "(国*)\n" {
        t.Fatalf("configuration file was not respected; %q", out)
    }

    // Flags take precedence over the file.
    out = runCommand(t, "--config", config_path, "--disable-pinyin=false", "query", "国")
    if out != "(g+u+o* OR gu+o* OR guo*)\n" {
        t.Fatalf("flags should override the configuration file; %q", out)
    }

    var buf bytes.Buffer
    root := newRootCommand(&buf)
    root.SetArgs([]string{ "--config", filepath.Join(tmp, "missing.yaml"), "query", "国" })
    if root.Execute() == nil {
        t.Fatalf("expected an error for a missing configuration file")
    }
}

func TestCustomData(t *testing.T) {
    tmp, err := os.MkdirTemp("", "")
    if err != nil {
        t.Fatalf(err.Error())
    }
    defer os.RemoveAll(tmp)

    pinyin_path := filepath.Join(tmp, "pinyin.txt")
    err = os.WriteFile(pinyin_path, []byte("U+56FD: guó # 国\n"), 0644)
    if err != nil {
        t.Fatalf(err.Error())
    }

    stop_path := filepath.Join(tmp, "stopwords.txt")
    err = os.WriteFile(stop_path, []byte("# nothing but\nguo\n"), 0644)
    if err != nil {
        t.Fatalf(err.Error())
    }

    out := runCommand(t, "--pinyin-data", pinyin_path, "tokenize", "国家")
    if out != "guo\t0\t3\n家\t3\t6\n" {
        t.Fatalf("unexpected output %q", out)
    }

    // Stopwords are checked against the raw character, not its readings.
    out = runCommand(t, "--pinyin-data", pinyin_path, "--stopword-data", stop_path, "tokenize", "国 guo")
    if out != "guo\t0\t3\n" {
        t.Fatalf("unexpected output %q", out)
    }

    var buf bytes.Buffer
    root := newRootCommand(&buf)
    root.SetArgs([]string{ "--pinyin-data", stop_path, "query", "国" })
    if root.Execute() == nil {
        t.Fatalf("expected an error for malformed pinyin data")
    }
}

func TestSearchCommand(t *testing.T) {
    tmp, err := os.MkdirTemp("", "")
    if err != nil {
        t.Fatalf(err.Error())
    }
    defer os.RemoveAll(tmp)

    input := filepath.Join(tmp, "docs.txt")
    err = os.WriteFile(input, []byte("静夜思\n举头望明月\n国家\n"), 0644)
    if err != nil {
        t.Fatalf(err.Error())
    }

    out := runCommand(t, "search", "--input", input, "yue")
    if out != "2\t举头望明月\n" {
        t.Fatalf("unexpected output %q", out)
    }

    // Persisted to a file and then backed up.
    dbpath := filepath.Join(tmp, "index.sqlite3")
    runCommand(t, "--db", dbpath, "search", "--input", input, "guo")
    out = runCommand(t, "--db", dbpath, "search", "国")
    if out != "3\t国家\n" {
        t.Fatalf("unexpected output %q", out)
    }

    backpath := filepath.Join(tmp, "backup.sqlite3")
    out = runCommand(t, "--db", dbpath, "backup", backpath)
    info, err := os.Stat(backpath)
    if err != nil {
        t.Fatalf(err.Error())
    }
    if out != strconv.FormatInt(info.Size(), 10) + "\n" {
        t.Fatalf("expected the size of the backup; %q", out)
    }
    out = runCommand(t, "--db", backpath, "search", "jia")
    if out != "3\t国家\n" {
        t.Fatalf("unexpected output from the backup %q", out)
    }

    out = runCommand(t, "--db", dbpath, "--max-age", "1h", "purge")
    if out != "0\n" {
        t.Fatalf("nothing should have been purged; %q", out)
    }

    var buf bytes.Buffer
    root := newRootCommand(&buf)
    root.SetArgs([]string{ "--db", dbpath, "purge" })
    if root.Execute() == nil {
        t.Fatalf("expected an error when purging without a maximum age")
    }
}

func TestSqlCommand(t *testing.T) {
    out := runCommand(t, "sql", "SELECT simple_query('国'), simple_query('')")
    if out != "(g+u+o* OR gu+o* OR guo*)\tNULL\n" {
        t.Fatalf("unexpected output %q", out)
    }

    out = runCommand(t, "sql", "SELECT simple_tokenize('The cats')")
    if strings.TrimSpace(out) != "cat" {
        t.Fatalf("unexpected output %q", out)
    }
}

func TestStartPurger(t *testing.T) {
    dict, err := st.DefaultDictionary()
    if err != nil {
        t.Fatalf(err.Error())
    }
    idx, err := st.OpenIndex(":memory:", dict, nil)
    if err != nil {
        t.Fatalf(err.Error())
    }
    defer idx.Close()

    _, err = idx.AddDocuments([]string{ "国家", "静夜思" })
    if err != nil {
        t.Fatalf(err.Error())
    }

    // Zero lifetime, so everything already present is old enough.
    stop := startPurger(idx, 0, 10 * time.Millisecond)
    deadline := time.Now().Add(5 * time.Second)
    for {
        count, err := idx.CountDocuments()
        if err != nil {
            t.Fatalf(err.Error())
        }
        if count == 0 {
            break
        }
        if time.Now().After(deadline) {
            t.Fatalf("documents were not purged in time")
        }
        time.Sleep(10 * time.Millisecond)
    }

    finished := make(chan struct{})
    go func() {
        stop()
        close(finished)
    }()
    select {
    case <-finished:
    case <-time.After(5 * time.Second):
        t.Fatalf("purger did not exit after being stopped")
    }

    // Nothing is purged after stopping.
    _, err = idx.AddDocuments([]string{ "举头望明月" })
    if err != nil {
        t.Fatalf(err.Error())
    }
    time.Sleep(50 * time.Millisecond)
    count, err := idx.CountDocuments()
    if err != nil {
        t.Fatalf(err.Error())
    }
    if count != 1 {
        t.Fatalf("no purging should happen after stopping")
    }
}
