package main

import (
    "database/sql"
    "fmt"
    "io"
    "log"
    "net/http"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/spf13/cobra"
    "github.com/spf13/viper"

    st "github.com/hanzi-fts/simpletokenizer"
)

type application struct {
    Reader *viper.Viper
    ConfigPath string
    Out io.Writer
}

func (app *application) setup() (*appConfig, *st.Dictionary, error) {
    cfg, err := loadConfig(app.Reader, app.ConfigPath)
    if err != nil {
        return nil, nil, err
    }
    dict, err := buildDictionary(cfg)
    if err != nil {
        return nil, nil, err
    }
    return cfg, dict, nil
}

func newRootCommand(out io.Writer) *cobra.Command {
    app := &application{ Reader: newConfigReader(), Out: out }

    root := &cobra.Command{
        Use: "simpletok",
        Short: "Pinyin-aware tokenization and search for Chinese and English text",
        SilenceUsage: true,
        SilenceErrors: true,
    }
    root.SetOut(out)

    flags := root.PersistentFlags()
    flags.StringVar(&app.ConfigPath, "config", "", "Path to a YAML configuration file")
    flags.Bool("disable-pinyin", false, "Do not index pinyin readings of Chinese characters")
    flags.Bool("disable-stopword", false, "Keep stopwords")
    flags.Int("cache-size", st.DefaultCacheSize, "Number of decompositions to cache")
    flags.String("pinyin-data", "", "Path to a pinyin artifact replacing the built-in readings")
    flags.String("stopword-data", "", "Path to a stopword list replacing the built-in one")
    flags.String("db", ":memory:", "Path to the SQLite file for the index")
    flags.Duration("max-age", 0, "Remove documents older than this, or 0 to keep them forever")

    for _, name := range []string{ "disable-pinyin", "disable-stopword", "cache-size", "pinyin-data", "stopword-data", "db", "max-age" } {
        app.Reader.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
    }

    root.AddCommand(
        newDecomposeCommand(app),
        newNormalizeCommand(app),
        newTokenizeCommand(app),
        newQueryCommand(app),
        newSearchCommand(app),
        newSqlCommand(app),
        newBackupCommand(app),
        newPurgeCommand(app),
        newServeCommand(app),
    )
    return root
}

/**********************************************************************/

func newDecomposeCommand(app *application) *cobra.Command {
    return &cobra.Command{
        Use: "decompose WORD...",
        Short: "List the ways of splitting each word into pinyin syllables",
        Args: cobra.MinimumNArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            _, dict, err := app.setup()
            if err != nil {
                return err
            }
            for _, word := range args {
                fmt.Fprintf(app.Out, "%s\t%s\n", word, strings.Join(dict.Decomposer.Decompose(word), " "))
            }
            return nil
        },
    }
}

func newNormalizeCommand(app *application) *cobra.Command {
    return &cobra.Command{
        Use: "normalize WORD...",
        Short: "Show the normalized and stemmed form of each word",
        Args: cobra.MinimumNArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            for _, word := range args {
                normalized, stem := st.Normalize(word)
                stemmed := normalized
                if stem {
                    stemmed = st.Stem(normalized)
                }
                fmt.Fprintf(app.Out, "%s\t%s\t%s\n", word, normalized, stemmed)
            }
            return nil
        },
    }
}

func newTokenizeCommand(app *application) *cobra.Command {
    var reason_name string
    var tokenizer_name string

    cmd := &cobra.Command{
        Use: "tokenize TEXT",
        Short: "Print the tokens produced for some text",
        Args: cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, dict, err := app.setup()
            if err != nil {
                return err
            }

            reason, err := st.ParseReason(reason_name)
            if err != nil {
                return err
            }
            tok, err := newTokenizer(tokenizer_name, dict, cfg.TokenizerArgs())
            if err != nil {
                return err
            }

            return tok.TokenizeFunc(reason, []byte(args[0]), func(x st.Token) error {
                _, err := fmt.Fprintf(app.Out, "%s\t%d\t%d\n", x.Text, x.Start, x.End)
                return err
            })
        },
    }

    cmd.Flags().StringVar(&reason_name, "reason", "document", "Tokenize reason, one of document, query, prefix or aux")
    cmd.Flags().StringVar(&tokenizer_name, "tokenizer", "simple", "Tokenizer to use, either simple or jieba")
    return cmd
}

func newQueryCommand(app *application) *cobra.Command {
    return &cobra.Command{
        Use: "query TEXT",
        Short: "Print the match expression for some query text",
        Args: cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, dict, err := app.setup()
            if err != nil {
                return err
            }
            synth, err := st.NewSynthesizer(dict)
            if err != nil {
                return err
            }
            if cfg.DisablePinyin {
                synth = synth.Literal()
            }
            fmt.Fprintln(app.Out, synth.Synthesize(args[0]))
            return nil
        },
    }
}

/**********************************************************************/

func (app *application) openIndex(cfg *appConfig, dict *st.Dictionary) (*st.Index, error) {
    err := st.RegisterFunctions(dict)
    if err != nil {
        return nil, fmt.Errorf("failed to register SQL functions; %w", err)
    }
    idx, err := st.OpenIndex(cfg.Db, dict, cfg.TokenizerArgs())
    if err != nil {
        return nil, fmt.Errorf("failed to open the index at %q; %w", cfg.Db, err)
    }
    return idx, nil
}

func newSearchCommand(app *application) *cobra.Command {
    var inputs []string
    var limit int

    cmd := &cobra.Command{
        Use: "search QUERY",
        Short: "Search the index, optionally adding documents from files first",
        Args: cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, dict, err := app.setup()
            if err != nil {
                return err
            }
            idx, err := app.openIndex(cfg, dict)
            if err != nil {
                return err
            }
            defer idx.Close()

            if len(inputs) > 0 {
                _, failures, err := idx.AddFiles(inputs)
                if err != nil {
                    return err
                }
                for _, f := range failures {
                    log.Printf("skipped input; %s", f)
                }
            }

            res, err := idx.Search(args[0], 0, limit)
            if err != nil {
                return err
            }
            for _, r := range res {
                fmt.Fprintf(app.Out, "%d\t%s\n", r.Id, r.Content)
            }
            return nil
        },
    }

    cmd.Flags().StringSliceVar(&inputs, "input", nil, "Files of documents to add before searching (.json arrays or one document per line)")
    cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results, or 0 for no limit")
    return cmd
}

func formatSqlValue(val interface{}) string {
    switch v := val.(type) {
    case nil:
        return "NULL"
    case []byte:
        return string(v)
    case int64:
        return strconv.FormatInt(v, 10)
    }
    return fmt.Sprint(val)
}

func runStatement(db *sql.DB, statement string, out io.Writer) error {
    rows, err := db.Query(statement)
    if err != nil {
        return fmt.Errorf("failed to execute statement; %w", err)
    }
    defer rows.Close()

    cols, err := rows.Columns()
    if err != nil {
        return fmt.Errorf("failed to get the result columns; %w", err)
    }

    values := make([]interface{}, len(cols))
    ptrs := make([]interface{}, len(cols))
    for i := range values {
        ptrs[i] = &values[i]
    }

    for rows.Next() {
        err := rows.Scan(ptrs...)
        if err != nil {
            return fmt.Errorf("failed to extract row; %w", err)
        }
        formatted := make([]string, len(values))
        for i, v := range values {
            formatted[i] = formatSqlValue(v)
        }
        fmt.Fprintln(out, strings.Join(formatted, "\t"))
    }

    return rows.Err()
}

func newSqlCommand(app *application) *cobra.Command {
    return &cobra.Command{
        Use: "sql STATEMENT",
        Short: "Run a SQL statement against the index with simple_query() and simple_tokenize() available",
        Args: cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, dict, err := app.setup()
            if err != nil {
                return err
            }
            idx, err := app.openIndex(cfg, dict)
            if err != nil {
                return err
            }
            defer idx.Close()
            return runStatement(idx.DB, args[0], app.Out)
        },
    }
}

func newBackupCommand(app *application) *cobra.Command {
    return &cobra.Command{
        Use: "backup DESTINATION",
        Short: "Write a consistent copy of the index",
        Args: cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, dict, err := app.setup()
            if err != nil {
                return err
            }
            idx, err := app.openIndex(cfg, dict)
            if err != nil {
                return err
            }
            defer idx.Close()

            size, err := idx.Backup(args[0])
            if err != nil {
                return err
            }
            fmt.Fprintf(app.Out, "%d\n", size)
            return nil
        },
    }
}

func newPurgeCommand(app *application) *cobra.Command {
    return &cobra.Command{
        Use: "purge",
        Short: "Remove documents older than --max-age from the index",
        Args: cobra.NoArgs,
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, dict, err := app.setup()
            if err != nil {
                return err
            }
            if cfg.MaxAge == 0 {
                return fmt.Errorf("'max_age' should be positive for purging")
            }
            idx, err := app.openIndex(cfg, dict)
            if err != nil {
                return err
            }
            defer idx.Close()

            removed, err := idx.Purge(cfg.MaxAge)
            if err != nil {
                return err
            }
            fmt.Fprintf(app.Out, "%d\n", removed)
            return nil
        },
    }
}

// Purges old documents every interval until the returned function is called.
// That function only returns once the purging goroutine has exited.
func startPurger(idx *st.Index, maxlife time.Duration, interval time.Duration) func() {
    ticker := time.NewTicker(interval)
    done := make(chan struct{})
    finished := make(chan struct{})

    go func() {
        defer close(finished)
        for {
            select {
            case <-done:
                return
            case <-ticker.C:
                removed, err := idx.Purge(maxlife)
                if err != nil {
                    log.Printf("failed to purge old documents; %v", err)
                } else if removed > 0 {
                    log.Printf("purged %d old documents", removed)
                }
            }
        }
    }()

    return func() {
        ticker.Stop()
        close(done)
        <-finished
    }
}

func newServeCommand(app *application) *cobra.Command {
    cmd := &cobra.Command{
        Use: "serve",
        Short: "Serve the tokenizer and index over HTTP",
        Args: cobra.NoArgs,
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, dict, err := app.setup()
            if err != nil {
                return err
            }
            idx, err := app.openIndex(cfg, dict)
            if err != nil {
                return err
            }
            defer idx.Close()

            if cfg.MaxAge > 0 {
                stop := startPurger(idx, cfg.MaxAge, time.Hour)
                defer stop()
            }

            mux, err := newServeMux(dict, idx, cfg.TokenizerArgs(), newServerMetrics())
            if err != nil {
                return err
            }

            log.Printf("listening on port %d with the index at %q", cfg.Port, cfg.Db)
            return http.ListenAndServe(":" + strconv.Itoa(cfg.Port), mux)
        },
    }

    cmd.Flags().Int("port", 8080, "Port to listen to for requests")
    app.Reader.BindPFlag("port", cmd.Flags().Lookup("port"))
    return cmd
}

/**********************************************************************/

func main() {
    err := newRootCommand(os.Stdout).Execute()
    if err != nil {
        log.Fatalf("failed to run; %v", err)
    }
}
