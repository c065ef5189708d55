package simpletokenizer

import (
    "context"
    "database/sql"
    "database/sql/driver"
    "errors"
    "fmt"
    "os"
    "strconv"
    "strings"
    "sync"
    "time"

    "modernc.org/sqlite"
)

type ActiveTransaction struct {
    Conn *sql.Conn
    Tx *sql.Tx
}

func (t *ActiveTransaction) Finish() {
    t.Tx.Rollback() // This is a no-op once committed.
    t.Conn.Close()
}

func createTransaction(db *sql.DB) (*ActiveTransaction, error) {
    ctx := context.Background()
    success := false

    // database/sql manages the pool itself, so the pragmas have to be run on
    // every connection we get, just in case it is a new one.
    conn, err := db.Conn(ctx)
    if err != nil {
        return nil, fmt.Errorf("failed to acquire connection; %w", err)
    }
    defer func() {
        if !success {
            conn.Close()
        }
    }()

    _, err = conn.ExecContext(ctx, "PRAGMA busy_timeout = 10000")
    if err != nil {
        return nil, fmt.Errorf("failed to enable busy timeout; %w", err)
    }

    _, err = conn.ExecContext(ctx, "PRAGMA synchronous = NORMAL")
    if err != nil {
        return nil, fmt.Errorf("failed to enable normal synchronous mode; %w", err)
    }

    tx, err := conn.BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("failed to create transaction; %w", err)
    }

    success = true
    return &ActiveTransaction{ Conn: conn, Tx: tx }, nil
}

const inMemoryPath = ":memory:"

func initializeDatabase(path string) (*sql.DB, error) {
    in_memory := path == inMemoryPath
    accessible := false
    if !in_memory {
        if _, err := os.Stat(path); err == nil {
            accessible = true
        }
    }

    db, err := sql.Open("sqlite", path)
    if err != nil {
        return nil, fmt.Errorf("failed to create SQLite file at %q; %w", path, err)
    }

    // Every connection to ":memory:" is a separate database.
    if in_memory {
        db.SetMaxOpenConns(1)
    }

    if !accessible {
        err := func() error {
            atx, err := createTransaction(db)
            if err != nil {
                return fmt.Errorf("failed to prepare transaction for table setup; %w", err)
            }
            defer atx.Finish()

            _, err = atx.Tx.Exec(`
CREATE TABLE IF NOT EXISTS documents(
    did INTEGER PRIMARY KEY,
    content TEXT NOT NULL,
    time INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS index_documents_time ON documents(time);

CREATE VIRTUAL TABLE IF NOT EXISTS terms USING fts5(tokens, tokenize = 'unicode61 remove_diacritics 0');
`)
            if err != nil {
                return fmt.Errorf("failed to create tables in %q; %w", path, err)
            }

            err = atx.Tx.Commit()
            if err != nil {
                return fmt.Errorf("failed to commit table creation commands for %q; %w", path, err)
            }

            if !in_memory {
                // Write-ahead logging is persistent, so it only needs to be set once.
                _, err = atx.Conn.ExecContext(context.Background(), "PRAGMA journal_mode = WAL")
                if err != nil {
                    return fmt.Errorf("failed to enable write-ahead logging; %w", err)
                }
            }

            return nil
        }()

        if err != nil {
            db.Close()
            if !in_memory {
                os.Remove(path)
            }
            return nil, err
        }
    }

    return db, nil
}

/**********************************************************************/

var (
    register_once sync.Once
    register_err error
)

func sqliteTypeName(value driver.Value) string {
    switch value.(type) {
    case nil:
        return "null"
    case int64:
        return "integer"
    case float64:
        return "real"
    case []byte:
        return "blob"
    case string:
        return "text"
    }
    return fmt.Sprintf("%T", value)
}

func simpleQueryFunction(synth *Synthesizer, args []driver.Value) (driver.Value, error) {
    text, ok := args[0].(string)
    if !ok {
        return nil, &InputTypeError{ Got: sqliteTypeName(args[0]) }
    }
    expr := synth.Synthesize(text)
    if expr == "" {
        return nil, nil
    }
    return expr, nil
}

func simpleTokenizeFunction(dict *Dictionary, args []driver.Value) (driver.Value, error) {
    if len(args) == 0 {
        return nil, fmt.Errorf("simple_tokenize requires at least one argument")
    }
    text, ok := args[0].(string)
    if !ok {
        return nil, &InputTypeError{ Got: sqliteTypeName(args[0]) }
    }

    tok_args := []string{}
    for _, a := range args[1:] {
        if s, ok := a.(string); ok {
            tok_args = append(tok_args, s)
        }
    }

    tokenizer, err := NewSimpleTokenizer(dict, tok_args)
    if err != nil {
        return nil, err
    }
    tokens, err := tokenizer.Tokenize(DocumentReason, []byte(text))
    if err != nil {
        return nil, err
    }
    return joinTokens(tokens), nil
}

func joinTokens(tokens []Token) string {
    collected := make([]string, len(tokens))
    for i, t := range tokens {
        collected[i] = string(t.Text)
    }
    return strings.Join(collected, " ")
}

// RegisterFunctions makes the simple_query(text) and simple_tokenize(text,
// args...) SQL functions available on all SQLite connections opened from now
// on. Registration happens once per process, so only the dictionary from the
// first call is used.
func RegisterFunctions(dict *Dictionary) error {
    if dict == nil {
        return fmt.Errorf("dictionary must be supplied")
    }

    register_once.Do(func() {
        synth, err := NewSynthesizer(dict)
        if err != nil {
            register_err = err
            return
        }

        err = sqlite.RegisterDeterministicScalarFunction("simple_query", 1, func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
            return simpleQueryFunction(synth, args)
        })
        if err != nil {
            register_err = fmt.Errorf("failed to register simple_query; %w", err)
            return
        }

        err = sqlite.RegisterDeterministicScalarFunction("simple_tokenize", -1, func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
            return simpleTokenizeFunction(dict, args)
        })
        if err != nil {
            register_err = fmt.Errorf("failed to register simple_tokenize; %w", err)
            return
        }
    })

    return register_err
}

/**********************************************************************/

// Index stores documents in SQLite and searches them through an FTS5 table
// holding the tokens that SimpleTokenizer produced for each document.
type Index struct {
    DB *sql.DB
    Path string
    tokenizer *SimpleTokenizer
    pinyinTokenizer *SimpleTokenizer
    synthesizer *Synthesizer
}

// OpenIndex opens (or creates) an index at path; ":memory:" gives a private
// in-memory index. args are passed to NewSimpleTokenizer.
func OpenIndex(path string, dict *Dictionary, args []string) (*Index, error) {
    tokenizer, err := NewSimpleTokenizer(dict, args)
    if err != nil {
        return nil, err
    }

    // Pinyin pieces are never stopwords, even when they happen to spell one
    // (e.g. "he", "an").
    pinyin_tokenizer, err := NewSimpleTokenizer(dict, append(append([]string{}, args...), argDisableStopword))
    if err != nil {
        return nil, err
    }

    synth, err := NewSynthesizer(dict)
    if err != nil {
        return nil, err
    }
    if !tokenizer.PinyinEnabled() {
        synth = synth.Literal()
    }

    db, err := initializeDatabase(path)
    if err != nil {
        return nil, err
    }

    return &Index{
        DB: db,
        Path: path,
        tokenizer: tokenizer,
        pinyinTokenizer: pinyin_tokenizer,
        synthesizer: synth,
    }, nil
}

func (idx *Index) Close() error {
    return idx.DB.Close()
}

// Pre-building the insertion statements, as each batch inserts many
// documents within the same transaction.
type insertStatements struct {
    Document *sql.Stmt
    Terms *sql.Stmt
}

func (s *insertStatements) Close() {
    if s.Document != nil {
        s.Document.Close()
    }
    if s.Terms != nil {
        s.Terms.Close()
    }
}

func newInsertStatements(tx *sql.Tx) (*insertStatements, error) {
    output := &insertStatements{}
    success := false
    defer func() {
        if !success {
            output.Close()
        }
    }()

    d, err := tx.Prepare("INSERT INTO documents(content, time) VALUES(?, ?) RETURNING did")
    if err != nil {
        return nil, fmt.Errorf("failed to prepare document insertion statement; %w", err)
    }
    output.Document = d

    t, err := tx.Prepare("INSERT INTO terms(rowid, tokens) VALUES(?, ?)")
    if err != nil {
        return nil, fmt.Errorf("failed to prepare term insertion statement; %w", err)
    }
    output.Terms = t

    success = true
    return output, nil
}

// AddDocuments tokenizes and stores each text, returning the new document
// identifiers in the same order. Either all documents are added or none are.
func (idx *Index) AddDocuments(texts []string) ([]int64, error) {
    atx, err := createTransaction(idx.DB)
    if err != nil {
        return nil, fmt.Errorf("failed to prepare transaction for document insertion; %w", err)
    }
    defer atx.Finish()

    prepped, err := newInsertStatements(atx.Tx)
    if err != nil {
        return nil, err
    }
    defer prepped.Close()

    now := time.Now().Unix()
    output := make([]int64, 0, len(texts))
    for i, text := range texts {
        tokens, err := idx.tokenizer.Tokenize(DocumentReason, []byte(text))
        if err != nil {
            return nil, fmt.Errorf("failed to tokenize document %d; %w", i, err)
        }

        var did int64
        err = prepped.Document.QueryRow(text, now).Scan(&did)
        if err != nil {
            return nil, fmt.Errorf("failed to insert document %d; %w", i, err)
        }

        _, err = prepped.Terms.Exec(did, joinTokens(tokens))
        if err != nil {
            return nil, fmt.Errorf("failed to insert terms for document %d; %w", i, err)
        }
        output = append(output, did)
    }

    err = atx.Tx.Commit()
    if err != nil {
        return nil, fmt.Errorf("failed to commit document insertion; %w", err)
    }
    return output, nil
}

// DeleteDocuments removes the listed documents; unknown identifiers are
// ignored.
func (idx *Index) DeleteDocuments(ids []int64) error {
    atx, err := createTransaction(idx.DB)
    if err != nil {
        return fmt.Errorf("failed to prepare transaction for document deletion; %w", err)
    }
    defer atx.Finish()

    for _, did := range ids {
        _, err := atx.Tx.Exec("DELETE FROM documents WHERE did = ?", did)
        if err != nil {
            return fmt.Errorf("failed to delete document %d; %w", did, err)
        }
        _, err = atx.Tx.Exec("DELETE FROM terms WHERE rowid = ?", did)
        if err != nil {
            return fmt.Errorf("failed to delete terms for document %d; %w", did, err)
        }
    }

    err = atx.Tx.Commit()
    if err != nil {
        return fmt.Errorf("failed to commit document deletion; %w", err)
    }
    return nil
}

func (idx *Index) CountDocuments() (int64, error) {
    var count int64
    err := idx.DB.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count)
    if err != nil {
        return 0, fmt.Errorf("failed to count documents; %w", err)
    }
    return count, nil
}

/**********************************************************************/

func quoteFts5(term string) string {
    return "\"" + strings.ReplaceAll(term, "\"", "\"\"") + "\""
}

// Each piece of the expression goes through the same tokenizer as the
// documents, so that stemming and lowercasing line up with the index.
// Anything that could be a pinyin syllable skips stopword removal, as the
// index keeps every reading of a character.
func (idx *Index) renderPiece(piece string, pinyin bool) string {
    tokenizer := idx.tokenizer
    if pinyin || IsValidSyllable(piece) || IsSyllablePrefix(piece) {
        tokenizer = idx.pinyinTokenizer
    }

    tokens, err := tokenizer.Tokenize(PrefixQueryReason, []byte(piece))
    if err != nil || len(tokens) == 0 {
        return ""
    }
    return quoteFts5(joinTokens(tokens))
}

// MatchExpression converts query text into an FTS5 MATCH string. An empty
// string means that nothing can match.
func (idx *Index) MatchExpression(query string) string {
    return idx.synthesizer.Build(query).Render(idx.renderPiece)
}

type SearchResult struct {
    Id int64 `json:"id"`
    Content string `json:"content"`
    Time int64 `json:"time"`
}

// Search returns documents matching every word of query, ordered by
// identifier. Results start after the document with identifier 'after' (use
// zero for the first page); limit <= 0 means no limit.
func (idx *Index) Search(query string, after int64, limit int) ([]SearchResult, error) {
    output := []SearchResult{}

    match := idx.MatchExpression(query)
    if match == "" {
        return output, nil
    }

    full := "SELECT documents.did, documents.content, documents.time FROM terms JOIN documents ON documents.did = terms.rowid WHERE terms MATCH ? AND documents.did > ? ORDER BY documents.did"
    if limit > 0 {
        full += " LIMIT " + strconv.Itoa(limit)
    }

    rows, err := idx.DB.Query(full, match, after)
    if err != nil {
        return nil, fmt.Errorf("failed to perform query %q; %w", match, err)
    }
    defer rows.Close()

    for rows.Next() {
        var res SearchResult
        err = rows.Scan(&res.Id, &res.Content, &res.Time)
        if err != nil {
            return nil, fmt.Errorf("failed to extract row; %w", err)
        }
        output = append(output, res)
    }

    if err := rows.Err(); err != nil {
        return nil, fmt.Errorf("failed to iterate over results; %w", err)
    }
    return output, nil
}

/**********************************************************************/

// Backup writes a consistent copy of the index to path and returns the size
// of the copy in bytes. The copy is assembled next to path and only moved
// into place once complete, so a failed backup leaves any previous file at
// path untouched.
func (idx *Index) Backup(path string) (int64, error) {
    partial := path + ".partial"
    err := os.Remove(partial)
    if err != nil && !errors.Is(err, os.ErrNotExist) {
        return 0, fmt.Errorf("failed to remove a stale partial backup at %q; %w", partial, err)
    }

    _, err = idx.DB.Exec("VACUUM INTO ?", partial)
    if err != nil {
        all_errors := []error{ fmt.Errorf("failed to create a backup database; %w", err) }
        if rerr := os.Remove(partial); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
            all_errors = append(all_errors, fmt.Errorf("failed to clean up the partial backup; %w", rerr))
        }
        return 0, errors.Join(all_errors...)
    }

    info, err := os.Stat(partial)
    if err != nil {
        return 0, fmt.Errorf("failed to inspect the partial backup; %w", err)
    }

    err = os.Rename(partial, path)
    if err != nil {
        return 0, fmt.Errorf("failed to move the backup database into place; %w", err)
    }
    return info.Size(), nil
}
