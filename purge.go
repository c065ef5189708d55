package simpletokenizer

import (
    "fmt"
    "time"
)

// Purge removes every document that was added more than maxlife ago. It
// returns the number of documents that were removed.
func (idx *Index) Purge(maxlife time.Duration) (int64, error) {
    threshold := time.Now().Add(-maxlife).Unix()

    atx, err := createTransaction(idx.DB)
    if err != nil {
        return 0, fmt.Errorf("failed to prepare transaction for purging; %w", err)
    }
    defer atx.Finish()

    _, err = atx.Tx.Exec("DELETE FROM terms WHERE rowid IN (SELECT did FROM documents WHERE time <= ?)", threshold)
    if err != nil {
        return 0, fmt.Errorf("failed to purge old terms; %w", err)
    }

    res, err := atx.Tx.Exec("DELETE FROM documents WHERE time <= ?", threshold)
    if err != nil {
        return 0, fmt.Errorf("failed to purge old documents; %w", err)
    }
    removed, err := res.RowsAffected()
    if err != nil {
        return 0, fmt.Errorf("failed to count purged documents; %w", err)
    }

    err = atx.Tx.Commit()
    if err != nil {
        return 0, fmt.Errorf("failed to commit purge; %w", err)
    }
    return removed, nil
}
