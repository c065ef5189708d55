package main

import (
    "log"
    "fmt"

    "net/http"
    "net/url"
    "encoding/json"
    "errors"
    "strconv"

    st "github.com/hanzi-fts/simpletokenizer"
)

func dumpJsonResponse(w http.ResponseWriter, status int, v interface{}) {
    contents, err := json.Marshal(v)
    if err != nil {
        log.Printf("failed to convert response to JSON; %v", err)
        contents = []byte("unknown")
    }

    w.Header().Set("Content-Type", "application/json")
    w.Header().Set("Access-Control-Allow-Origin", "*")
    w.WriteHeader(status)
    _, err = w.Write(contents)
    if err != nil {
        log.Printf("failed to write JSON response; %v", err)
        return
    }
}

func dumpHttpErrorResponse(w http.ResponseWriter, err error) {
    status_code := http.StatusInternalServerError
    var http_err *httpError
    if errors.As(err, &http_err) {
        status_code = http_err.Status
    }
    dumpJsonResponse(w, status_code, map[string]interface{}{ "status": "ERROR", "reason": err.Error() })
}

func configureCors(w http.ResponseWriter, r *http.Request) bool {
    if r.Method == "OPTIONS" {
        w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Headers", "*")
        w.WriteHeader(http.StatusNoContent)
        return true
    } else {
        return false
    }
}

func decodeRequestBody(w http.ResponseWriter, r *http.Request, output interface{}) error {
    if r.Body == nil {
        return newHttpError(http.StatusBadRequest, errors.New("expected a non-empty request body"))
    }
    restricted := http.MaxBytesReader(w, r.Body, 1048576)
    dec := json.NewDecoder(restricted)
    err := dec.Decode(output)
    if err != nil {
        return newHttpError(http.StatusBadRequest, fmt.Errorf("failed to parse request body; %w", err))
    }
    return nil
}

/**********************************************************************/

func newDecomposeHandler(dict *st.Dictionary) func(http.ResponseWriter, *http.Request) {
    return func(w http.ResponseWriter, r *http.Request) {
        if configureCors(w, r) {
            return
        }
        if err := checkRequestMethod(r, "GET"); err != nil {
            dumpHttpErrorResponse(w, err)
            return
        }

        params := r.URL.Query()
        words, ok := params["word"]
        if !ok || len(words) == 0 {
            dumpJsonResponse(w, http.StatusBadRequest, map[string]string{ "status": "ERROR", "reason": "expected at least one 'word' query parameter" })
            return
        }

        output := map[string][]string{}
        for _, word := range words {
            output[word] = dict.Decomposer.Decompose(word)
        }
        dumpJsonResponse(w, http.StatusOK, map[string]interface{}{ "decompositions": output })
    }
}

type tokenResult struct {
    Text string `json:"text"`
    Start int `json:"start"`
    End int `json:"end"`
}

func newTokenizeHandler(tokenizers map[string]st.Tokenizer, metrics *serverMetrics) func(http.ResponseWriter, *http.Request) {
    return func(w http.ResponseWriter, r *http.Request) {
        if configureCors(w, r) {
            return
        }
        if err := checkRequestMethod(r, "POST"); err != nil {
            dumpHttpErrorResponse(w, err)
            return
        }

        request := struct {
            Text string `json:"text"`
            Reason string `json:"reason"`
            Tokenizer string `json:"tokenizer"`
        }{}
        err := decodeRequestBody(w, r, &request)
        if err != nil {
            dumpHttpErrorResponse(w, err)
            return
        }

        if request.Reason == "" {
            request.Reason = "document"
        }
        reason, err := st.ParseReason(request.Reason)
        if err != nil {
            dumpJsonResponse(w, http.StatusBadRequest, map[string]string{ "status": "ERROR", "reason": err.Error() })
            return
        }

        if request.Tokenizer == "" {
            request.Tokenizer = "simple"
        }
        tok, ok := tokenizers[request.Tokenizer]
        if !ok {
            dumpJsonResponse(w, http.StatusBadRequest, map[string]string{ "status": "ERROR", "reason": fmt.Sprintf("unknown tokenizer %q", request.Tokenizer) })
            return
        }

        counter := metrics.Tokens.WithLabelValues(tok.Name(), reason.String())
        collected := []tokenResult{}
        err = tok.TokenizeFunc(reason, []byte(request.Text), func(x st.Token) error {
            collected = append(collected, tokenResult{ Text: string(x.Text), Start: x.Start, End: x.End })
            counter.Inc()
            return nil
        })
        if err != nil {
            dumpHttpErrorResponse(w, fmt.Errorf("failed to tokenize text; %w", err))
            return
        }

        dumpJsonResponse(w, http.StatusOK, map[string]interface{}{ "tokens": collected })
    }
}

func newQueryHandler(synth *st.Synthesizer, metrics *serverMetrics) func(http.ResponseWriter, *http.Request) {
    return func(w http.ResponseWriter, r *http.Request) {
        if configureCors(w, r) {
            return
        }
        if err := checkRequestMethod(r, "GET"); err != nil {
            dumpHttpErrorResponse(w, err)
            return
        }

        params := r.URL.Query()
        if !params.Has("q") {
            dumpJsonResponse(w, http.StatusBadRequest, map[string]string{ "status": "ERROR", "reason": "expected a 'q' query parameter" })
            return
        }

        expr := synth.Build(params.Get("q"))
        rendered := expr.String()
        metrics.observeExpression(rendered)

        groups := [][]string{}
        for _, g := range expr.Groups {
            groups = append(groups, g.Candidates)
        }
        dumpJsonResponse(w, http.StatusOK, map[string]interface{}{ "expression": rendered, "groups": groups })
    }
}

/**********************************************************************/

func newSearchHandler(idx *st.Index, metrics *serverMetrics, endpoint string) func(http.ResponseWriter, *http.Request) {
    return func(w http.ResponseWriter, r *http.Request) {
        if configureCors(w, r) {
            return
        }
        if err := checkRequestMethod(r, "GET"); err != nil {
            dumpHttpErrorResponse(w, err)
            return
        }

        params := r.URL.Query()
        if !params.Has("q") {
            dumpJsonResponse(w, http.StatusBadRequest, map[string]string{ "status": "ERROR", "reason": "expected a 'q' query parameter" })
            return
        }
        query := params.Get("q")

        var after int64
        if params.Has("after") {
            after0, err := strconv.ParseInt(params.Get("after"), 10, 64)
            if err != nil || after0 < 0 {
                dumpJsonResponse(w, http.StatusBadRequest, map[string]string{ "status": "ERROR", "reason": "invalid 'after'" })
                return
            }
            after = after0
        }

        limit := 100
        if params.Has("limit") {
            limit0, err := strconv.Atoi(params.Get("limit"))
            if err != nil || limit0 <= 0 {
                dumpJsonResponse(w, http.StatusBadRequest, map[string]string{ "status": "ERROR", "reason": "invalid 'limit'" })
                return
            }
            if (limit0 < limit) {
                limit = limit0
            }
        }

        metrics.observeExpression(idx.MatchExpression(query))
        res, err := idx.Search(query, after, limit)
        if err != nil {
            dumpHttpErrorResponse(w, fmt.Errorf("failed to search the index; %w", err))
            return
        }

        respbody := map[string]interface{} { "results": res }
        if len(res) == limit {
            last := res[limit-1]
            respbody["next"] = endpoint + "?q=" + url.QueryEscape(query) + "&after=" + strconv.FormatInt(last.Id, 10) + "&limit=" + strconv.Itoa(limit)
        }

        dumpJsonResponse(w, http.StatusOK, respbody)
    }
}

func newIndexHandler(idx *st.Index) func(http.ResponseWriter, *http.Request) {
    return func(w http.ResponseWriter, r *http.Request) {
        if configureCors(w, r) {
            return
        }
        if err := checkRequestMethod(r, "POST", "DELETE"); err != nil {
            dumpHttpErrorResponse(w, err)
            return
        }

        if r.Method == "POST" {
            request := struct { Documents []string `json:"documents"` }{}
            err := decodeRequestBody(w, r, &request)
            if err != nil {
                dumpHttpErrorResponse(w, err)
                return
            }
            if len(request.Documents) == 0 {
                dumpJsonResponse(w, http.StatusBadRequest, map[string]string{ "status": "ERROR", "reason": "'documents' should contain at least one string" })
                return
            }

            ids, err := idx.AddDocuments(request.Documents)
            if err != nil {
                dumpHttpErrorResponse(w, fmt.Errorf("failed to add documents; %w", err))
                return
            }
            dumpJsonResponse(w, http.StatusOK, map[string]interface{}{ "status": "SUCCESS", "ids": ids })
            return
        }

        request := struct { Ids []int64 `json:"ids"` }{}
        err := decodeRequestBody(w, r, &request)
        if err != nil {
            dumpHttpErrorResponse(w, err)
            return
        }

        err = idx.DeleteDocuments(request.Ids)
        if err != nil {
            dumpHttpErrorResponse(w, fmt.Errorf("failed to delete documents; %w", err))
            return
        }
        dumpJsonResponse(w, http.StatusOK, map[string]string{ "status": "SUCCESS" })
    }
}

/**********************************************************************/

func newServeMux(dict *st.Dictionary, idx *st.Index, args []string, metrics *serverMetrics) (*http.ServeMux, error) {
    tokenizers := map[string]st.Tokenizer{}
    for _, name := range []string{ "simple", "jieba" } {
        tok, err := newTokenizer(name, dict, args)
        if err != nil {
            return nil, err
        }
        tokenizers[name] = tok
    }

    synth, err := st.NewSynthesizer(dict)
    if err != nil {
        return nil, err
    }

    mux := http.NewServeMux()
    mux.HandleFunc("/decompose", metrics.instrument("/decompose", newDecomposeHandler(dict)))
    mux.HandleFunc("/tokenize", metrics.instrument("/tokenize", newTokenizeHandler(tokenizers, metrics)))
    mux.HandleFunc("/query", metrics.instrument("/query", newQueryHandler(synth, metrics)))
    mux.HandleFunc("/search", metrics.instrument("/search", newSearchHandler(idx, metrics, "/search")))
    mux.HandleFunc("/index", metrics.instrument("/index", newIndexHandler(idx)))
    mux.Handle("/metrics", metrics.Handler())
    return mux, nil
}
