package main

import (
    "errors"
    "net/http"
    "strings"
)

type httpError struct {
    Status int
    Reason error
}

func (r *httpError) Error() string {
    return r.Reason.Error()
}

func (r *httpError) Unwrap() error {
    return r.Reason
}

func newHttpError(status int, reason error) *httpError {
    return &httpError{ Status: status, Reason: reason }
}

func checkRequestMethod(r *http.Request, allowed ...string) error {
    for _, a := range allowed {
        if r.Method == a {
            return nil
        }
    }
    return newHttpError(http.StatusMethodNotAllowed, errors.New("expected a " + strings.Join(allowed, " or ") + " request"))
}
