package main

func equalStringArrays(x []string, y []string) bool {
    if x == nil || y == nil {
        return false
    }
    if len(x) != len(y) {
        return false
    }
    for i := range x {
        if x[i] != y[i] {
            return false
        }
    }
    return true
}
