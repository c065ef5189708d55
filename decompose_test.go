package simpletokenizer

import (
    "strings"
    "testing"
)

func TestDecompose(t *testing.T) {
    t.Run("short", func(t *testing.T) {
        if out := Decompose(""); !equalStringArrays(out, []string{ "" }) {
            t.Fatalf("unexpected decomposition of an empty string; %q", out)
        }
        if out := Decompose("a"); !equalStringArrays(out, []string{ "a" }) {
            t.Fatalf("unexpected decomposition of a single character; %q", out)
        }
        if out := Decompose("ba"); !equalStringArrays(out, []string{ "b+a", "ba" }) {
            t.Fatalf("unexpected decomposition of a two-character word; %q", out)
        }
    })

    t.Run("syllables", func(t *testing.T) {
        out := Decompose("zhuang")
        if !equalStringArrays(out, []string{ "z+h+u+a+n+g", "zhu+an+g", "zhu+ang", "zhuan+g", "zhuang" }) {
            t.Fatalf("unexpected decomposition; %q", out)
        }

        out = Decompose("zhangliangy")
        if !equalStringArrays(out, []string{ "z+h+a+n+g+l+i+a+n+g+y", "zhang+li+ang+y", "zhang+liang+y", "zhangliangy" }) {
            t.Fatalf("unexpected decomposition; %q", out)
        }

        out = Decompose("zhangliangying")
        if !equalStringArrays(out, []string{
            "z+h+a+n+g+l+i+a+n+g+y+i+n+g",
            "zhang+li+ang+yin+g",
            "zhang+li+ang+ying",
            "zhang+liang+yin+g",
            "zhang+liang+ying",
            "zhangliangying",
        }) {
            t.Fatalf("unexpected decomposition; %q", out)
        }

        out = Decompose("guo")
        if !equalStringArrays(out, []string{ "g+u+o", "gu+o", "guo" }) {
            t.Fatalf("unexpected decomposition; %q", out)
        }
    })

    t.Run("trailing prefix", func(t *testing.T) {
        // 'zhon' is only accepted as the final piece.
        out := Decompose("zhon")
        found := false
        for _, d := range out {
            if d == "zhon" {
                found = true
            }
        }
        if !found {
            t.Fatalf("expected the prefix to be reported as its own decomposition; %q", out)
        }

        out = Decompose("zhonguo")
        for _, d := range out {
            if strings.HasPrefix(d, "zhon+") {
                t.Fatalf("prefixes should never be followed by another piece; %q", out)
            }
        }
    })

    t.Run("too long", func(t *testing.T) {
        word := "thisisaverylongwordthatshouldnotbesplit"
        if out := Decompose(word); !equalStringArrays(out, []string{ word }) {
            t.Fatalf("long words should be returned unchanged; %q", out)
        }

        word = strings.Repeat("a", 21)
        if out := Decompose(word); !equalStringArrays(out, []string{ word }) {
            t.Fatalf("words over the limit should be returned unchanged")
        }

        word = strings.Repeat("a", 20)
        if out := Decompose(word); len(out) < 2 {
            t.Fatalf("words at the limit should still be decomposed")
        }
    })

    t.Run("non-ASCII", func(t *testing.T) {
        out := Decompose("中国")
        if !equalStringArrays(out, []string{ "中+国", "中国" }) {
            t.Fatalf("unexpected decomposition; %q", out)
        }

        out = Decompose("café")
        for _, d := range out {
            for _, piece := range strings.Split(d, "+") {
                if !strings.Contains("café", piece) {
                    t.Fatalf("pieces should be whole characters; %q", out)
                }
            }
        }
    })

    t.Run("invariants", func(t *testing.T) {
        for _, word := range []string{ "xian", "zhangliangying", "shuangxiang", "abc", "nvren" } {
            out := Decompose(word)
            has_word := false
            for i, d := range out {
                if i > 0 && out[i - 1] >= d {
                    t.Fatalf("output should be sorted and unique; %q", out)
                }
                if strings.ReplaceAll(d, "+", "") != word {
                    t.Fatalf("decomposition %q does not spell out %q", d, word)
                }
                if d == word {
                    has_word = true
                }
            }
            if !has_word {
                t.Fatalf("decomposition should contain the word itself")
            }
        }
    })
}

func TestDecomposer(t *testing.T) {
    t.Run("cached", func(t *testing.T) {
        d, err := NewDecomposer(10)
        if err != nil {
            t.Fatalf(err.Error())
        }

        first := d.Decompose("zhuang")
        if !equalStringArrays(first, Decompose("zhuang")) {
            t.Fatalf("cached decomposition should be the same as the uncached one")
        }
        if d.CacheLen() != 1 {
            t.Fatalf("expected one cached entry")
        }

        first[0] = "foo"
        second := d.Decompose("zhuang")
        if !equalStringArrays(second, Decompose("zhuang")) {
            t.Fatalf("cached entries should not be modified by callers")
        }
    })

    t.Run("bounded", func(t *testing.T) {
        d, err := NewDecomposer(2)
        if err != nil {
            t.Fatalf(err.Error())
        }
        for _, word := range []string{ "zhong", "guo", "ren", "min" } {
            d.Decompose(word)
        }
        if d.CacheLen() != 2 {
            t.Fatalf("cache should be bounded")
        }
    })

    t.Run("uncached", func(t *testing.T) {
        d, err := NewDecomposer(0)
        if err != nil {
            t.Fatalf(err.Error())
        }
        if !equalStringArrays(d.Decompose("guo"), []string{ "g+u+o", "gu+o", "guo" }) {
            t.Fatalf("unexpected decomposition without a cache")
        }
        if d.CacheLen() != 0 {
            t.Fatalf("no cache should be present")
        }
    })
}
