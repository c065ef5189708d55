package simpletokenizer

import (
    "strings"
    "testing"
)

func TestSynthesize(t *testing.T) {
    dict := defaultDictionaryForTest(t)
    synth, err := NewSynthesizer(dict)
    if err != nil {
        t.Fatalf(err.Error())
    }

    t.Run("single character", func(t *testing.T) {
        out := synth.Synthesize("国")
        if out != "(g+u+o* OR gu+o* OR guo*)" {
            t.Fatalf("unexpected expression %q", out)
        }
    })

    t.Run("polyphonic", func(t *testing.T) {
        // All readings end up in the same group.
        out := synth.Synthesize("说")
        if strings.Count(out, "(") != 1 {
            t.Fatalf("expected one group for a single character; %q", out)
        }
        for _, r := range []string{ "shuo*", "shui*", "yue*", "shu+o*", "y+u+e*" } {
            if !strings.Contains(out, r) {
                t.Fatalf("expected %q in %q", r, out)
            }
        }
    })

    t.Run("latin", func(t *testing.T) {
        out := synth.Synthesize("zhuang")
        if out != "(z+h+u+a+n+g* OR zhu+an+g* OR zhu+ang* OR zhuan+g* OR zhuang*)" {
            t.Fatalf("unexpected expression %q", out)
        }

        // Lowercased before decomposition.
        if synth.Synthesize("ZHUANG") != out {
            t.Fatalf("query words should be lowercased")
        }
    })

    t.Run("multiple words", func(t *testing.T) {
        out := synth.Synthesize("国 ba")
        if out != "(g+u+o* OR gu+o* OR guo*) AND (b+a* OR ba*)" {
            t.Fatalf("unexpected expression %q", out)
        }

        out = synth.Synthesize("中国")
        if out != "(z+h+o+n+g* OR zhong*) AND (g+u+o* OR gu+o* OR guo*)" {
            t.Fatalf("expected one group per character; %q", out)
        }
    })

    t.Run("empty", func(t *testing.T) {
        if out := synth.Synthesize(""); out != "" {
            t.Fatalf("expected an empty expression; %q", out)
        }
        if out := synth.Synthesize(" ,.!? "); out != "" {
            t.Fatalf("expected an empty expression; %q", out)
        }
    })

    t.Run("literal", func(t *testing.T) {
        out := synth.Literal().Synthesize("国")
        if out != "(国*)" {
            t.Fatalf("unexpected literal expression %q", out)
        }
    })
}

func TestExpressionRender(t *testing.T) {
    dict := defaultDictionaryForTest(t)
    synth, err := NewSynthesizer(dict)
    if err != nil {
        t.Fatalf(err.Error())
    }

    expr := synth.Build("国 ba")
    if expr.Empty() || len(expr.Groups) != 2 {
        t.Fatalf("expected two groups")
    }
    if !expr.Groups[0].Pinyin || expr.Groups[1].Pinyin {
        t.Fatalf("only the character should be flagged as pinyin")
    }
    if expr.Groups[0].Word != "国" || expr.Groups[1].Word != "ba" {
        t.Fatalf("groups should remember their words")
    }

    t.Run("quoted", func(t *testing.T) {
        out := expr.Render(func(piece string, pinyin bool) string {
            return "\"" + piece + "\""
        })
        if out != "(\"g\" + \"u\" + \"o\"* OR \"gu\" + \"o\"* OR \"guo\"*) AND (\"b\" + \"a\"* OR \"ba\"*)" {
            t.Fatalf("unexpected rendering %q", out)
        }
    })

    t.Run("dropped pieces", func(t *testing.T) {
        // Empty pieces are left out of their candidates.
        out := expr.Render(func(piece string, pinyin bool) string {
            if piece == "o" || piece == "b" {
                return ""
            }
            return piece
        })
        if out != "(g + u* OR gu* OR guo*) AND (a* OR ba*)" {
            t.Fatalf("unexpected rendering %q", out)
        }
    })

    t.Run("dropped words", func(t *testing.T) {
        stopped := synth.Build("the ba")
        out := stopped.Render(func(piece string, pinyin bool) string {
            if piece == "the" {
                return ""
            }
            return piece
        })
        if out != "(b + a* OR ba*)" {
            t.Fatalf("spelled-out forms of a dropped word should not survive; %q", out)
        }
    })

    t.Run("dropped groups", func(t *testing.T) {
        out := expr.Render(func(piece string, pinyin bool) string {
            if pinyin {
                return ""
            }
            return piece
        })
        if out != "(b + a* OR ba*)" {
            t.Fatalf("unexpected rendering %q", out)
        }

        out = expr.Render(func(piece string, pinyin bool) string {
            return ""
        })
        if out != "" {
            t.Fatalf("expected an empty rendering; %q", out)
        }
    })
}
