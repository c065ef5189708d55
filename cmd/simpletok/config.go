package main

import (
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/spf13/viper"

    st "github.com/hanzi-fts/simpletokenizer"
)

type appConfig struct {
    Port int
    Db string
    DisablePinyin bool
    DisableStopword bool
    CacheSize int
    PinyinData string
    StopwordData string
    MaxAge time.Duration
}

// Settings come from (in increasing priority) defaults, the optional YAML
// file, SIMPLETOK_* environment variables and command-line flags.
func newConfigReader() *viper.Viper {
    v := viper.New()
    v.SetDefault("port", 8080)
    v.SetDefault("db", ":memory:")
    v.SetDefault("disable_pinyin", false)
    v.SetDefault("disable_stopword", false)
    v.SetDefault("cache_size", st.DefaultCacheSize)
    v.SetDefault("pinyin_data", "")
    v.SetDefault("stopword_data", "")
    v.SetDefault("max_age", time.Duration(0))

    v.SetEnvPrefix("SIMPLETOK")
    v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
    v.AutomaticEnv()
    return v
}

func loadConfig(v *viper.Viper, config_path string) (*appConfig, error) {
    if config_path != "" {
        v.SetConfigFile(config_path)
        err := v.ReadInConfig()
        if err != nil {
            return nil, fmt.Errorf("failed to read the configuration file at %q; %w", config_path, err)
        }
    }

    cfg := &appConfig{
        Port: v.GetInt("port"),
        Db: v.GetString("db"),
        DisablePinyin: v.GetBool("disable_pinyin"),
        DisableStopword: v.GetBool("disable_stopword"),
        CacheSize: v.GetInt("cache_size"),
        PinyinData: v.GetString("pinyin_data"),
        StopwordData: v.GetString("stopword_data"),
        MaxAge: v.GetDuration("max_age"),
    }

    if cfg.Port <= 0 || cfg.Port > 65535 {
        return nil, fmt.Errorf("invalid port %d", cfg.Port)
    }
    if cfg.MaxAge < 0 {
        return nil, fmt.Errorf("'max_age' should be non-negative")
    }
    if cfg.Db == "" {
        return nil, fmt.Errorf("'db' should be a non-empty path")
    }
    return cfg, nil
}

// Arguments for the tokenizers, as they would be supplied to the FTS5
// tokenizer declaration.
func (cfg *appConfig) TokenizerArgs() []string {
    output := []string{}
    if cfg.DisablePinyin {
        output = append(output, "disable_pinyin")
    }
    if cfg.DisableStopword {
        output = append(output, "disable_stopword")
    }
    return output
}

func buildDictionary(cfg *appConfig) (*st.Dictionary, error) {
    var registry *st.Registry
    if cfg.PinyinData != "" {
        handle, err := os.Open(cfg.PinyinData)
        if err != nil {
            return nil, fmt.Errorf("failed to open the pinyin data at %q; %w", cfg.PinyinData, err)
        }
        defer handle.Close()

        registry, err = st.ParseRegistry(handle)
        if err != nil {
            return nil, fmt.Errorf("failed to load the pinyin data at %q; %w", cfg.PinyinData, err)
        }
    } else {
        var err error
        registry, err = st.DefaultRegistry()
        if err != nil {
            return nil, fmt.Errorf("failed to load the default pinyin data; %w", err)
        }
    }

    var stopwords *st.StopwordSet
    if cfg.StopwordData != "" {
        handle, err := os.Open(cfg.StopwordData)
        if err != nil {
            return nil, fmt.Errorf("failed to open the stopword list at %q; %w", cfg.StopwordData, err)
        }
        defer handle.Close()

        stopwords, err = st.ParseStopwords(handle)
        if err != nil {
            return nil, fmt.Errorf("failed to load the stopword list at %q; %w", cfg.StopwordData, err)
        }
    } else {
        var err error
        stopwords, err = st.DefaultStopwords()
        if err != nil {
            return nil, fmt.Errorf("failed to load the default stopword list; %w", err)
        }
    }

    return st.NewDictionary(registry, stopwords, cfg.CacheSize)
}

func newTokenizer(name string, dict *st.Dictionary, args []string) (st.Tokenizer, error) {
    switch name {
    case "simple":
        tok, err := st.NewSimpleTokenizer(dict, args)
        if err != nil {
            return nil, err
        }
        return tok, nil
    case "jieba":
        tok, err := st.NewJiebaTokenizer(dict, args)
        if err != nil {
            return nil, err
        }
        return tok, nil
    }
    return nil, fmt.Errorf("unknown tokenizer %q", name)
}
