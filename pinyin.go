package simpletokenizer

import (
    "bufio"
    "fmt"
    "io"
    "sort"
    "strconv"
    "strings"
    "sync"
    "unicode/utf8"

    "github.com/mozillazg/go-pinyin"
)

// Registry maps a single Chinese character to its toneless pinyin readings.
// It is immutable once built and may be shared by any number of goroutines.
type Registry struct {
    readings map[rune][]string
}

// Maps accented finals to their plain letters. Anything not listed here is
// passed through and then checked by validateReading.
var toneToPlain = map[rune]rune{
    'ā': 'a', 'á': 'a', 'ǎ': 'a', 'à': 'a',
    'ē': 'e', 'é': 'e', 'ě': 'e', 'è': 'e', 'ế': 'e', 'ề': 'e', 'ê': 'e',
    'ō': 'o', 'ó': 'o', 'ǒ': 'o', 'ò': 'o',
    'ī': 'i', 'í': 'i', 'ǐ': 'i', 'ì': 'i',
    'ū': 'u', 'ú': 'u', 'ǔ': 'u', 'ù': 'u',
    'ǘ': 'u', 'ǚ': 'u', 'ǜ': 'u', 'ü': 'u',
    'ń': 'n', 'ň': 'n', 'ǹ': 'n',
    'ḿ': 'm',
}

func stripTone(raw string) string {
    var sb strings.Builder
    for _, c := range raw {
        if plain, ok := toneToPlain[c]; ok {
            sb.WriteRune(plain)
        } else if isCombiningDiacritic(c) {
            // Some readings carry a detached tone mark, e.g. 'ê' + U+0304.
            continue
        } else {
            sb.WriteRune(c)
        }
    }
    return sb.String()
}

func validateReading(reading string) bool {
    if reading == "" {
        return false
    }
    for i := 0; i < len(reading); i++ {
        c := reading[i]
        if c < 'a' || c > 'z' {
            return false
        }
    }
    return true
}

// Converts a comma-separated list of toned syllables into a sorted,
// deduplicated list of plain readings.
func parseReadings(raw string) ([]string, error) {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return nil, fmt.Errorf("no readings supplied")
    }

    present := map[string]bool{}
    output := []string{}
    for _, r := range strings.Split(raw, ",") {
        r = strings.TrimSpace(r)
        plain := stripTone(r)
        if !validateReading(plain) {
            return nil, fmt.Errorf("invalid reading %q", r)
        }
        if _, ok := present[plain]; !ok {
            present[plain] = true
            output = append(output, plain)
        }
    }

    sort.Strings(output)
    return output, nil
}

func validateCodepoint(codepoint int64) (rune, error) {
    if codepoint < 0 || codepoint > utf8.MaxRune || !utf8.ValidRune(rune(codepoint)) {
        return 0, fmt.Errorf("invalid codepoint %#x", codepoint)
    }
    return rune(codepoint), nil
}

// NewRegistry builds a Registry from a codepoint to comma-separated toned
// readings table, e.g. 0x4E2D: "zhōng,zhòng". Any malformed entry fails the
// whole construction.
func NewRegistry(table map[int]string) (*Registry, error) {
    output := &Registry{ readings: make(map[rune][]string, len(table)) }

    for codepoint, raw := range table {
        r, err := validateCodepoint(int64(codepoint))
        if err != nil {
            return nil, &LoadError{ Source: "pinyin table", Reason: err.Error() }
        }
        readings, err := parseReadings(raw)
        if err != nil {
            return nil, &LoadError{ Source: "pinyin table", Reason: fmt.Sprintf("%U: %v", r, err) }
        }
        output.readings[r] = readings
    }

    return output, nil
}

// ParseRegistry reads the text form of the pinyin artifact, one entry per
// line as "U+4E2D: zhōng,zhòng  # 中". Blank lines and comments are skipped.
func ParseRegistry(src io.Reader) (*Registry, error) {
    output := &Registry{ readings: map[rune][]string{} }

    scanner := bufio.NewScanner(src)
    line_number := 0
    for scanner.Scan() {
        line_number++
        line := scanner.Text()
        if hash := strings.IndexByte(line, '#'); hash >= 0 {
            line = line[:hash]
        }
        line = strings.TrimSpace(line)
        if line == "" {
            continue
        }

        fail := func(reason string) error {
            return &LoadError{ Source: "pinyin artifact", Line: line_number, Reason: reason }
        }

        raw_codepoint, raw_readings, found := strings.Cut(line, ":")
        if !found {
            return nil, fail("expected '<codepoint>: <readings>'")
        }

        raw_codepoint = strings.TrimSpace(raw_codepoint)
        if !strings.HasPrefix(raw_codepoint, "U+") && !strings.HasPrefix(raw_codepoint, "u+") {
            return nil, fail(fmt.Sprintf("codepoint %q should start with 'U+'", raw_codepoint))
        }
        parsed, err := strconv.ParseInt(raw_codepoint[2:], 16, 64)
        if err != nil {
            return nil, fail(fmt.Sprintf("failed to parse codepoint %q; %v", raw_codepoint, err))
        }
        r, err := validateCodepoint(parsed)
        if err != nil {
            return nil, fail(err.Error())
        }

        readings, err := parseReadings(raw_readings)
        if err != nil {
            return nil, fail(err.Error())
        }
        output.readings[r] = readings
    }

    if err := scanner.Err(); err != nil {
        return nil, fmt.Errorf("failed to read pinyin artifact; %w", err)
    }
    return output, nil
}

var (
    default_registry_once sync.Once
    default_registry *Registry
    default_registry_err error
)

// DefaultRegistry returns the registry built from the bundled pinyin table.
// The table is parsed on first use only.
func DefaultRegistry() (*Registry, error) {
    default_registry_once.Do(func() {
        default_registry, default_registry_err = NewRegistry(pinyin.PinyinDict)
        if default_registry_err != nil {
            default_registry_err = fmt.Errorf("failed to load the bundled pinyin table; %w", default_registry_err)
        }
    })
    return default_registry, default_registry_err
}

// Readings returns a copy of the readings for ch, sorted alphabetically.
func (r *Registry) Readings(ch rune) ([]string, bool) {
    found, ok := r.readings[ch]
    if !ok {
        return nil, false
    }
    return append([]string(nil), found...), true
}

func (r *Registry) HasPinyin(ch rune) bool {
    _, ok := r.readings[ch]
    return ok
}

func (r *Registry) Len() int {
    return len(r.readings)
}

/**********************************************************************/

func makeSyllableSet(entries ...string) map[string]struct{} {
    output := make(map[string]struct{}, len(entries))
    for _, e := range entries {
        output[e] = struct{}{}
    }
    return output
}

// Prefixes of real syllables that are not syllables themselves. These are
// only accepted as the last piece of a decomposition.
var syllablePrefixes = makeSyllableSet(
    "be", "bia",
    "ch", "cho", "chon", "chua", "co", "con", "cua",
    "din", "don", "do", "dua",
    "fe",
    "go", "gon",
    "ho", "hon",
    "len", "lon", "lua",
    "mia",
    "nia", "no", "non", "nua",
    "pe", "pia",
    "qio", "qion", "qua",
    "ra", "ro", "ron", "rua",
    "sh", "sho", "so", "son", "sua",
    "ten", "tia", "tin", "to", "ton", "tua",
    "we",
    "xio", "xion", "xua",
    "yon", "yua",
    "zh", "zho", "zhon", "zo", "zon", "zua",
)

// Complete toneless syllables. Bare "i", "u" and "v" are deliberately absent.
var validSyllables = makeSyllableSet(
    "a", "ai", "an", "ang", "ao",
    "ba", "bai", "ban", "bang", "bao", "bei", "ben", "beng", "bi", "bian", "biao", "bie", "bin", "bing", "bo", "bu",
    "ca", "cai", "can", "cang", "cao", "ce", "cen", "ceng", "cha", "chai", "chan", "chang", "chao", "che", "chen", "cheng", "chi", "chong", "chou", "chu", "chuai", "chuan", "chuang", "chui", "chun", "chuo", "ci", "cong", "cou", "cu", "cuan", "cui", "cun", "cuo",
    "da", "dai", "dan", "dang", "dao", "de", "dei", "den", "deng", "di", "dia", "dian", "diao", "die", "ding", "diu", "dong", "dou", "du", "duan", "dui", "dun", "duo",
    "e", "ei", "en", "eng", "er",
    "fa", "fan", "fang", "fei", "fen", "feng", "fo", "fou", "fu",
    "ga", "gai", "gan", "gang", "gao", "ge", "gei", "gen", "geng", "gong", "gou", "gu", "gua", "guai", "guan", "guang", "gui", "gun", "guo",
    "ha", "hai", "han", "hang", "hao", "he", "hei", "hen", "heng", "hong", "hou", "hu", "hua", "huai", "huan", "huang", "hui", "hun", "huo",
    "ji", "jia", "jian", "jiang", "jiao", "jie", "jin", "jing", "jiong", "jiu", "ju", "juan", "jue", "jun", "jv",
    "ka", "kai", "kan", "kang", "kao", "ke", "kei", "ken", "keng", "kong", "kou", "ku", "kua", "kuai", "kuan", "kuang", "kui", "kun", "kuo",
    "la", "lai", "lan", "lang", "lao", "le", "lei", "leng", "li", "lia", "lian", "liang", "liao", "lie", "lin", "ling", "liu", "long", "lo", "lou", "lu", "luan", "lue", "lun", "luo", "lv",
    "ma", "mai", "man", "mang", "mao", "me", "mei", "men", "meng", "mi", "mian", "miao", "mie", "min", "ming", "miu", "mo", "mou", "mu",
    "na", "nai", "nan", "nang", "nao", "ne", "nei", "nen", "neng", "ni", "nian", "niang", "niao", "nie", "nin", "ning", "niu", "nong", "nou", "nu", "nuan", "nue", "nun", "nuo", "nv",
    "o", "ou",
    "pa", "pai", "pan", "pang", "pao", "pei", "pen", "peng", "pi", "pian", "piao", "pie", "pin", "ping", "po", "pou", "pu",
    "qi", "qia", "qian", "qiang", "qiao", "qie", "qin", "qing", "qiong", "qiu", "qu", "quan", "que", "qun", "qv",
    "ran", "rang", "rao", "re", "ren", "reng", "ri", "rong", "rou", "ru", "ruan", "rui", "run", "ruo",
    "sa", "sai", "san", "sang", "sao", "se", "sen", "seng", "sha", "shai", "shan", "shang", "shao", "she", "shei", "shen", "sheng", "shi", "shou", "shu", "shua", "shuai", "shuan", "shuang", "shui", "shun", "shuo", "si", "song", "sou", "su", "suan", "sui", "sun", "suo",
    "ta", "tai", "tan", "tang", "tao", "te", "tei", "teng", "ti", "tian", "tiao", "tie", "ting", "tong", "tou", "tu", "tuan", "tui", "tun", "tuo",
    "wa", "wai", "wan", "wang", "wei", "wen", "weng", "wo", "wu",
    "xi", "xia", "xian", "xiang", "xiao", "xie", "xin", "xing", "xiong", "xiu", "xu", "xuan", "xue", "xun", "xv",
    "ya", "yan", "yang", "yao", "ye", "yi", "yin", "ying", "yo", "yong", "you", "yu", "yuan", "yue", "yun",
    "za", "zai", "zan", "zang", "zao", "ze", "zei", "zen", "zeng", "zha", "zhai", "zhan", "zhang", "zhao", "zhe", "zhen", "zheng", "zhi", "zhong", "zhou", "zhu", "zhua", "zhuai", "zhuan", "zhuang", "zhui", "zhun", "zhuo", "zi", "zong", "zou", "zu", "zuan", "zui", "zun", "zuo",
)

// IsValidSyllable reports whether s is a complete toneless pinyin syllable.
func IsValidSyllable(s string) bool {
    _, ok := validSyllables[s]
    return ok
}

// IsSyllablePrefix reports whether s is an incomplete syllable fragment.
func IsSyllablePrefix(s string) bool {
    _, ok := syllablePrefixes[s]
    return ok
}
