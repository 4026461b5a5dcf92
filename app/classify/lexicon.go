package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LabelGeneral is assigned when no keyword set matches an item.
const LabelGeneral = "general"

// Lexicon holds the keyword sets and weights driving classification.
// Loaded from YAML; DefaultLexicon covers the FX news domain out of the box.
type Lexicon struct {
	Labels  map[string][]string `yaml:"labels"`
	Weights map[string]float64  `yaml:"weights"`

	Hawkish []string `yaml:"hawkish"`
	Dovish  []string `yaml:"dovish"`

	Boosters []string `yaml:"boosters"`
	Dampers  []string `yaml:"dampers"`

	BoosterBonus   float64 `yaml:"booster_bonus"`
	DamperPenalty  float64 `yaml:"damper_penalty"`
	SentimentClamp int     `yaml:"sentiment_clamp"`
}

// LoadLexicon reads a lexicon YAML file. Missing sections keep their
// defaults so a partial file only overrides what it names.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	lex := DefaultLexicon()
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file %s: %w", path, err)
	}

	if err := lex.validate(); err != nil {
		return nil, fmt.Errorf("invalid lexicon %s: %w", path, err)
	}

	return lex, nil
}

func (l *Lexicon) validate() error {
	for label := range l.Labels {
		if label == LabelGeneral {
			return fmt.Errorf("label %q is reserved for unmatched items", LabelGeneral)
		}
	}
	if l.SentimentClamp < 1 {
		return fmt.Errorf("sentiment_clamp must be at least 1, got %d", l.SentimentClamp)
	}
	return nil
}

// DefaultLexicon returns the built-in FX lexicon.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Labels: map[string][]string{
			"policy_rate":      {"rate hike", "rate cut", "policy rate", "interest rate decision", "基準金利", "利上げ", "利下げ", "政策金利"},
			"intervention":     {"intervention", "為替介入", "emergency meeting", "緊急会合", "ycc", "yield curve control"},
			"official_comment": {"statement", "remarks", "testimony", "press conference", "声明", "発言", "guidance"},
			"inflation":        {"inflation", "cpi", "ppi", "deflation", "price index", "インフレ", "物価"},
			"employment":       {"employment", "unemployment", "payrolls", "nfp", "jobless", "雇用", "失業"},
			"growth":           {"gdp", "pmi", "retail sales", "industrial production", "景気", "小売"},
			"trade":            {"tariff", "trade deficit", "sanction", "export", "import", "関税", "制裁"},
			"usdjpy":           {"usd/jpy", "usdjpy", "ドル円", "dollar-yen"},
			"eurusd":           {"eur/usd", "eurusd", "ユーロドル"},
			"eurjpy":           {"eur/jpy", "eurjpy", "ユーロ円"},
			"gbpusd":           {"gbp/usd", "gbpusd", "ポンドドル"},
		},
		Weights: map[string]float64{
			"policy_rate":      5,
			"intervention":     5,
			"official_comment": 3,
			"inflation":        3,
			"employment":       3,
			"growth":           2,
			"trade":            2,
			"usdjpy":           1,
			"eurusd":           1,
			"eurjpy":           1,
			"gbpusd":           1,
		},
		Hawkish: []string{"hike", "tightening", "hawkish", "raise rates", "タカ派", "引き締め"},
		Dovish:  []string{"cut", "easing", "dovish", "stimulus", "ハト派", "緩和"},
		Boosters: []string{
			"surprise", "unexpected", "shock", "emergency", "crisis",
			"record", "historic", "unprecedented", "breaking",
			"サプライズ", "予想外", "急騰", "急落", "過去最",
		},
		Dampers: []string{
			"as expected", "in line", "unchanged", "steady", "stable", "minor",
			"予想通り", "変化なし", "安定", "小幅",
		},
		BoosterBonus:   1,
		DamperPenalty:  0.5,
		SentimentClamp: 3,
	}
}
