package simulation

import (
	"strings"

	"wise-brd/model"
	"wise-brd/wise"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const (
	NetworkFile       = "File"
	NetworkRandom     = "Random"
	NetworkSmallWorld = "SmallWorld"
)

type NetworkOptions struct {
	Type string `mapstructure:"type" yaml:"type" validate:"oneof=File Random SmallWorld"`
	// Path of the edge list, File networks only
	Path string `mapstructure:"path" yaml:"path,omitempty" validate:"required_if=Type File"`
	// NodeCount declares nodes 0..NodeCount-1
	NodeCount         int     `mapstructure:"node_count" yaml:"node_count" validate:"min=1"`
	EdgeProbability   float64 `mapstructure:"edge_probability" yaml:"edge_probability" validate:"min=0,max=1"`
	NeighborCount     int     `mapstructure:"neighbor_count" yaml:"neighbor_count" validate:"min=0"`
	RewireProbability float64 `mapstructure:"rewire_probability" yaml:"rewire_probability" validate:"min=0,max=1"`
}

type RuleOptions struct {
	Type     string  `mapstructure:"type" yaml:"type" validate:"oneof=Majority Threshold"`
	Q        float64 `mapstructure:"q" yaml:"q" validate:"min=0,max=1"`
	PinSeeds bool    `mapstructure:"pin_seeds" yaml:"pin_seeds"`
}

type CollectItemOptions struct {
	FlipEvent   bool `mapstructure:"flip_event" yaml:"flip_event"`
	RoundSeries bool `mapstructure:"round_series" yaml:"round_series"`
	FinalState  bool `mapstructure:"final_state" yaml:"final_state"`
	Plot        bool `mapstructure:"plot" yaml:"plot"`
}

type ScenarioMetadata struct {
	UniqueName string `mapstructure:"unique_name" yaml:"unique_name" validate:"required,excludesall=/\\"`

	Network NetworkOptions `mapstructure:"network" yaml:"network"`

	KValues    []int    `mapstructure:"k_values" yaml:"k_values" validate:"required,dive,min=0"`
	WValues    []int    `mapstructure:"w_values" yaml:"w_values" validate:"required,dive,min=0"`
	Strategies []string `mapstructure:"strategies" yaml:"strategies" validate:"required,dive,oneof=None Random HighDegree Mix"`
	Trials     int      `mapstructure:"trials" yaml:"trials" validate:"min=1"`
	MaxRounds  int      `mapstructure:"max_rounds" yaml:"max_rounds" validate:"min=0"`
	Seed       int64    `mapstructure:"seed" yaml:"seed"`
	// MixRate is the HighDegree share of the Mix strategy
	MixRate float64 `mapstructure:"mix_rate" yaml:"mix_rate" validate:"min=0,max=1"`

	Rule    RuleOptions        `mapstructure:"rule" yaml:"rule"`
	Collect CollectItemOptions `mapstructure:"collect" yaml:"collect"`
}

// SetDefaults configures the values of the original facebook experiment
func SetDefaults(v *viper.Viper) {
	v.SetDefault("unique_name", "")

	v.SetDefault("network.type", NetworkFile)
	v.SetDefault("network.path", "musae_facebook.txt")
	v.SetDefault("network.node_count", 22470)
	v.SetDefault("network.edge_probability", 0.001)
	v.SetDefault("network.neighbor_count", 10)
	v.SetDefault("network.rewire_probability", 0.1)

	v.SetDefault("k_values", []int{10, 100, 1000, 10000})
	v.SetDefault("w_values", []int{0, 5, 10, 20, 50, 100})
	v.SetDefault("strategies", []string{"Random", "HighDegree"})
	v.SetDefault("trials", 10)
	v.SetDefault("max_rounds", 1000)
	v.SetDefault("seed", 0)
	v.SetDefault("mix_rate", 0.5)

	v.SetDefault("rule.type", model.RuleMajority)
	v.SetDefault("rule.q", 0.1)
	v.SetDefault("rule.pin_seeds", false)

	v.SetDefault("collect.flip_event", false)
	v.SetDefault("collect.round_series", true)
	v.SetDefault("collect.final_state", false)
	v.SetDefault("collect.plot", true)
}

// NewViper creates a viper instance with defaults and BRD_ env overrides
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("BRD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// LoadMetadata reads scenario metadata from a YAML, JSON or TOML file.
// An empty path yields the defaults.
func LoadMetadata(path string) (*ScenarioMetadata, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read metadata %s", path)
		}
	}
	return LoadMetadataWithViper(v)
}

// LoadMetadataWithViper unmarshals and validates metadata from a prepared
// viper instance
func LoadMetadataWithViper(v *viper.Viper) (*ScenarioMetadata, error) {
	var metadata ScenarioMetadata
	if err := v.Unmarshal(&metadata); err != nil {
		return nil, errors.Wrap(err, "unmarshal metadata")
	}
	if metadata.UniqueName == "" {
		metadata.UniqueName = uuid.NewString()
	}
	if err := metadata.Validate(); err != nil {
		return nil, err
	}
	return &metadata, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and that the update rule resolves
func (m *ScenarioMetadata) Validate() error {
	if err := validate.Struct(m); err != nil {
		return errors.Wrapf(model.ErrInvalidParameter, "scenario metadata: %v", err)
	}
	if _, err := m.ModelParams(); err != nil {
		return err
	}
	return nil
}

// ModelParams converts the run options into simulator parameters
func (m *ScenarioMetadata) ModelParams() (*model.BRDModelParams, error) {
	rule, err := model.NewUpdateRule(m.Rule.Type, m.Rule.Q)
	if err != nil {
		return nil, err
	}
	return &model.BRDModelParams{
		MaxRounds: m.MaxRounds,
		Rule:      rule,
		PinSeeds:  m.Rule.PinSeeds,
	}, nil
}

// Cells lists the sweep in the order it runs: k, then strategy, then w
func (m *ScenarioMetadata) Cells() []CellKey {
	ret := make([]CellKey, 0, len(m.KValues)*len(m.Strategies)*len(m.WValues))
	for _, k := range m.KValues {
		for _, strategy := range m.Strategies {
			for _, w := range m.WValues {
				ret = append(ret, CellKey{K: k, W: w, Strategy: strategy})
			}
		}
	}
	return ret
}

func GetDefaultSelectorFactoryDefs(mixRate float64) map[string]model.SelectorFactory {
	ret := map[string]model.SelectorFactory{

		"None": func(*model.Graph) model.WiseNodeSelector {
			return &wise.None{}
		},

		"Random": func(*model.Graph) model.WiseNodeSelector {
			return wise.NewRandom()
		},

		"HighDegree": func(*model.Graph) model.WiseNodeSelector {
			return wise.NewHighDegree()
		},
	}

	ret["Mix"] = func(g *model.Graph) model.WiseNodeSelector {
		return &wise.Mix{
			Selector1:     ret["HighDegree"](g),
			Selector2:     ret["Random"](g),
			Selector1Rate: mixRate,
		}
	}

	return ret
}

var StrategyLabels = map[string]string{
	"None":       "No Wise Nodes",
	"Random":     "Random Wise Nodes",
	"HighDegree": "High-Degree Wise Nodes",
	"Mix":        "Mixed Wise Nodes",
}
