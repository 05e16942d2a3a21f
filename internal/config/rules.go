package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules are the checkout constants. Changing them is a product decision.
type Rules struct {
	// PointValue is the currency amount one credit point is worth.
	PointValue int64 `yaml:"point_value"`
	// EcoPackSize is the number of physical pieces in one eco-friendly pack.
	EcoPackSize int `yaml:"eco_pack_size"`
	// PiecesPerPoint is how many eco-friendly pieces earn one point.
	PiecesPerPoint int `yaml:"pieces_per_point"`

	Currency       string `yaml:"currency"`
	CurrencySymbol string `yaml:"currency_symbol"`
}

func DefaultRules() Rules {
	return Rules{
		PointValue:     10,
		EcoPackSize:    50,
		PiecesPerPoint: 100,
		Currency:       "INR",
		CurrencySymbol: "₹",
	}
}

// LoadRules returns DefaultRules overridden by the YAML file at path.
// An empty path yields the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(b, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r Rules) Validate() error {
	if r.PointValue <= 0 {
		return errors.New("point_value must be positive")
	}
	if r.EcoPackSize <= 0 {
		return errors.New("eco_pack_size must be positive")
	}
	if r.PiecesPerPoint <= 0 {
		return errors.New("pieces_per_point must be positive")
	}
	return nil
}
