// internal/engine/score-keywords/config.go
package scorekeywords

import "signal-engine/pkg/keywordbank"

type Config struct {
	Bank *keywordbank.Bank
}

func LoadConfig(bankPath string) (*Config, error) {
	if bankPath == "" {
		return &Config{Bank: keywordbank.Default()}, nil
	}
	bank, err := keywordbank.Load(bankPath)
	if err != nil {
		return nil, err
	}
	return &Config{Bank: bank}, nil
}
