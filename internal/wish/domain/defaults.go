package domain

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type DefaultWish struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
}

// DefaultWishes returns the seed wishes; the first one is the default
func DefaultWishes() ([]DefaultWish, error) {
	var doc struct {
		Wishes []DefaultWish `yaml:"wishes"`
	}
	if err := yaml.Unmarshal(defaultsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse default wishes: %w", err)
	}
	if len(doc.Wishes) == 0 {
		return nil, fmt.Errorf("no default wishes defined")
	}
	return doc.Wishes, nil
}
