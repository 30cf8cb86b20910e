package prompt

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultCatalog []byte

// Prompt is a question that helps a storyteller get started.
type Prompt struct {
	ID       string   `json:"id" yaml:"id"`
	Category string   `json:"category" yaml:"category"`
	Question string   `json:"question" yaml:"question"`
	FollowUp []string `json:"followUp,omitempty" yaml:"followUp"`
	Cultural bool     `json:"cultural" yaml:"cultural"`
}

type Catalog struct {
	prompts []Prompt
}

func Parse(data []byte) (*Catalog, error) {
	var prompts []Prompt
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}
	for i, p := range prompts {
		if p.ID == "" || p.Category == "" || p.Question == "" {
			return nil, fmt.Errorf("prompt %d: id, category and question are required", i)
		}
	}
	return &Catalog{prompts: prompts}, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog from path, or returns the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt catalog: %w", err)
	}
	return Parse(data)
}

// ForCategory returns the prompts of a category. Unknown categories yield an
// empty list.
func (c *Catalog) ForCategory(category string) []Prompt {
	out := []Prompt{}
	for _, p := range c.prompts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists the categories that have prompts, in catalog order.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var cats []string
	for _, p := range c.prompts {
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	return cats
}
