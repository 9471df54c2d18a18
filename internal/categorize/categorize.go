// Package categorize tags transactions with a spending category by keyword
// match on the description.
package categorize

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

const (
	// OtherCategory is assigned when no keyword matches.
	OtherCategory = "other"
	DefaultIcon   = "📦"

	ConfidenceKeyword = "keyword_match"
	ConfidenceDefault = "default"
)

// Definition describes one category in the category file.
type Definition struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Icon     string   `yaml:"icon" json:"icon"`
}

// Match is the outcome of categorizing one description.
type Match struct {
	Category   string `json:"category"`
	Icon       string `json:"icon"`
	Confidence string `json:"confidence"`
}

// Category is a named definition, as listed by Categories.
type Category struct {
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Keywords []string `json:"keywords"`
}

type keywordRule struct {
	keyword  string
	category string
}

// Categorizer matches descriptions against category keywords. It is
// immutable after construction and safe for concurrent use.
type Categorizer struct {
	categories []Category
	rules      []keywordRule
	icons      map[string]string
}

// New builds a Categorizer from an unordered set of definitions. Categories
// are taken in name order; see NewOrdered for the matching rules.
func New(defs map[string]Definition) *Categorizer {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	cats := make([]Category, 0, len(names))
	for _, name := range names {
		cats = append(cats, Category{Name: name, Icon: defs[name].Icon, Keywords: defs[name].Keywords})
	}
	return NewOrdered(cats)
}

// NewOrdered builds a Categorizer from categories in priority order.
// Keywords are checked in the order they first appear and the first
// substring hit wins. A keyword listed again by a later category moves to
// that category but keeps its position. A repeated category name replaces
// the earlier definition in place.
func NewOrdered(cats []Category) *Categorizer {
	c := &Categorizer{icons: make(map[string]string, len(cats))}

	position := make(map[string]int, len(cats))
	for _, cat := range cats {
		if cat.Icon == "" {
			cat.Icon = DefaultIcon
		}
		cat.Keywords = append([]string(nil), cat.Keywords...)
		if i, ok := position[cat.Name]; ok {
			c.categories[i] = cat
			continue
		}
		position[cat.Name] = len(c.categories)
		c.categories = append(c.categories, cat)
	}

	ruleAt := make(map[string]int)
	for _, cat := range c.categories {
		c.icons[cat.Name] = cat.Icon
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if i, ok := ruleAt[kw]; ok {
				c.rules[i].category = cat.Name
				continue
			}
			ruleAt[kw] = len(c.rules)
			c.rules = append(c.rules, keywordRule{keyword: kw, category: cat.Name})
		}
	}
	return c
}

// Load reads a category file (YAML or JSON) of the form
//
//	categories:
//	  dining: {keywords: [...], icon: "..."}
//
// Categories keep the order they are written in.
func Load(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories %s: %w", path, err)
	}
	cats, err := parseCategories(data)
	if err != nil {
		return nil, fmt.Errorf("parse categories %s: %w", path, err)
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("categories %s: no categories defined", path)
	}
	return NewOrdered(cats), nil
}

// parseCategories walks the document as a yaml.Node so mapping order
// survives; decoding into a map would lose it.
func parseCategories(data []byte) ([]Category, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "categories" {
			continue
		}
		node := root.Content[i+1]
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("categories must be a mapping")
		}
		cats := make([]Category, 0, len(node.Content)/2)
		for j := 0; j+1 < len(node.Content); j += 2 {
			name := node.Content[j].Value
			var def Definition
			if err := node.Content[j+1].Decode(&def); err != nil {
				return nil, fmt.Errorf("category %q: %w", name, err)
			}
			cats = append(cats, Category{Name: name, Icon: def.Icon, Keywords: def.Keywords})
		}
		return cats, nil
	}
	return nil, nil
}

// Default returns a Categorizer with a small built-in category set.
func Default() *Categorizer {
	return New(map[string]Definition{
		"dining":        {Keywords: []string{"starbucks", "chipotle", "mcdonald", "restaurant", "cafe", "coffee", "doordash", "grubhub"}, Icon: "🍽️"},
		"groceries":     {Keywords: []string{"whole foods", "trader joe", "safeway", "kroger", "grocery", "costco"}, Icon: "🛒"},
		"shopping":      {Keywords: []string{"amazon", "amzn", "target", "walmart", "best buy"}, Icon: "🛍️"},
		"transport":     {Keywords: []string{"uber", "lyft", "shell", "chevron", "exxon", "parking", "transit"}, Icon: "🚗"},
		"utilities":     {Keywords: []string{"electric", "water", "comcast", "verizon", "at&t", "internet"}, Icon: "💡"},
		"housing":       {Keywords: []string{"rent", "mortgage", "hoa"}, Icon: "🏠"},
		"entertainment": {Keywords: []string{"netflix", "spotify", "hulu", "cinema", "steam"}, Icon: "🎬"},
		"income":        {Keywords: []string{"payroll", "direct deposit", "salary", "interest paid"}, Icon: "💰"},
		"fees":          {Keywords: []string{"service fee", "overdraft", "atm fee", "monthly fee"}, Icon: "🏦"},
	})
}

// Categorize matches a single description.
func (c *Categorizer) Categorize(description string) Match {
	lower := strings.ToLower(description)
	for _, r := range c.rules {
		if strings.Contains(lower, r.keyword) {
			return Match{Category: r.category, Icon: c.icons[r.category], Confidence: ConfidenceKeyword}
		}
	}
	return Match{Category: OtherCategory, Icon: DefaultIcon, Confidence: ConfidenceDefault}
}

// Apply returns copies of txns with category, icon and confidence set.
func (c *Categorizer) Apply(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txns))
	for i, txn := range txns {
		m := c.Categorize(txn.Description)
		txn.Category = m.Category
		txn.Icon = m.Icon
		txn.CategoryConfidence = m.Confidence
		out[i] = txn
	}
	return out
}

// Categories lists the definitions in priority order.
func (c *Categorizer) Categories() []Category {
	return append([]Category{}, c.categories...)
}

// CategorySummary aggregates the transactions of one category.
type CategorySummary struct {
	Category string  `json:"category"`
	Icon     string  `json:"icon"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// Summarize groups already-categorized transactions by category, largest
// absolute total first. Uncategorized transactions count as "other".
func Summarize(txns []models.Transaction) []CategorySummary {
	type acc struct {
		icon  string
		total decimal.Decimal
		count int
	}
	byCategory := make(map[string]*acc)
	for _, txn := range txns {
		name := txn.Category
		if name == "" {
			name = OtherCategory
		}
		a, ok := byCategory[name]
		if !ok {
			icon := txn.Icon
			if icon == "" {
				icon = DefaultIcon
			}
			a = &acc{icon: icon}
			byCategory[name] = a
		}
		a.total = a.total.Add(decimal.NewFromFloat(txn.Amount))
		a.count++
	}

	out := make([]CategorySummary, 0, len(byCategory))
	totals := make(map[string]decimal.Decimal, len(byCategory))
	for name, a := range byCategory {
		totals[name] = a.total
		out = append(out, CategorySummary{
			Category: name,
			Icon:     a.icon,
			Total:    a.total.Round(2).InexactFloat64(),
			Count:    a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := totals[out[i].Category].Abs(), totals[out[j].Category].Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
