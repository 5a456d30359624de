package pipeline

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// neutralFit is the score for industries the table does not recognize.
const neutralFit = 50

// IndustryFit maps an industry label to a 0-100 fit score.
type IndustryFit map[string]int

// DefaultIndustryFit returns the built-in fit table.
func DefaultIndustryFit() IndustryFit {
	return IndustryFit{
		"saas":       90,
		"technology": 90,
		"software":   90,
		"fintech":    90,
		"e-commerce": 70,
		"healthcare": 70,
		"consulting": 70,
	}
}

// LoadIndustryFit reads a fit table override from a yaml file of the shape
//
//	saas: 90
//	manufacturing: 60
func LoadIndustryFit(path string) (IndustryFit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fit: read file")
	}

	raw := make(map[string]int)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "fit: unmarshal")
	}
	if len(raw) == 0 {
		return nil, eris.Errorf("fit: empty table in %s", path)
	}

	fit := make(IndustryFit, len(raw))
	for k, v := range raw {
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		fit[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return fit, nil
}

// Score looks up the fit score for an industry label. Exact matches win;
// otherwise a table entry contained in the label matches ("SaaS Platforms"
// hits "saas"). Unknown industries score the neutral midpoint.
func (f IndustryFit) Score(industry string) float64 {
	label := strings.ToLower(strings.TrimSpace(industry))
	if label == "" {
		return neutralFit
	}
	if s, ok := f[label]; ok {
		return float64(s)
	}
	best := -1
	for k, v := range f {
		if strings.Contains(label, k) && v > best {
			best = v
		}
	}
	if best >= 0 {
		return float64(best)
	}
	return neutralFit
}
