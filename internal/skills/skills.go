// Package skills derives sets of skill or keyword tokens from CV and job
// description text.
package skills

import (
	"context"
	"fmt"

	"github.com/yesminehe/CVHelperBot/pkg/types"
)

// Extractor turns free text into a skill set. Implementations do not agree on
// casing, so sets should only be compared when built by the same strategy.
type Extractor interface {
	Extract(ctx context.Context, text string) (types.SkillSet, error)
}

type Strategy string

const (
	StrategyHeuristic  Strategy = "heuristic"
	StrategyKeyword    Strategy = "keyword"
	StrategyGenerative Strategy = "generative"
)

// New builds the extractor for a configured strategy. gen is only needed for
// the generative strategy.
func New(strategy Strategy, gen Generator) (Extractor, error) {
	switch strategy {
	case StrategyHeuristic:
		return Heuristic{}, nil
	case StrategyKeyword:
		return Keyword{}, nil
	case StrategyGenerative:
		if gen == nil {
			return nil, fmt.Errorf("generative skill extraction needs a generator")
		}
		return NewGenerative(gen), nil
	default:
		return nil, fmt.Errorf("unknown skill strategy %q", strategy)
	}
}
