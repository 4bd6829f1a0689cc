package outline

import (
	"errors"
	"fmt"
)

// Options holds the thresholds of the title and heading heuristics.
type Options struct {
	// TitleRegion is the fraction of the first page, from the top, searched
	// for a title.
	TitleRegion float64 `mapstructure:"title_region" yaml:"title_region" json:"title_region"`
	// TitleSizeRatio is the minimum title size relative to the body size.
	TitleSizeRatio float64 `mapstructure:"title_size_ratio" yaml:"title_size_ratio" json:"title_size_ratio"`
	TitleMinChars  int     `mapstructure:"title_min_chars" yaml:"title_min_chars" json:"title_min_chars"`
	TitleMaxChars  int     `mapstructure:"title_max_chars" yaml:"title_max_chars" json:"title_max_chars"`
	// CenterSpread scales the distance from the page centre at which the
	// centring bonus drops to zero.
	CenterSpread float64 `mapstructure:"center_spread" yaml:"center_spread" json:"center_spread"`

	HeadingMinChars int `mapstructure:"heading_min_chars" yaml:"heading_min_chars" json:"heading_min_chars"`
	HeadingMaxWords int `mapstructure:"heading_max_words" yaml:"heading_max_words" json:"heading_max_words"`
	// BoldSizeRatio is the size, relative to the body size, a bold block
	// must exceed to count as an unnumbered heading.
	BoldSizeRatio float64 `mapstructure:"bold_size_ratio" yaml:"bold_size_ratio" json:"bold_size_ratio"`
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		TitleRegion:     0.35,
		TitleSizeRatio:  1.5,
		TitleMinChars:   4,
		TitleMaxChars:   150,
		CenterSpread:    0.8,
		HeadingMinChars: 3,
		HeadingMaxWords: 20,
		BoldSizeRatio:   1.1,
	}
}

// Validate checks that the thresholds are usable.
func (o Options) Validate() error {
	if o.TitleRegion <= 0 || o.TitleRegion > 1 {
		return fmt.Errorf("invalid title region: %v (must be in (0, 1])", o.TitleRegion)
	}
	if o.TitleSizeRatio <= 0 || o.BoldSizeRatio <= 0 {
		return errors.New("size ratios must be positive")
	}
	if o.CenterSpread <= 0 {
		return fmt.Errorf("invalid center spread: %v (must be positive)", o.CenterSpread)
	}
	if o.TitleMinChars < 0 || o.TitleMaxChars < o.TitleMinChars {
		return fmt.Errorf("invalid title length bounds: %d..%d", o.TitleMinChars, o.TitleMaxChars)
	}
	if o.HeadingMinChars < 0 || o.HeadingMaxWords <= 0 {
		return fmt.Errorf("invalid heading bounds: min chars %d, max words %d", o.HeadingMinChars, o.HeadingMaxWords)
	}
	return nil
}
