// Package extract turns the literal tree of a config.php into a typed model.Config.
//
// Extraction is pure: the tree is never modified and every call is independent,
// so one Extractor can serve concurrent callers. The first problem found aborts
// the extraction with an *Error naming the field and its source position.
package extract

import (
	"github.com/metraction/ncconf/pkg/literal"
	"github.com/metraction/ncconf/pkg/model"
	"github.com/rs/zerolog"
)

const keyOverwriteURL = "overwrite.cli.url"

type Extractor struct {
	logger *zerolog.Logger
}

// New returns an extractor logging defaults and ignored keys at debug level, logger may be nil
func New(logger *zerolog.Logger) *Extractor {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Extractor{logger: logger}
}

// Extract runs the database, cache and url extraction in this order
func (rx *Extractor) Extract(tree *literal.Map) (model.Config, error) {
	result := model.Config{}

	database, err := rx.ExtractDatabase(tree)
	if err != nil {
		return model.Config{}, err
	}
	cache, err := rx.ExtractCache(tree)
	if err != nil {
		return model.Config{}, err
	}
	url, _, err := rootSection(tree).optString(keyOverwriteURL)
	if err != nil {
		return model.Config{}, err
	}

	result.Database = database
	result.Cache = cache
	result.OverwriteURL = url
	return result, nil
}

// Extract with a silent logger
func Extract(tree *literal.Map) (model.Config, error) {
	return New(nil).Extract(tree)
}
