package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/metraction/ncconf/internal/source"
	"github.com/metraction/ncconf/pkg/extract"
	"github.com/metraction/ncconf/pkg/model"
	"github.com/rs/zerolog"
)

// load config.php (and siblings with glob), extraction errors are written to stderr as a source diagnostic
func LoadConfig(ctx context.Context, path string, settings model.Settings, stderr io.Writer, logger *zerolog.Logger) (model.Config, error) {

	loader := source.NewLoader(logger, settings.PhpFallback)
	load := loader.Load
	if settings.Glob {
		load = loader.LoadGlob
	}
	doc, err := load(ctx, path)
	if err != nil {
		return model.Config{}, err
	}

	config, err := extract.New(logger).Extract(doc.Tree)
	if err != nil {
		var xerr *extract.Error
		if errors.As(err, &xerr) {
			file := doc.FileOf(xerr.Field)
			fmt.Fprintln(stderr, extract.Diagnostic(doc.Source[file], file, err))
		}
		return model.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug().Strs("files", doc.Files).Bool("cache", config.Cache != nil).Msg("config extracted")
	return config, nil
}
