package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"comic_poster/internal/domain"
	"comic_poster/internal/jsonld"
)

// Selection is the first metadata block whose image could be retrieved.
type Selection struct {
	Metadata domain.ComicMetadata
	Image    *domain.ImageAsset
	Index    int
	Attempts int
}

var (
	errNotEligible = errors.New("no eligible record")
	errNotImage    = errors.New("content is not an image")
)

// selectComic walks blocks in order and stops at the first one that yields an
// eligible record backed by real image data. Later blocks are never inspected.
func (s *PosterService) selectComic(ctx context.Context, blocks []string, logger *slog.Logger) (*Selection, error) {
	for i, raw := range blocks {
		sel, err := s.tryBlock(ctx, i, raw)
		if err == nil {
			sel.Attempts = i + 1
			return sel, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var parseErr *domain.ParseError
		if errors.As(err, &parseErr) {
			logger.Warn("skipping unparsable metadata block", "index", i, "error", parseErr.Err)
		} else {
			logger.Info("skipping metadata block", "index", i, "reason", err)
		}
	}

	return nil, &domain.NoSuitableDataError{Attempts: len(blocks)}
}

// tryBlock returns the block's selection or the reason it was skipped.
func (s *PosterService) tryBlock(ctx context.Context, index int, raw string) (*Selection, error) {
	records, err := jsonld.Parse(raw)
	if err != nil {
		return nil, &domain.ParseError{Index: index, Err: err}
	}

	meta, ok := jsonld.FirstEligible(records)
	if !ok {
		return nil, errNotEligible
	}

	image, err := s.source.FetchImage(ctx, meta.ContentURL)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", meta.ContentURL, err)
	}
	if image == nil || !image.Valid() {
		return nil, fmt.Errorf("%w: %s", errNotImage, meta.ContentURL)
	}

	return &Selection{
		Metadata: meta,
		Image:    image,
		Index:    index,
	}, nil
}
