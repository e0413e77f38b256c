package importer

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/piwi3910/MoldCut/internal/engine"
	"github.com/piwi3910/MoldCut/internal/model"
	"go.uber.org/zap"
)

// PatternResult holds the pieces decoded from one pattern file. The caller
// decides whether and where to persist them.
type PatternResult struct {
	Version   uint32
	Thumbnail []byte
	Pieces    []model.Piece
	Warnings  []string
	RawJSON   bool // input was legacy plain JSON
}

type patternOptions struct {
	logger *zap.Logger
}

// Option configures pattern import.
type Option func(*patternOptions)

// WithLogger sets the logger for recovered import problems.
func WithLogger(l *zap.Logger) Option {
	return func(o *patternOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// ImportPattern decodes a .mld container (or plain JSON pattern) and builds
// the piece records of moldID. Only ErrInvalidFormat and ErrTruncated are
// fatal; an undecodable payload or unknown geometry is reported as a warning.
func ImportPattern(data []byte, moldID string, opts ...Option) (PatternResult, error) {
	o := patternOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := DecodePattern(data)
	if err != nil {
		return PatternResult{}, err
	}

	result := PatternResult{
		Version:   c.Version,
		Thumbnail: c.Thumbnail,
		RawJSON:   c.RawJSON,
		Pieces:    make([]model.Piece, 0, len(c.Data.Pieces)),
	}
	if c.Malformed {
		o.logger.Warn("pattern payload could not be decoded, importing zero pieces",
			zap.String("mold", moldID), zap.Uint32("version", c.Version))
		result.Warnings = append(result.Warnings, "Pattern data could not be decoded; no pieces imported")
	}

	for _, msg := range c.Skipped {
		o.logger.Warn(msg, zap.String("mold", moldID))
		result.Warnings = append(result.Warnings, msg)
	}

	for i, spec := range c.Data.Pieces {
		piece, warnings := BuildPiece(moldID, spec)
		for _, w := range warnings {
			msg := fmt.Sprintf("Piece %d (%s): %s", i+1, piece.Name, w)
			o.logger.Warn(msg, zap.String("mold", moldID))
			result.Warnings = append(result.Warnings, msg)
		}
		result.Pieces = append(result.Pieces, piece)
	}
	return result, nil
}

// ImportPatternFile reads path and imports it with ImportPattern.
func ImportPatternFile(path, moldID string, opts ...Option) (PatternResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PatternResult{}, fmt.Errorf("cannot open pattern file: %w", err)
	}
	return ImportPattern(data, moldID, opts...)
}

// BuildPiece resolves one piece spec into a piece record: footprint, layout
// orientation and rotation constraint. It returns any recovered problems.
func BuildPiece(moldID string, spec PieceSpec) (model.Piece, []string) {
	var warnings []string

	name := spec.Name
	if name == "" {
		name = "Unnamed Piece"
	}
	repeat := spec.Qty
	if repeat < 1 {
		repeat = 1
	}

	fp, known := spec.Geom.Resolve()
	if !known {
		warnings = append(warnings, fmt.Sprintf("Unknown geometry type '%s', area and size set to zero", spec.Geom.Kind))
	}

	// A pre-supplied area wins over the computed one.
	area := spec.AreaMM2
	computed := area <= 0
	if computed {
		area = fp.Area
	}

	orient := engine.ResolveOrientation(spec.Geom, fp, engine.OrientationFlags{
		CanRotate:     spec.Rotatable(),
		FixedRotation: spec.FixedRotation,
		AutoOrient:    spec.AutoOrient,
		GrainAxis:     spec.Axis(),
		Computed:      computed,
	})
	if orient.Rotated {
		fp, _ = orient.Geometry.Resolve()
	}

	grain, ok := model.ParseGrain(spec.Axis())
	if !ok {
		warnings = append(warnings, fmt.Sprintf("Unknown grain axis '%s', treated as unspecified", spec.Axis()))
	}

	return model.Piece{
		ID:            uuid.New().String()[:8],
		MoldID:        moldID,
		Name:          name,
		Geometry:      orient.Geometry,
		NetAreaMM2:    area,
		BBoxWidthMM:   fp.Width,
		BBoxHeightMM:  fp.Height,
		RepeatCount:   repeat,
		RotationFixed: orient.RotationFixed,
		Grain:         grain,
	}, warnings
}
