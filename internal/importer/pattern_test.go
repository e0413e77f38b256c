package importer

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildPiece_Defaults(t *testing.T) {
	p, warnings := BuildPiece("m1", PieceSpec{Geom: model.NewRect(100, 50)})

	assert.Empty(t, warnings)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "m1", p.MoldID)
	assert.Equal(t, "Unnamed Piece", p.Name)
	assert.Equal(t, 1, p.RepeatCount)
	assert.InDelta(t, 20000.0, p.NetAreaMM2, 1e-9)
	assert.InDelta(t, 200.0, p.BBoxWidthMM, 1e-9)
	assert.InDelta(t, 100.0, p.BBoxHeightMM, 1e-9)
	assert.False(t, p.RotationFixed)
	assert.Equal(t, model.GrainVertical, p.Grain)
}

func TestBuildPiece_SuppliedAreaWins(t *testing.T) {
	p, _ := BuildPiece("m1", PieceSpec{Name: "Yoke", Qty: 3, AreaMM2: 1234, Geom: model.NewRect(10, 10)})
	assert.InDelta(t, 1234.0, p.NetAreaMM2, 1e-9)
	assert.InDelta(t, 20.0, p.BBoxWidthMM, 1e-9)
	assert.Equal(t, 3, p.RepeatCount)
}

func TestBuildPiece_NegativeAreaIsComputed(t *testing.T) {
	p, _ := BuildPiece("m1", PieceSpec{AreaMM2: -5, Geom: model.NewCircle(10)})
	assert.InDelta(t, math.Pi*100, p.NetAreaMM2, 1e-9)
}

func TestBuildPiece_AutoOrientWide(t *testing.T) {
	p, _ := BuildPiece("m1", PieceSpec{Geom: model.NewRect(100, 50), AutoOrient: true})
	assert.True(t, p.RotationFixed)
	assert.InDelta(t, 100.0, p.BBoxWidthMM, 1e-9)
	assert.InDelta(t, 200.0, p.BBoxHeightMM, 1e-9)
	assert.Equal(t, model.NewRect(50, 100), p.Geometry)
}

func TestBuildPiece_AutoOrientIgnoredForSuppliedArea(t *testing.T) {
	p, _ := BuildPiece("m1", PieceSpec{Geom: model.NewRect(100, 50), AreaMM2: 20000, AutoOrient: true})
	assert.False(t, p.RotationFixed)
	assert.InDelta(t, 200.0, p.BBoxWidthMM, 1e-9)
}

func TestBuildPiece_HorizontalGrainRotates(t *testing.T) {
	p, warnings := BuildPiece("m1", PieceSpec{Geom: model.NewRect(50, 100), Grain: "horizontal"})
	assert.Empty(t, warnings)
	assert.Equal(t, model.GrainHorizontal, p.Grain)
	assert.True(t, p.RotationFixed)
	assert.InDelta(t, 200.0, p.BBoxWidthMM, 1e-9)
	assert.InDelta(t, 100.0, p.BBoxHeightMM, 1e-9)
}

func TestBuildPiece_CanRotateFalse(t *testing.T) {
	p, _ := BuildPiece("m1", PieceSpec{Geom: model.NewRect(50, 100), CanRotate: boolPtr(false)})
	assert.True(t, p.RotationFixed)

	p, _ = BuildPiece("m1", PieceSpec{Geom: model.NewRect(50, 100), FixedRotation: true})
	assert.True(t, p.RotationFixed)
}

func TestBuildPiece_UnknownGrainWarns(t *testing.T) {
	p, warnings := BuildPiece("m1", PieceSpec{Geom: model.NewRect(50, 100), GrainAxis: "diagonal"})
	assert.Equal(t, model.GrainUnspecified, p.Grain)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "diagonal")
}

func TestBuildPiece_UnknownGeometryWarns(t *testing.T) {
	p, warnings := BuildPiece("m1", PieceSpec{Geom: model.Geometry{Kind: "spline"}})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "spline")
	assert.Zero(t, p.NetAreaMM2)
	assert.Zero(t, p.BBoxWidthMM)
}

func TestImportPattern_Container(t *testing.T) {
	data := encode(t, sampleContainer())
	res, err := ImportPattern(data, "mold-1")
	require.NoError(t, err)

	assert.Equal(t, uint32(7), res.Version)
	assert.False(t, res.RawJSON)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Pieces, 2)
	assert.Equal(t, model.GrainVertical, res.Pieces[0].Grain)
	assert.Equal(t, 2, res.Pieces[0].RepeatCount)
	assert.True(t, res.Pieces[1].RotationFixed)
	for _, p := range res.Pieces {
		assert.Equal(t, "mold-1", p.MoldID)
	}
}

func TestImportPattern_MalformedPayloadLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	var buf bytes.Buffer
	require.NoError(t, writeContainerPayload(&buf, 2, nil, []byte("not json")))

	res, err := ImportPattern(buf.Bytes(), "mold-1", WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Empty(t, res.Pieces)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, logs.FilterMessageSnippet("could not be decoded").Len())
}

func TestImportPattern_FractionalQtyKeepsEveryPiece(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	payload := []byte(`{"pieces":[
		{"name":"Front","qty":2,"geom":{"type":"rect","halfW":100,"halfH":50}},
		{"name":"Back","qty":2,"geom":{"type":"rect","halfW":100,"halfH":60}},
		{"name":"Strap","qty":1.0,"geom":{"type":"rect","halfW":20,"halfH":300}},
		{"name":"Label","qty":[1],"geom":{"type":"rect","halfW":5,"halfH":5}}
	]}`)
	var buf bytes.Buffer
	require.NoError(t, writeContainerPayload(&buf, 5, nil, payload))

	res, err := ImportPattern(buf.Bytes(), "mold-1", WithLogger(zap.New(core)))
	require.NoError(t, err)
	require.Len(t, res.Pieces, 3)
	assert.Equal(t, "Strap", res.Pieces[2].Name)
	assert.Equal(t, 1, res.Pieces[2].RepeatCount)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Piece 4 skipped")
	assert.Equal(t, 1, logs.FilterMessageSnippet("Piece 4 skipped").Len())
}

func TestImportPattern_PieceWarningsPrefixed(t *testing.T) {
	raw := []byte(`{"pieces":[{"name":"Cuff","geom":{"type":"rect","halfW":10,"halfH":10},"grainAxis":"z"}]}`)
	res, err := ImportPattern(raw, "m")
	require.NoError(t, err)
	assert.True(t, res.RawJSON)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Piece 1 (Cuff)")
}

func TestImportPattern_InvalidFormat(t *testing.T) {
	_, err := ImportPattern([]byte{0x00, 0x01, 0x02}, "m")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestImportPatternFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shirt.mld")
	require.NoError(t, os.WriteFile(path, encode(t, sampleContainer()), 0644))

	res, err := ImportPatternFile(path, "m")
	require.NoError(t, err)
	assert.Len(t, res.Pieces, 2)

	_, err = ImportPatternFile(filepath.Join(t.TempDir(), "missing.mld"), "m")
	assert.Error(t, err)
}
