package fusion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weecici/fusedex/core"
)

func docs(pairs ...any) []core.RetrievedDocument {
	out := make([]core.RetrievedDocument, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, core.RetrievedDocument{
			Id:    core.ID(pairs[i].(int)),
			Score: pairs[i+1].(float64),
		})
	}
	return out
}

func TestFuseRRF(t *testing.T) {
	t.Run("overlapping lists favor the shared document", func(t *testing.T) {
		dense := docs(1, 0.9, 2, 0.5)
		sparse := docs(2, 12.0, 3, 4.0)

		fused, err := Fuse(dense, sparse, core.FusionRRF)
		require.NoError(t, err)
		require.Len(t, fused, 3)

		// k=2: id 2 scores 1/3 + 1/2, id 1 scores 1/2, id 3 scores 1/3.
		assert.Equal(t, core.ID(2), fused[0].Id)
		assert.Equal(t, core.ID(1), fused[1].Id)
		assert.Equal(t, core.ID(3), fused[2].Id)
		assert.InDelta(t, 1.0/3+1.0/2, fused[0].Score, 1e-12)
		assert.InDelta(t, 1.0/2, fused[1].Score, 1e-12)
		assert.InDelta(t, 1.0/3, fused[2].Score, 1e-12)
	})

	t.Run("ignores raw scores entirely", func(t *testing.T) {
		a := docs(1, 1000.0, 2, 0.0001)
		b := docs(3, 0.5, 4, 0.4)

		fused, err := Fuse(a, b, core.FusionRRF)
		require.NoError(t, err)

		// Same ranks in each list produce identical contributions.
		assert.InDelta(t, fused[0].Score, fused[1].Score, 1e-12)
		assert.InDelta(t, fused[2].Score, fused[3].Score, 1e-12)
	})

	t.Run("one empty list preserves the other's order", func(t *testing.T) {
		b := docs(7, 3.0, 5, 2.0, 9, 1.0)

		fused, err := Fuse(nil, b, core.FusionRRF)
		require.NoError(t, err)
		require.Len(t, fused, 3)
		assert.Equal(t, core.ID(7), fused[0].Id)
		assert.Equal(t, core.ID(5), fused[1].Id)
		assert.Equal(t, core.ID(9), fused[2].Id)
		assert.InDelta(t, 0.5, fused[0].Score, 1e-12)
	})

	t.Run("both lists empty is an error", func(t *testing.T) {
		_, err := Fuse(nil, nil, core.FusionRRF)
		require.ErrorIs(t, err, core.ErrEmptyFusionInput)
	})

	t.Run("custom k changes weighting", func(t *testing.T) {
		f, err := New(WithRRFK(60))
		require.NoError(t, err)

		fused, err := f.Fuse(docs(1, 1.0), nil, core.FusionRRF)
		require.NoError(t, err)
		assert.InDelta(t, 1.0/60, fused[0].Score, 1e-12)
	})

	t.Run("rejects non-positive k", func(t *testing.T) {
		_, err := New(WithRRFK(0))
		require.ErrorIs(t, err, ErrInvalidRRFK)
	})
}

func TestFuseDBSF(t *testing.T) {
	t.Run("sums normalized contributions", func(t *testing.T) {
		a := docs(1, 10.0, 2, 6.0, 3, 2.0)
		b := docs(2, 0.9, 4, 0.5)

		fused, err := Fuse(a, b, core.FusionDBSF)
		require.NoError(t, err)
		require.Len(t, fused, 4)

		// List a: mean 6, sample std 4; normalized scores are
		// (score-(-6))/24 = 2/3, 1/2, 1/3.
		// List b: mean 0.7, sample std ~0.2828; doc 2 normalizes above
		// 0.5, doc 4 below.
		byID := map[core.ID]float64{}
		for _, d := range fused {
			byID[d.Id] = d.Score
		}
		assert.InDelta(t, 2.0/3, byID[1], 1e-9)
		assert.InDelta(t, 1.0/3, byID[3], 1e-9)

		stdB := math.Sqrt((0.04 + 0.04) / 1)
		normB2 := (0.9 - (0.7 - 3*stdB)) / (6 * stdB)
		assert.InDelta(t, 0.5+normB2, byID[2], 1e-9)
		assert.Equal(t, core.ID(2), fused[0].Id)
	})

	t.Run("is symmetric in its inputs", func(t *testing.T) {
		a := docs(1, 10.0, 2, 6.0, 3, 2.0)
		b := docs(2, 0.9, 4, 0.5)

		ab, err := Fuse(a, b, core.FusionDBSF)
		require.NoError(t, err)
		ba, err := Fuse(b, a, core.FusionDBSF)
		require.NoError(t, err)

		scores := func(list []core.RetrievedDocument) map[core.ID]float64 {
			m := map[core.ID]float64{}
			for _, d := range list {
				m[d.Id] = d.Score
			}
			return m
		}
		forward, backward := scores(ab), scores(ba)
		require.Len(t, backward, len(forward))
		for id, s := range forward {
			assert.InDelta(t, s, backward[id], 1e-12)
		}
	})

	t.Run("zero spread normalizes to one half", func(t *testing.T) {
		a := docs(1, 5.0, 2, 5.0, 3, 5.0)

		fused, err := Fuse(a, nil, core.FusionDBSF)
		require.NoError(t, err)
		for _, d := range fused {
			assert.InDelta(t, 0.5, d.Score, 1e-12)
		}
	})

	t.Run("single element list has zero spread", func(t *testing.T) {
		fused, err := Fuse(docs(9, 42.0), nil, core.FusionDBSF)
		require.NoError(t, err)
		require.Len(t, fused, 1)
		assert.InDelta(t, 0.5, fused[0].Score, 1e-12)
	})

	t.Run("clips outliers beyond three deviations", func(t *testing.T) {
		// With ten zeros and one extreme score the outlier lies outside
		// mean±3σ, so its normalized contribution is clipped instead of
		// exceeding the [0, 1] range.
		outlier := func(score float64) []core.RetrievedDocument {
			list := []core.RetrievedDocument{{Id: 1, Score: score}}
			for id := core.ID(2); id <= 11; id++ {
				list = append(list, core.RetrievedDocument{Id: id})
			}
			return list
		}

		fused, err := Fuse(outlier(100), nil, core.FusionDBSF)
		require.NoError(t, err)
		require.Len(t, fused, 11)
		assert.Equal(t, core.ID(1), fused[0].Id)
		assert.InDelta(t, 1.0, fused[0].Score, 1e-12)

		fused, err = Fuse(outlier(-100), nil, core.FusionDBSF)
		require.NoError(t, err)
		require.Len(t, fused, 11)
		for _, d := range fused {
			if d.Id == 1 {
				assert.InDelta(t, 0.0, d.Score, 1e-12)
			} else {
				assert.Greater(t, d.Score, 0.0)
			}
		}
	})

	t.Run("both lists empty is an error", func(t *testing.T) {
		_, err := Fuse(nil, nil, core.FusionDBSF)
		require.ErrorIs(t, err, core.ErrEmptyFusionInput)
	})
}

func TestFuseUnsupportedMethod(t *testing.T) {
	_, err := Fuse(docs(1, 1.0), nil, core.FusionMethod("borda"))
	require.ErrorIs(t, err, core.ErrUnsupportedFusionMethod)
}

func TestFusePayloadFromFirstList(t *testing.T) {
	a := []core.RetrievedDocument{{
		Id:      1,
		Score:   1.0,
		Payload: core.DocumentPayload{Text: "from dense"},
	}}
	b := []core.RetrievedDocument{{
		Id:      1,
		Score:   9.0,
		Payload: core.DocumentPayload{Text: "from sparse"},
	}}

	fused, err := Fuse(a, b, core.FusionRRF)
	require.NoError(t, err)
	require.Len(t, fused, 1)
	assert.Equal(t, "from dense", fused[0].Payload.Text)
}
