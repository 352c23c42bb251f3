package market

import (
	"context"
	"errors"
	"testing"

	"github.com/GoPolymarket/hudgate/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetadataAPI struct {
	descriptors []Descriptor
	err         error
	lastQuery   Query
}

func (f *fakeMetadataAPI) Markets(_ context.Context, q Query) ([]Descriptor, error) {
	f.lastQuery = q
	return f.descriptors, f.err
}

func twoToken(outcomes []string, ids ...string) Descriptor {
	d := Descriptor{Outcomes: outcomes}
	for _, id := range ids {
		d.Tokens = append(d.Tokens, Token{TokenID: id})
	}
	return d
}

func TestResolve_LabelMatch(t *testing.T) {
	cases := []struct {
		name     string
		outcomes []string
		side     string
		want     string
	}{
		{"Yes label", []string{"Yes", "No"}, "YES", "tok-a"},
		{"No label", []string{"Yes", "No"}, "NO", "tok-b"},
		{"Up label", []string{"Up", "Down"}, "YES", "tok-a"},
		{"Down label", []string{"Up", "Down"}, "NO", "tok-b"},
		{"uppercase labels", []string{"YES", "NO"}, "NO", "tok-b"},
		{"label with padding", []string{"  Yes ", "No"}, "YES", "tok-a"},
		{"reversed order", []string{"No", "Yes"}, "YES", "tok-b"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeMetadataAPI{descriptors: []Descriptor{twoToken(tc.outcomes, "tok-a", "tok-b")}}
			r := NewResolver(api)

			resolved, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, tc.side)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resolved.TokenID)
		})
	}
}

func TestResolve_PositionalFallback(t *testing.T) {
	// Labels that match nothing: YES takes slot 0, NO slot 1.
	api := &fakeMetadataAPI{descriptors: []Descriptor{twoToken([]string{"Over", "Under"}, "tok-a", "tok-b")}}
	r := NewResolver(api)

	yes, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, "YES")
	require.NoError(t, err)
	assert.Equal(t, "tok-a", yes.TokenID)

	no, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, "NO")
	require.NoError(t, err)
	assert.Equal(t, "tok-b", no.TokenID)
}

func TestResolve_CaseSensitiveLabels(t *testing.T) {
	// "yes" is not an accepted label, so the positional fallback applies.
	api := &fakeMetadataAPI{descriptors: []Descriptor{twoToken([]string{"no", "yes"}, "tok-a", "tok-b")}}
	r := NewResolver(api)

	resolved, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, "YES")
	require.NoError(t, err)
	assert.Equal(t, "tok-a", resolved.TokenID)
}

func TestResolve_NoIdentifier(t *testing.T) {
	r := NewResolver(&fakeMetadataAPI{})

	_, err := r.Resolve(context.Background(), Query{}, "YES")
	require.Error(t, err)
	appErr := apperrors.Wrap(err)
	assert.Equal(t, apperrors.ErrResolution, appErr.Type)
	assert.Equal(t, "no identifier to resolve", appErr.Message)
}

func TestResolve_LookupError(t *testing.T) {
	api := &fakeMetadataAPI{err: errors.New("market lookup failed with status 500")}
	r := NewResolver(api)

	_, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, "YES")
	require.Error(t, err)
	appErr := apperrors.Wrap(err)
	assert.Equal(t, apperrors.ErrResolution, appErr.Type)
}

func TestResolve_NoMarketFound(t *testing.T) {
	r := NewResolver(&fakeMetadataAPI{descriptors: []Descriptor{}})

	_, err := r.Resolve(context.Background(), Query{MarketID: "some-slug"}, "YES")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No market found")
}

func TestResolve_MissingToken(t *testing.T) {
	cases := []struct {
		name string
		desc Descriptor
		side string
	}{
		{"no tokens at all", Descriptor{Outcomes: []string{"Yes", "No"}}, "YES"},
		{"slot out of range", twoToken([]string{"Yes", "No"}, "tok-a"), "NO"},
		{"empty token id", Descriptor{
			Outcomes: []string{"Yes", "No"},
			Tokens:   []Token{{}, {TokenID: "tok-b"}},
		}, "YES"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(&fakeMetadataAPI{descriptors: []Descriptor{tc.desc}})
			_, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, tc.side)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "missing tokenId")
		})
	}
}

func TestResolve_AltTokenCasing(t *testing.T) {
	desc := Descriptor{
		Outcomes: []string{"Yes", "No"},
		Tokens:   []Token{{TokenIDAlt: "tok-alt"}, {TokenID: "tok-b"}},
	}
	r := NewResolver(&fakeMetadataAPI{descriptors: []Descriptor{desc}})

	resolved, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, "YES")
	require.NoError(t, err)
	assert.Equal(t, "tok-alt", resolved.TokenID)
}

func TestResolve_BookPrice(t *testing.T) {
	ptr := func(f float64) *float64 { return &f }

	cases := []struct {
		name string
		raw  interface{}
		want *float64
	}{
		{"number", 0.42, ptr(0.42)},
		{"decimal string", "0.37", ptr(0.37)},
		{"padded string", " 0.5 ", ptr(0.5)},
		{"clamped high", 1.5, ptr(1.0)},
		{"clamped low", -0.1, ptr(0.0)},
		{"garbage string", "n/a", nil},
		{"wrong type", true, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			desc := twoToken([]string{"Yes", "No"}, "tok-a", "tok-b")
			desc.BestAsk = []interface{}{tc.raw, 0.6}
			r := NewResolver(&fakeMetadataAPI{descriptors: []Descriptor{desc}})

			resolved, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, "YES")
			require.NoError(t, err)
			if tc.want == nil {
				assert.Nil(t, resolved.PriceFromBook)
			} else {
				require.NotNil(t, resolved.PriceFromBook)
				assert.InDelta(t, *tc.want, *resolved.PriceFromBook, 1e-9)
			}
		})
	}
}

func TestResolve_BookPriceAbsentForShortArray(t *testing.T) {
	desc := twoToken([]string{"Yes", "No"}, "tok-a", "tok-b")
	desc.BestAsk = []interface{}{0.4}
	r := NewResolver(&fakeMetadataAPI{descriptors: []Descriptor{desc}})

	resolved, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, "NO")
	require.NoError(t, err)
	assert.Nil(t, resolved.PriceFromBook)
}

func TestResolve_FirstDescriptorWins(t *testing.T) {
	api := &fakeMetadataAPI{descriptors: []Descriptor{
		twoToken([]string{"Yes", "No"}, "first-a", "first-b"),
		twoToken([]string{"Yes", "No"}, "second-a", "second-b"),
	}}
	r := NewResolver(api)

	resolved, err := r.Resolve(context.Background(), Query{ConditionID: "0xabc"}, "YES")
	require.NoError(t, err)
	assert.Equal(t, "first-a", resolved.TokenID)
}
