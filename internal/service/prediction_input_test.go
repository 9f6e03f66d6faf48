package service

import (
	"errors"
	"playstore-predictor/internal/dto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledDraft() Draft {
	d := NewEmptyDraft()
	d.Input.Category = "GAME"
	d.Input.Genres = "Action;Adventure"
	d.Input.AppSize = "25M"
	d.Input.ContentRating = dto.ContentRatingTeen
	return d
}

func TestApplyField(t *testing.T) {
	tests := []struct {
		name      string
		start     Draft
		field     string
		value     string
		want      Draft
		wantErrIs error
	}{
		{
			name:  "category",
			start: NewEmptyDraft(),
			field: "category",
			value: "FAMILY",
			want:  Draft{Input: dto.PredictionInput{Category: "FAMILY", AppType: dto.AppTypeFree, ContentRating: dto.ContentRatingEveryone}},
		},
		{
			name:  "genres kept verbatim",
			start: NewEmptyDraft(),
			field: "genres",
			value: "Puzzle;Brain Games",
			want:  Draft{Input: dto.PredictionInput{Genres: "Puzzle;Brain Games", AppType: dto.AppTypeFree, ContentRating: dto.ContentRatingEveryone}},
		},
		{
			name:  "switch to paid keeps price",
			start: Draft{Input: dto.PredictionInput{AppType: dto.AppTypeFree}},
			field: "app_type",
			value: "Paid",
			want:  Draft{Input: dto.PredictionInput{AppType: dto.AppTypePaid}},
		},
		{
			name:  "switch to free zeroes price",
			start: Draft{Input: dto.PredictionInput{AppType: dto.AppTypePaid, Price: 4.99}, PriceSet: true},
			field: "app_type",
			value: "Free",
			want:  Draft{Input: dto.PredictionInput{AppType: dto.AppTypeFree, Price: 0}},
		},
		{
			name:  "price parsed",
			start: Draft{Input: dto.PredictionInput{AppType: dto.AppTypePaid}},
			field: "price",
			value: " 2.50 ",
			want:  Draft{Input: dto.PredictionInput{AppType: dto.AppTypePaid, Price: 2.5}, PriceSet: true},
		},
		{
			name:  "unparsable price becomes zero",
			start: Draft{Input: dto.PredictionInput{AppType: dto.AppTypePaid, Price: 3}, PriceSet: true},
			field: "price",
			value: "abc",
			want:  Draft{Input: dto.PredictionInput{AppType: dto.AppTypePaid, Price: 0}},
		},
		{
			name:      "price disabled while free",
			start:     Draft{Input: dto.PredictionInput{AppType: dto.AppTypeFree}},
			field:     "price",
			value:     "9",
			want:      Draft{Input: dto.PredictionInput{AppType: dto.AppTypeFree}},
			wantErrIs: ErrFieldDisabled,
		},
		{
			name:      "unknown app type",
			start:     NewEmptyDraft(),
			field:     "app_type",
			value:     "Freemium",
			want:      NewEmptyDraft(),
			wantErrIs: ErrInvalidValue,
		},
		{
			name:  "content rating",
			start: NewEmptyDraft(),
			field: "content_rating",
			value: "Mature 17+",
			want:  Draft{Input: dto.PredictionInput{AppType: dto.AppTypeFree, ContentRating: dto.ContentRatingMature}},
		},
		{
			name:      "unknown content rating",
			start:     NewEmptyDraft(),
			field:     "content_rating",
			value:     "Kids",
			want:      NewEmptyDraft(),
			wantErrIs: ErrInvalidValue,
		},
		{
			name:      "unknown field",
			start:     NewEmptyDraft(),
			field:     "installs",
			value:     "10",
			want:      NewEmptyDraft(),
			wantErrIs: ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyField(tt.start, tt.field, tt.value)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyField_FreeAlwaysHasZeroPrice(t *testing.T) {
	sequences := [][][2]string{
		{{"app_type", "Paid"}, {"price", "5"}, {"app_type", "Free"}},
		{{"app_type", "Paid"}, {"price", "12.75"}, {"category", "GAME"}, {"app_type", "Free"}, {"price", "3"}},
		{{"price", "1"}, {"app_type", "Paid"}, {"app_type", "Free"}, {"app_type", "Paid"}},
	}

	for i, seq := range sequences {
		d := NewEmptyDraft()
		for _, step := range seq {
			next, err := ApplyField(d, step[0], step[1])
			if err == nil {
				d = next
			}
			if d.Input.AppType == dto.AppTypeFree {
				assert.Zero(t, d.Input.Price, "sequence %d step %v", i, step)
			}
		}
	}
}

func TestValidateDraft(t *testing.T) {
	v := NewValidator()

	t.Run("complete free draft", func(t *testing.T) {
		assert.NoError(t, ValidateDraft(v, filledDraft()))
	})

	t.Run("complete paid draft", func(t *testing.T) {
		d := filledDraft()
		d.Input.AppType = dto.AppTypePaid
		d.Input.Price = 1.99
		d.PriceSet = true
		assert.NoError(t, ValidateDraft(v, d))
	})

	t.Run("paid draft with zero price typed in", func(t *testing.T) {
		d := filledDraft()
		d.Input.AppType = dto.AppTypePaid
		d.PriceSet = true
		assert.NoError(t, ValidateDraft(v, d))
	})

	t.Run("empty draft", func(t *testing.T) {
		err := ValidateDraft(v, NewEmptyDraft())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDraft))
		assert.Contains(t, err.Error(), "category is required")
		assert.Contains(t, err.Error(), "genres is required")
		assert.Contains(t, err.Error(), "app_size is required")
	})

	t.Run("whitespace only field", func(t *testing.T) {
		d := filledDraft()
		d.Input.AppSize = "   "
		err := ValidateDraft(v, d)
		assert.ErrorIs(t, err, ErrInvalidDraft)
		assert.Contains(t, err.Error(), "app_size is required")
	})

	t.Run("paid without price", func(t *testing.T) {
		d := filledDraft()
		d.Input.AppType = dto.AppTypePaid
		err := ValidateDraft(v, d)
		assert.ErrorIs(t, err, ErrInvalidDraft)
		assert.Contains(t, err.Error(), "price is required for Paid apps")
	})

	t.Run("negative price", func(t *testing.T) {
		d := filledDraft()
		d.Input.AppType = dto.AppTypePaid
		d.Input.Price = -1
		d.PriceSet = true
		err := ValidateDraft(v, d)
		assert.ErrorIs(t, err, ErrInvalidDraft)
		assert.Contains(t, err.Error(), "price must be at least 0")
	})
}

func TestNormalize(t *testing.T) {
	d := filledDraft()
	d.Input.Price = 7
	d.PriceSet = true

	got := normalize(d)
	assert.Zero(t, got.Input.Price)
	assert.False(t, got.PriceSet)

	d.Input.AppType = dto.AppTypePaid
	assert.Equal(t, d, normalize(d))
}
