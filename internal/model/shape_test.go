package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectImageSize(t *testing.T) {
	tests := []struct {
		name string
		dims []int64
		want ImageSize
	}{
		{"channel last", []int64{1, 180, 180, 3}, ImageSize{180, 180}},
		{"dynamic batch channel last", []int64{-1, 224, 224, 3}, ImageSize{224, 224}},
		{"channel first", []int64{1, 3, 160, 160}, ImageSize{160, 160}},
		{"dynamic batch channel first", []int64{-1, 3, 96, 96}, ImageSize{96, 96}},
		{"rank 3 square", []int64{1, 64, 64}, ImageSize{64, 64}},
		{"rank 3 not square", []int64{1, 64, 32}, ImageSize{180, 180}},
		{"non square", []int64{1, 120, 160, 3}, ImageSize{180, 180}},
		{"dynamic spatial dims", []int64{-1, -1, -1, 3}, ImageSize{180, 180}},
		{"rank 2", []int64{1, 784}, ImageSize{180, 180}},
		{"empty", nil, ImageSize{180, 180}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectImageSize(tt.dims, DefaultImageSize))
		})
	}
}

func TestDetectImageSizeCustomFallback(t *testing.T) {
	assert.Equal(t, ImageSize{Height: 32, Width: 32}, DetectImageSize([]int64{1, 10, 20, 3}, 32))
}
