/*
 * SPDX-License-Identifier: Unlicense
 *
 * This is free and unencumbered software released into the public domain.
 *
 * Anyone is free to copy, modify, publish, use, compile, sell, or distribute this
 * software, either in source code form or as a compiled binary, for any purpose,
 * commercial or non-commercial, and by any means.
 *
 * For more information, please refer to <http://unlicense.org/>
 */

package inference

import (
	"errors"
	"fmt"

	"github.com/mpromonet/gin-postproc/internal/params"
)

// ErrShape is returned when model outputs do not have the expected shape.
var ErrShape = errors.New("inference: unexpected output shape")

// Packer converts raw model outputs into the single flat tensor a
// processor decodes.
type Packer interface {
	Pack(outputs [][]float32, shapes [][]int) ([]float32, error)
}

// NewPacker returns the packer matching a model family: "ssd", "yolo" or
// "posenet". The input size is used by YOLO suppression. order returns the
// PoseNet tensor order in use and is called on every Pack.
func NewPacker(family string, inputWidth, inputHeight int, order func() [4]int) (Packer, error) {
	switch family {
	case "ssd":
		return SSDPacker{}, nil
	case "yolo":
		return YOLOPacker{
			Width:          inputWidth,
			Height:         inputHeight,
			ScoreThreshold: params.DefaultThreshold,
			NMSThreshold:   0.45,
		}, nil
	case "posenet":
		if order == nil {
			order = params.DefaultPoseNet().TensorOrder
		}
		return PoseNetPacker{Order: order}, nil
	}
	return nil, fmt.Errorf("inference: unknown model family %q", family)
}

func argmax(f []float32) (int, float32) {
	r, m := 0, f[0]
	for i, v := range f {
		if v > m {
			m = v
			r = i
		}
	}
	return r, m
}

func elements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// planar lays out rows of (c0, c1, c2, c3, class, score) as the detection
// decoder expects, with the row count in the trailing element.
func planar(rows [][6]float32) []float32 {
	n := len(rows)
	out := make([]float32, 6*n+1)
	for i, r := range rows {
		for k, v := range r {
			out[k*n+i] = v
		}
	}
	out[6*n] = float32(n)
	return out
}
