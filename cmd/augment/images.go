// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff"}

// imageFiles lists the image files in dir, sorted by name.
func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing images in %q", dir)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no images found in %q", dir)
	}
	return paths, nil
}

// loadImages decodes the images in parallel, and crops them to fill width x height.
func loadImages(ctx context.Context, paths []string, width, height int) ([]*image.NRGBA, error) {
	images := make([]*image.NRGBA, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for ii, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(path, imaging.AutoOrientation(true))
			if err != nil {
				return errors.Wrapf(err, "decoding %q", path)
			}
			images[ii] = imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// saveImages encodes the images in parallel, the format is given by the extension of the paths.
func saveImages(ctx context.Context, images []*image.NRGBA, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for ii, img := range images {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return errors.Wrapf(imaging.Save(img, paths[ii]), "saving %q", paths[ii])
		})
	}
	return g.Wait()
}

// imageLayout maps pixels of a batch of images to positions in the flat values of a tensor.
type imageLayout struct {
	layout                  tensors.Layout
	height, width, channels int
}

func newImageLayout(info tensors.Info) (imageLayout, error) {
	l := imageLayout{layout: info.Layout(), height: info.Height(), width: info.Width(), channels: info.Channels()}
	if l.layout != tensors.NHWC && l.layout != tensors.NCHW {
		return l, errors.Errorf("images require a NHWC or NCHW tensor, got %s", info)
	}
	if l.channels != 1 && l.channels != 3 && l.channels != 4 {
		return l, errors.Errorf("images require 1, 3 or 4 channels, got %s", info)
	}
	return l, nil
}

func (l imageLayout) sampleSize() int { return l.height * l.width * l.channels }

func (l imageLayout) index(sample, y, x, c int) int {
	if l.layout == tensors.NCHW {
		return sample*l.sampleSize() + (c*l.height+y)*l.width + x
	}
	return sample*l.sampleSize() + (y*l.width+x)*l.channels + c
}

// encode writes img as the given sample of flat. Single channel images hold the luminance.
func (l imageLayout) encode(img *image.NRGBA, sample int, flat []float32) {
	for y := range l.height {
		for x := range l.width {
			pixel := img.NRGBAAt(x, y)
			if l.channels == 1 {
				gray := color.GrayModel.Convert(pixel).(color.Gray)
				flat[l.index(sample, y, x, 0)] = float32(gray.Y)
				continue
			}
			values := [4]uint8{pixel.R, pixel.G, pixel.B, pixel.A}
			for c := range l.channels {
				flat[l.index(sample, y, x, c)] = float32(values[c])
			}
		}
	}
}

// decode reads the given sample of flat as an image. Values are rounded and clamped to [0, 255].
func (l imageLayout) decode(flat []float32, sample int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, l.width, l.height))
	for y := range l.height {
		for x := range l.width {
			pixel := color.NRGBA{A: 255}
			if l.channels == 1 {
				v := toPixel(flat[l.index(sample, y, x, 0)])
				pixel.R, pixel.G, pixel.B = v, v, v
			} else {
				pixel.R = toPixel(flat[l.index(sample, y, x, 0)])
				pixel.G = toPixel(flat[l.index(sample, y, x, 1)])
				pixel.B = toPixel(flat[l.index(sample, y, x, 2)])
				if l.channels == 4 {
					pixel.A = toPixel(flat[l.index(sample, y, x, 3)])
				}
			}
			img.SetNRGBA(x, y, pixel)
		}
	}
	return img
}

func toPixel(v float32) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, float64(v)))))
}

// toFlat converts values to a new flat slice of dtype, as required to set the values of a tensor.
func toFlat(values []float32, dtype dtypes.DType) (any, error) {
	switch dtype {
	case dtypes.Float32:
		return values, nil
	case dtypes.Float64:
		return convertFlat(values, func(v float32) float64 { return float64(v) }), nil
	case dtypes.Uint8:
		return convertFlat(values, toPixel), nil
	case dtypes.Int32:
		return convertFlat(values, func(v float32) int32 { return int32(math.Round(float64(v))) }), nil
	}
	return nil, errors.Errorf("images can't be converted to dtype %s", dtype)
}

// newFlat allocates a flat slice of dtype to read the values of a tensor.
func newFlat(dtype dtypes.DType, size int) (any, error) {
	switch dtype {
	case dtypes.Float32:
		return make([]float32, size), nil
	case dtypes.Float64:
		return make([]float64, size), nil
	case dtypes.Uint8:
		return make([]uint8, size), nil
	case dtypes.Int32:
		return make([]int32, size), nil
	}
	return nil, errors.Errorf("dtype %s can't be read as images", dtype)
}

// fromFlat converts a flat slice allocated by newFlat to float32.
func fromFlat(flat any) []float32 {
	switch values := flat.(type) {
	case []float32:
		return values
	case []float64:
		return convertFlat(values, func(v float64) float32 { return float32(v) })
	case []uint8:
		return convertFlat(values, func(v uint8) float32 { return float32(v) })
	case []int32:
		return convertFlat(values, func(v int32) float32 { return float32(v) })
	}
	return nil
}

func convertFlat[From, To any](values []From, fn func(From) To) []To {
	converted := make([]To, len(values))
	for ii, v := range values {
		converted[ii] = fn(v)
	}
	return converted
}
