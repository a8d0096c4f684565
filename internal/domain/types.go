/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the document object model: pages hold objects, and every
// object is one value of a closed set of kinds. Behavior lives in free
// functions that switch on Kind, so adding a kind means touching each switch.

import (
	"github.com/google/uuid"

	"pagecomposer/internal/vector"
)

// Kind tags the variant of an Object. The string values are the persisted
// item type names.
type Kind string

const (
	KindText    Kind = "text"
	KindRect    Kind = "rect"
	KindEllipse Kind = "ellipse"
	KindLine    Kind = "line"
	KindPolygon Kind = "polygon"
)

// Kinds lists every variant in a stable order.
var Kinds = []Kind{KindText, KindRect, KindEllipse, KindLine, KindPolygon}

func (k Kind) Valid() bool {
	switch k {
	case KindText, KindRect, KindEllipse, KindLine, KindPolygon:
		return true
	}
	return false
}

// AspectMode decides how an image fill maps onto an object's silhouette.
type AspectMode string

const (
	AspectFit     AspectMode = "fit"
	AspectCover   AspectMode = "cover"
	AspectStretch AspectMode = "stretch"
)

// ParseAspect maps unknown values to fit.
func ParseAspect(s string) AspectMode {
	switch AspectMode(s) {
	case AspectCover:
		return AspectCover
	case AspectStretch:
		return AspectStretch
	}
	return AspectFit
}

// Stroke is the outline of an object.
type Stroke struct {
	Style vector.LineStyle
	Width float64
	Color vector.Color
}

// ImageFill references an image resolved by the host. Width and Height are
// the natural pixel size recorded when the reference resolved.
type ImageFill struct {
	Ref    string
	Aspect AspectMode
	Width  int
	Height int
}

// Fill paints the inside of an object. A nil Image means no image.
type Fill struct {
	Color vector.Color
	Image *ImageFill
}

// TextRun is a span of text sharing one character format.
type TextRun struct {
	Text      string
	Font      string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Color     vector.Color
}

// SameFormat reports whether two runs could be merged.
func (r TextRun) SameFormat(o TextRun) bool {
	return r.Font == o.Font && r.Size == o.Size && r.Bold == o.Bold && r.Italic == o.Italic &&
		r.Underline == o.Underline && r.Color == o.Color
}

// Object is one item on a page. Common fields apply to every kind; the
// remaining fields are read only for the kinds noted.
//
// Position (X,Y) is the top-left of the box for text, rect and ellipse, and
// the origin that line endpoints and polygon vertices are relative to.
type Object struct {
	ID       string
	Kind     Kind
	X, Y     float64
	Rotation float64
	Z        int
	Selected bool
	Group    string
	Stroke   Stroke
	Fill     Fill

	// text, rect, ellipse
	W, H float64
	// rect
	CornerRadius float64

	// line
	A, B       vector.Pt
	ArrowStart bool
	ArrowEnd   bool

	// polygon
	Vertices []vector.Pt

	// text
	Runs     []TextRun
	Locked   bool
	NextLink string
	PrevLink string
}

// NewID returns a fresh stable identity for objects and groups.
func NewID() string { return uuid.NewString() }

// Clone deep-copies o so the result shares no slices with it.
func Clone(o Object) Object {
	c := o
	if o.Vertices != nil {
		c.Vertices = append([]vector.Pt(nil), o.Vertices...)
	}
	if o.Runs != nil {
		c.Runs = append([]TextRun(nil), o.Runs...)
	}
	if o.Fill.Image != nil {
		img := *o.Fill.Image
		c.Fill.Image = &img
	}
	return c
}
