package tower

import (
	"image"
	"image/color"

	"github.com/ByteArena/box2d"
	"github.com/fogleman/gg"

	"github.com/towerlab/jengaq/jenga"
)

var (
	skyShade    = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	groundShade = color.RGBA{R: 255, G: 166, B: 0, A: 255}

	blockShades = map[jenga.Color]color.RGBA{
		jenga.Yellow: {R: 230, G: 195, B: 41, A: 255},
		jenga.Blue:   {R: 58, G: 112, B: 230, A: 255},
		jenga.Green:  {R: 69, G: 179, B: 87, A: 255},
	}
)

// worldToPixelCoord converts Box2D world coordinates to pixel
// coordinates. Box2D grows y upward, images grow y downward.
func worldToPixelCoord(coords [2]float64) [2]float64 {
	x, y := coords[0], coords[1]

	pixelX := Scale * x
	pixelY := float64(ViewportH) - Scale*y

	return [2]float64{pixelX, pixelY}
}

// render draws the current state of the tower. The drawing traces each
// remaining block's fixture through its body transform, so settled and
// mid-collapse towers are drawn exactly as the physics sees them.
func (t *Tower) render() image.Image {
	dc := gg.NewContext(ViewportW, ViewportH)
	dc.SetColor(skyShade)
	dc.Clear()

	// Ground
	groundStart := worldToPixelCoord([2]float64{0.0, 0.0})
	groundEnd := worldToPixelCoord([2]float64{float64(ViewportW) / Scale, 0.0})
	dc.SetColor(groundShade)
	dc.SetLineWidth(3.0)
	dc.DrawLine(groundStart[0], groundStart[1], groundEnd[0], groundEnd[1])
	dc.Stroke()

	// Blocks
	for action, body := range t.blocks {
		fix := body.GetFixtureList()
		for fix != nil {
			shape := fix.M_shape.(*box2d.B2PolygonShape)

			dc.ClearPath()
			var first [2]float64
			for i, vertex := range shape.M_vertices {
				if i >= shape.M_count {
					break
				}
				vertex = box2d.B2TransformVec2Mul(body.M_xf, vertex)
				pixelCoords := worldToPixelCoord([2]float64{vertex.X, vertex.Y})
				if i == 0 {
					first = pixelCoords
				}
				dc.LineTo(pixelCoords[0], pixelCoords[1])
			}
			dc.LineTo(first[0], first[1])

			dc.SetColor(blockShades[action.Color])
			dc.Fill()
			fix = fix.M_next
		}
	}

	return dc.Image()
}

// SavePNG writes the current rendered tower to the file at filename.
func (t *Tower) SavePNG(filename string) error {
	return gg.SavePNG(filename, t.render())
}
