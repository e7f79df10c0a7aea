package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"claimline/internal/domain"
)

// AssessPhotoQuality scores one photo on a 0.0-1.0 scale. The score
// starts at 1.0, loses the resolution penalty below the megapixel
// floor and the blur penalty when the variance proxy falls under the
// configured threshold. Undecodable photos are not penalized.
func (e *Engine) AssessPhotoQuality(data []byte) float64 {
	q := e.Config.PhotoQuality
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 1.0
	}

	score := 1.0
	bounds := img.Bounds()
	megapixels := float64(bounds.Dx()*bounds.Dy()) / 1_000_000
	if megapixels < q.MinMegapixels {
		score -= q.ResolutionPenalty
	}
	if lumaVariance(img) < q.BlurVariance {
		score -= q.BlurPenalty
	}
	if score < 0 {
		score = 0
	}
	return score
}

// lumaVariance is a cheap blur proxy: the variance of sampled
// luminance values on a 0-255 scale. Sharp photos carry high local
// contrast; flat or blurred ones cluster near zero.
func lumaVariance(img image.Image) float64 {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	step := 1
	if total > 10_000 {
		step = total / 10_000
	}

	var sum, sumSq float64
	n := 0
	for i := 0; i < total; i += step {
		x := bounds.Min.X + i%bounds.Dx()
		y := bounds.Min.Y + i/bounds.Dx()
		r, g, b, _ := img.At(x, y).RGBA()
		// ITU-R BT.601 luma, scaled to 0-255.
		luma := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257
		sum += luma
		sumSq += luma * luma
		n++
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

func itemPhotos(item domain.Item) [][]byte {
	var photos [][]byte
	if item.HasPhoto() {
		photos = append(photos, item.PhotoData)
	}
	for _, p := range item.ConditionPhotos {
		photos = append(photos, p.Data)
	}
	return photos
}

func (e *Engine) checkPhotoQuality(items []domain.Item, results *Results) {
	flagThreshold := e.Config.PhotoQuality.FlagThreshold
	totalPhotos, flaggedPhotos := 0, 0

	for _, item := range items {
		photos := itemPhotos(item)
		itemFlagged := 0
		for _, data := range photos {
			totalPhotos++
			if e.AssessPhotoQuality(data) < flagThreshold {
				flaggedPhotos++
				itemFlagged++
			}
		}
		if itemFlagged > 0 {
			severity := domain.SeverityInfo
			if itemFlagged > len(photos)/2 {
				severity = domain.SeverityWarning
			}
			results.add(domain.ValidationIssue{
				ItemID:   item.ID,
				ItemName: item.Name,
				Issues:   []string{fmt.Sprintf("%d of %d photos may have quality issues", itemFlagged, len(photos))},
				Severity: severity,
			})
		}
	}

	if totalPhotos > 0 {
		results.PhotoQualityScore = float64(totalPhotos-flaggedPhotos) / float64(totalPhotos)
	} else {
		results.PhotoQualityScore = 1.0
	}
}
