package imagedetect

import (
	"genscan/internal/core/signal"
	perr "genscan/internal/platform/errors"
)

// texture scores local smoothness: the box mean of squared deviation from the
// local box mean, averaged over the image, mapped to 1 - avg/255
func (c Config) texture(g *plane) signal.Outcome {
	if g.w == 0 || g.h == 0 {
		return signal.Fail(ScoreTexture, perr.Validationf("empty image"))
	}

	k := c.TextureKernel
	if k < 1 {
		k = 1
	}
	local := boxMean(g, k)

	dev := newPlane(g.w, g.h)
	for i, v := range g.pix {
		d := v - local.pix[i]
		dev.pix[i] = d * d
	}

	return signal.Ok(ScoreTexture, 1-boxMean(dev, k).mean()/255)
}

// metadata is the size step function over the encoded payload
func (c Config) metadata(data []byte) signal.Outcome {
	return signal.Ok(ScoreMetadata, c.Metadata.At(float64(len(data))))
}

// confidence steps over the shorter decoded side
func (c Config) confidence(w, h int) float64 {
	if w <= 0 || h <= 0 {
		return c.InvalidConfidence
	}
	return c.Confidence.At(float64(min(w, h)))
}
