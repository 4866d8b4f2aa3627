package model

import "math"

// LoadEstimate holds lower bounds on the number of bins a packing list needs.
type LoadEstimate struct {
	TotalVolume     float64 `json:"total_volume"`      // Sum of box volumes
	TotalWeight     float64 `json:"total_weight"`      // Sum of box weights
	BinVolume       float64 `json:"bin_volume"`        // Volume of one bin
	BinsByVolume    int     `json:"bins_by_volume"`    // ceil(total volume / bin volume)
	BinsByWeight    int     `json:"bins_by_weight"`    // ceil(total weight / max weight), 0 if unlimited
	BinsMin         int     `json:"bins_min"`          // max of the two bounds
	BinsWithSlack   int     `json:"bins_with_slack"`   // Recommended count including slack
	SlackPercent    float64 `json:"slack_percent"`     // Slack factor applied (e.g., 15 for 15%)
	OversizedBoxes  int     `json:"oversized_boxes"`   // Boxes that fit no orientation of the bin
	OverweightBoxes int     `json:"overweight_boxes"`  // Boxes heavier than the bin max weight
}

// CalculateLoadEstimate computes how many bins a box set needs at minimum.
// Oversized and overweight boxes are counted but left out of the bounds
// since no bin can take them.
func CalculateLoadEstimate(boxes []Box, c Container, slackPercent float64) LoadEstimate {
	est := LoadEstimate{
		BinVolume:    c.Volume(),
		SlackPercent: slackPercent,
	}
	binDims := sortedDims(c.Size())

	for _, b := range boxes {
		if !fitsSomeOrientation(sortedDims(b.Size), binDims) {
			est.OversizedBoxes++
			continue
		}
		if c.MaxWeight > 0 && b.Weight > c.MaxWeight {
			est.OverweightBoxes++
			continue
		}
		est.TotalVolume += b.Volume()
		est.TotalWeight += b.Weight
	}

	if est.BinVolume <= 0 {
		return est
	}

	est.BinsByVolume = int(math.Ceil(est.TotalVolume / est.BinVolume))
	if c.MaxWeight > 0 {
		est.BinsByWeight = int(math.Ceil(est.TotalWeight / c.MaxWeight))
	}
	est.BinsMin = est.BinsByVolume
	if est.BinsByWeight > est.BinsMin {
		est.BinsMin = est.BinsByWeight
	}

	slackFactor := 1.0 + (slackPercent / 100.0)
	est.BinsWithSlack = int(math.Ceil(float64(est.BinsMin) * slackFactor))
	if est.BinsWithSlack < est.BinsMin {
		est.BinsWithSlack = est.BinsMin
	}
	return est
}

// sortedDims returns the extents in ascending order.
func sortedDims(v Vec3) [3]float64 {
	d := [3]float64{v.X, v.Y, v.Z}
	if d[0] > d[1] {
		d[0], d[1] = d[1], d[0]
	}
	if d[1] > d[2] {
		d[1], d[2] = d[2], d[1]
	}
	if d[0] > d[1] {
		d[0], d[1] = d[1], d[0]
	}
	return d
}

// fitsSomeOrientation compares sorted extents pairwise, which is exact for
// full rotation freedom.
func fitsSomeOrientation(box, bin [3]float64) bool {
	return box[0] <= bin[0] && box[1] <= bin[1] && box[2] <= bin[2]
}
